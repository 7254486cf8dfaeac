package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/metrics"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	metadataFile  = "metadata.json"
	energyFile    = "energy.csv"
	positionsFile = "positions.csv"

	maxRunSuffix = 1000
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// claimRunDir creates a run directory that did not exist before, adding a
// numeric suffix to base when two saves land in the same millisecond.
func (s *Store) claimRunDir(base string) (string, string, error) {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", "", err
	}
	id := base
	for n := 1; n <= maxRunSuffix; n++ {
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", "", err
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return "", "", fmt.Errorf("storage: no free run directory for %s", base)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Preset     string             `json:"preset"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Frames     int                `json:"frames"`
	Integrator string             `json:"integrator"`
	Bodies     int                `json:"bodies"`
	Metrics    map[string]float64 `json:"metrics"`
	Config     *config.Config     `json:"config,omitempty"`
}

// Save writes meta and rec into a fresh run directory and returns its ID.
// meta.ID and meta.Timestamp are filled in here.
func (s *Store) Save(meta RunMetadata, rec *Recording) (string, error) {
	now := time.Now()
	runID, runDir, err := s.claimRunDir(fmt.Sprintf("%s_%d", meta.Preset, now.UnixMilli()))
	if err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	energy := [][]string{{"frame", "time", "kinetic", "potential", "total"}}
	for _, row := range rec.Energy {
		energy = append(energy, []string{
			strconv.Itoa(row.Frame), formatFloat(row.Time),
			formatFloat(row.Kinetic), formatFloat(row.Potential), formatFloat(row.Total),
		})
	}
	if err := writeCSV(filepath.Join(runDir, energyFile), energy); err != nil {
		return "", err
	}

	positions := [][]string{{"frame", "time", "id", "x", "y"}}
	for _, row := range rec.Positions {
		positions = append(positions, []string{
			strconv.Itoa(row.Frame), formatFloat(row.Time), strconv.Itoa(row.ID),
			formatFloat(row.Pos.X), formatFloat(row.Pos.Y),
		})
	}
	if err := writeCSV(filepath.Join(runDir, positionsFile), positions); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every readable run, oldest first. Directories without valid
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadEnergy(runID string) ([]EnergyRow, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, energyFile))
	if err != nil {
		return nil, err
	}

	rows := make([]EnergyRow, 0, len(records))
	for _, rec := range records {
		if len(rec) < 5 {
			continue
		}
		vals, ok := parseFloats(rec[1:5])
		if !ok {
			continue
		}
		frame, err := strconv.Atoi(rec[0])
		if err != nil {
			continue
		}
		rows = append(rows, EnergyRow{
			Frame:    frame,
			Time:     vals[0],
			Snapshot: metrics.Snapshot{Kinetic: vals[1], Potential: vals[2], Total: vals[3]},
		})
	}
	return rows, nil
}

func (s *Store) LoadPositions(runID string) ([]PositionRow, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, positionsFile))
	if err != nil {
		return nil, err
	}

	rows := make([]PositionRow, 0, len(records))
	for _, rec := range records {
		if len(rec) < 5 {
			continue
		}
		frame, err1 := strconv.Atoi(rec[0])
		id, err2 := strconv.Atoi(rec[2])
		if err1 != nil || err2 != nil {
			continue
		}
		t, ok1 := parseFloats(rec[1:2])
		xy, ok2 := parseFloats(rec[3:5])
		if !ok1 || !ok2 {
			continue
		}
		rows = append(rows, PositionRow{Frame: frame, Time: t[0], ID: id, Pos: r2.Vec{X: xy[0], Y: xy[1]}})
	}
	return rows, nil
}

// LoadRecording reads both series of a run back into a Recording.
func (s *Store) LoadRecording(runID string) (*Recording, error) {
	energy, err := s.LoadEnergy(runID)
	if err != nil {
		return nil, err
	}
	positions, err := s.LoadPositions(runID)
	if err != nil {
		return nil, err
	}
	return &Recording{Energy: energy, Positions: positions}, nil
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return f.Close()
}

// readCSV returns the data rows of a CSV file, header dropped.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if len(records) < 2 {
		return nil, nil
	}
	return records[1:], nil
}

func parseFloats(fields []string) ([]float64, bool) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
