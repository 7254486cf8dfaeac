package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Meta RunMetadata `json:"meta"`
	*Recording
}

// ExportJSON writes a run as a single indented JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, rec *Recording) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Meta: meta, Recording: rec})
}

func ExportJSONFile(path string, meta RunMetadata, rec *Recording) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := ExportJSON(f, meta, rec); err != nil {
		return err
	}
	return f.Close()
}
