package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

type OrbitReport struct {
	Samples      int     `json:"samples"`
	Duration     float64 `json:"duration"`
	MinRadius    float64 `json:"min_radius"`
	MaxRadius    float64 `json:"max_radius"`
	MeanRadius   float64 `json:"mean_radius"`
	Eccentricity float64 `json:"eccentricity"`
	// Revolutions is the net swept angle over 2π; negative is clockwise on
	// a y-up plot, which is how the default orbits look on screen.
	Revolutions   float64 `json:"revolutions"`
	FFTPeriod     float64 `json:"fft_period"`
	AngularPeriod float64 `json:"angular_period"`
	KeplerPeriod  float64 `json:"kepler_period"`
}

// AnalyzeOrbit summarises a track sampled every dt around a fixed centre of
// the given mass. The FFT period comes from the x coordinate; the Kepler
// period uses the semi-major axis (min+max)/2.
func AnalyzeOrbit(track []r2.Vec, center r2.Vec, dt, mass, g float64) (OrbitReport, error) {
	rep := OrbitReport{Samples: len(track), Duration: float64(len(track)) * dt}
	if len(track) < MinSamples {
		return rep, fmt.Errorf("%d samples, need %d: %w", len(track), MinSamples, ErrTooShort)
	}

	xs := make([]float64, len(track))
	rep.MinRadius = math.Inf(1)
	swept := 0.0
	prev := math.NaN()
	for i, p := range track {
		rel := r2.Sub(p, center)
		xs[i] = rel.X

		r := r2.Norm(rel)
		rep.MinRadius = math.Min(rep.MinRadius, r)
		rep.MaxRadius = math.Max(rep.MaxRadius, r)
		rep.MeanRadius += r

		theta := math.Atan2(rel.Y, rel.X)
		if !math.IsNaN(prev) {
			d := theta - prev
			for d > math.Pi {
				d -= 2 * math.Pi
			}
			for d < -math.Pi {
				d += 2 * math.Pi
			}
			swept += d
		}
		prev = theta
	}
	rep.MeanRadius /= float64(len(track))
	if sum := rep.MaxRadius + rep.MinRadius; sum > 0 {
		rep.Eccentricity = (rep.MaxRadius - rep.MinRadius) / sum
	}

	rep.Revolutions = swept / (2 * math.Pi)
	if swept != 0 {
		rep.AngularPeriod = 2 * math.Pi * float64(len(track)-1) * dt / math.Abs(swept)
	}

	period, err := EstimatePeriod(xs, dt)
	if err != nil {
		return rep, err
	}
	rep.FFTPeriod = period
	rep.KeplerPeriod = physics.OrbitalPeriod((rep.MinRadius+rep.MaxRadius)/2, mass, g)
	return rep, nil
}
