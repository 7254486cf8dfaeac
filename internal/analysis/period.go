package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrTooShort = errors.New("analysis: not enough samples")

// MinSamples is the shortest signal EstimatePeriod accepts.
const MinSamples = 16

// EstimatePeriod returns the period of the strongest non-DC component of
// samples taken every dt. The peak bin is refined with Gaussian interpolation
// over a Hann-windowed spectrum, so the result is not limited to n*dt/k.
func EstimatePeriod(samples []float64, dt float64) (float64, error) {
	n := len(samples)
	if n < MinSamples {
		return 0, fmt.Errorf("%d samples, need %d: %w", n, MinSamples, ErrTooShort)
	}
	if dt <= 0 {
		return 0, fmt.Errorf("dt must be positive, got %v", dt)
	}

	mag := PowerSpectrum(samples)

	peak := 1
	for k := 2; k < len(mag); k++ {
		if mag[k] > mag[peak] {
			peak = k
		}
	}
	if mag[peak] == 0 {
		return 0, fmt.Errorf("flat signal has no period: %w", ErrTooShort)
	}

	k := float64(peak)
	if peak+1 < len(mag) && mag[peak-1] > 0 && mag[peak+1] > 0 {
		a, b, c := math.Log(mag[peak-1]), math.Log(mag[peak]), math.Log(mag[peak+1])
		if den := a - 2*b + c; den != 0 {
			k += 0.5 * (a - c) / den
		}
	}
	return float64(n) * dt / k, nil
}

// PowerSpectrum returns the magnitude of the first n/2 bins of the
// Hann-windowed, mean-removed signal.
func PowerSpectrum(samples []float64) []float64 {
	n := len(samples)
	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	for i, v := range samples {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}

	spectrum := fft.FFTReal(windowed)
	mag := make([]float64, n/2)
	for i := range mag {
		mag[i] = cmplx.Abs(spectrum[i])
	}
	return mag
}
