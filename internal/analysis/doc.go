// Package analysis characterises recorded or simulated orbits.
//
//   - [EstimatePeriod]: dominant period of a sampled signal via FFT
//   - [AnalyzeOrbit]: radius range, eccentricity and period estimates for one track
//   - [Divergence]: growth rate of the separation between two nearby orbits
//   - [TrackToASCII]: quick terminal plot of one or more tracks
//
// # Period Estimates
//
// A recorded track gives three independent periods that should agree for a
// clean orbit:
//
//	rep, _ := analysis.AnalyzeOrbit(track, sun, dt, mass, g)
//	fmt.Println(rep.FFTPeriod, rep.AngularPeriod, rep.KeplerPeriod)
package analysis
