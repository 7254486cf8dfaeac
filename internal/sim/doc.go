// Package sim owns a running gravity simulation.
//
// A [Simulation] holds the attractor and the orbiting bodies and advances them
// once per rendered frame:
//
//	s, _ := sim.New(config.DefaultConfig())
//	for frame := range frames {
//	    if err := s.Advance(frame.Elapsed.Seconds()); err != nil {
//	        return err
//	    }
//	    render(s.Frame())
//	}
//
// Advance steps every body with the configured stepper unless the simulation
// is paused, then recomputes every trajectory preview regardless of pause
// state. Spawning goes through [Simulation.TrySpawn], which turns placement
// and capacity problems into a [SpawnResult] rather than an error.
//
// # Thread Safety
//
// A Simulation is owned by a single goroutine and is NOT safe for concurrent
// use. Everything it hands out ([Frame], [BodySnapshot], Bodies) is a copy or
// a slice the simulation never writes again.
package sim
