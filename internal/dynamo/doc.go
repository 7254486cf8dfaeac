// Package dynamo provides the core primitives shared by the gravity
// simulation packages.
//
// The package defines the small vocabulary everything else is built from:
//
//   - [BodyState]: position and velocity of one body, the integrable state
//   - vector helpers over [r2.Vec]: [Distance], [Length], [Normalize], [IsFinite]
//   - the error taxonomy: [ErrInvalidBody], [ErrDegenerate], [ErrInvalidStep], ...
//
// # Example
//
//	s := dynamo.BodyState{Pos: r2.Vec{X: 150}, Vel: r2.Vec{Y: -11.5}}
//	if !s.IsValid() {
//	    return dynamo.ErrInvalidState
//	}
//
// # Thread Safety
//
// Everything in this package is a value type or a pure function and is safe
// for concurrent use.
package dynamo
