// Package physics provides the gravity model and the bodies it acts on.
//
// A single stationary [Attractor] pulls every orbiting [Body] with a softened
// inverse-square law:
//
//	a = -G*M*r / (|r|^2 + eps^2)^1.5,  r = body - attractor
//
// The softening length eps bounds the acceleration when a body passes close to
// the attractor. eps = 0 is allowed and gives the pure Newtonian force; callers
// choosing it accept an unbounded acceleration at r = 0.
//
// # Construction
//
// [NewAttractor] and [NewBody] refuse non-positive masses and non-finite
// coordinates, so NaNs never enter the simulation through a body:
//
//	sun, _ := physics.NewAttractor(r2.Vec{X: 640, Y: 360}, 10000, 30)
//	earth, _ := physics.NewBody("earth", r2.Vec{X: 790, Y: 360}, r2.Vec{}, 10, 6)
//	_ = earth.AddCircularVelocity(sun, 2.0)
package physics
