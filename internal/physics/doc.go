// Package physics describes the convection-diffusion problem being solved.
//
//	du/dt - ε·d²u/dx² + C(x,t)·du/dx = F(x,t)
//	u(0,x) = u0(x)
//	u(t,L) = G(L,t)                        (Dirichlet, right edge)
//	α(0,t)·u(t,0) + du/dn(t,0) = G(0,t)    (Robin, left edge, n = -x)
//
// A [Model] carries ε and the callables F, C, α, G and u0. Models are plain
// values passed to the assembler and marcher, so tests can inject synthetic
// fields:
//
//	m := physics.Reference()
//	m.Convection = physics.Constant(0)
//
// [Reference] is the default problem; see
// [ListPresets] for the bundled variations.
package physics
