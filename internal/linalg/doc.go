// Package linalg provides the banded linear algebra used by the
// convection-diffusion engine.
//
// The package defines the numeric building blocks of the finite-difference
// scheme:
//
//   - [Vector]: dense, resizable numeric buffer with elementwise arithmetic
//   - [List]: ordered container that owns deep copies of its elements
//   - [Tridiagonal]: sub/main/super band operator over a 1-D grid
//   - [Solver]: "operator division", i.e. solving D·x = f
//
// # Addressing
//
// Entry (i, j) of a [Tridiagonal] lives in band j-i+1 at slot i. Column -1
// on row 0 and column n on row n-1 are valid in-band addresses; they hold the
// ghost coefficients that boundary conditions fold into the system.
//
// # Example
//
//	d, _ := linalg.NewTridiagonal(n, -1, 2, -1)
//	f := linalg.NewVector(n, 1)
//	x, stats, err := linalg.NewGaussSeidel(100, 0).Solve(d, f)
//
// # Thread Safety
//
// Values are NOT safe for concurrent mutation. [RedBlack] parallelises a
// single solve internally and is the only concurrent code in the package.
package linalg
