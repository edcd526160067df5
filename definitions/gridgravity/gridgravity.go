// Package gridgravity exercises the full scatter/stencil/gather path:
// agents attract their neighbors within one grid cell's range on a
// torus world. The kernel k(center,neighbor) = (neighbor-center)*mask
// makes the accumulated pull on every ordered pair of occupied slots
// cancel its mirror pair exactly, so total momentum change sums to
// zero every step (spec §8 property 7). The mask channel is needed
// because most cells sit empty relative to capacity: without it a
// neighbor's all-zero padding slot would read as a phantom agent at
// (0,0) and pull every real agent toward the origin.
package gridgravity

import (
	"github.com/evolimo/evolimo/internal/definition"
	"github.com/evolimo/evolimo/internal/ir"
)

const (
	gridSize     = 4
	gridCapacity = 4
	stencilRange = 1
)

func pullKernel(center, neighbor ir.Expr) ir.Expr {
	cx, cy := ir.Slice(center, 1, 0, 1), ir.Slice(center, 1, 1, 1)
	nx, ny, nmask := ir.Slice(neighbor, 1, 0, 1), ir.Slice(neighbor, 1, 1, 1), ir.Slice(neighbor, 1, 2, 1)
	dx := ir.Mul(ir.Sub(nx, cx), nmask)
	dy := ir.Mul(ir.Sub(ny, cy), nmask)
	return ir.Cat(1, dx, dy, ir.Lit(0))
}

func build() *definition.Definition {
	occupied := ir.Add(ir.Mul(ir.State("pos_x"), ir.Lit(0)), ir.Lit(1))
	positions := ir.Cat(1, ir.State("pos_x"), ir.State("pos_y"), occupied)
	scattered := ir.Scatter(positions, ir.State("pos_x"), ir.State("pos_y"))
	pulled := ir.Stencil(scattered, stencilRange, pullKernel)
	force := ir.Gather(pulled, ir.State("pos_x"), ir.State("pos_y"))

	forceX := ir.Slice(force, 1, 0, 1)
	forceY := ir.Slice(force, 1, 1, 1)

	newVelX := ir.Add(ir.State("vel_x"), ir.Mul(forceX, ir.Param("strength", "grav")))
	newVelY := ir.Add(ir.State("vel_y"), ir.Mul(forceY, ir.Param("strength", "grav")))

	return definition.NewBuilder("gridgravity").
		WithStateOrder("pos_x", "pos_y", "vel_x", "vel_y").
		WithParamGroup("grav", definition.ActivationNone).
		WithRule("vel_x", newVelX).
		WithRule("vel_y", newVelY).
		WithRule("pos_x", ir.Add(ir.State("pos_x"), ir.State("vel_x"))).
		WithRule("pos_y", ir.Add(ir.State("pos_y"), ir.State("vel_y"))).
		WithBoundary("pos_x", definition.BoundaryTorus, 0, gridSize).
		WithBoundary("pos_y", definition.BoundaryTorus, 0, gridSize).
		WithGrid(gridSize, gridSize, gridCapacity, 1, 1).
		WithStateInit("pos_x", definition.UniformDist(0, gridSize)).
		WithStateInit("pos_y", definition.UniformDist(0, gridSize)).
		WithStateInit("vel_x", definition.ConstDist(0)).
		WithStateInit("vel_y", definition.ConstDist(0)).
		// Genes are constant across agents so every agent's phenotype
		// output, including grav.strength, comes out identical: the
		// pairwise pull still cancels exactly once scaled (spec §8
		// property 7) instead of only before scaling.
		WithGenesInit(definition.ConstDist(0.3)).
		WithAgents(10).
		WithGeneLen(4).
		WithHiddenLen(6).
		Build()
}

func init() {
	definition.Register("gridgravity", build)
}
