// Package grid implements the fixed-capacity uniform spatial grid used
// to turn O(N²) neighbor interactions into the near-linear
// scatter → stencil → gather pipeline of spec §4.5. There is no
// tensor library in the example pack that models rank-4 [H,W,C,D]
// buffers (github.com/katalvlaran/lvlath/matrix is rank-2 only), so
// the grid itself is plain nested Go slices; every 2-D tensor it reads
// from or writes to is still a *tensor.Dense.
package grid

import (
	"fmt"
	"math"

	"github.com/evolimo/evolimo/internal/tensor"
)

// Cell holds Capacity slots of D-length feature vectors.
type Cell struct {
	Slots [][]float64
}

// Grid is a [H,W,C,D] buffer.
type Grid struct {
	H, W, C, D int
	Cells      [][]Cell // Cells[y][x]
}

func newGrid(h, w, c, d int) *Grid {
	cells := make([][]Cell, h)
	for y := 0; y < h; y++ {
		cells[y] = make([]Cell, w)
		for x := 0; x < w; x++ {
			slots := make([][]float64, c)
			for s := 0; s < c; s++ {
				slots[s] = make([]float64, d)
			}
			cells[y][x] = Cell{Slots: slots}
		}
	}
	return &Grid{H: h, W: w, C: c, D: d, Cells: cells}
}

// slot identifies where one agent landed during the last Scatter.
type slot struct {
	valid   bool
	cx, cy  int
	slotIdx int
}

// CapacityReport counts particles dropped for exceeding a cell's
// capacity during one Scatter call (spec §7 CapacityOverflow: soft,
// counted, never raised).
type CapacityReport struct {
	DroppedByCell map[[2]int]int
	TotalDropped  int
}

func newCapacityReport() CapacityReport {
	return CapacityReport{DroppedByCell: map[[2]int]int{}}
}

// Engine holds the grid's static configuration and the slot map of the
// most recent Scatter, which Gather reverses.
type Engine struct {
	Width, Height, Capacity int
	CellSizeX, CellSizeY    float64

	lastSlots []slot
}

// NewEngine builds a grid engine for the given cell topology.
func NewEngine(width, height, capacity int, cellSizeX, cellSizeY float64) *Engine {
	return &Engine{
		Width: width, Height: height, Capacity: capacity,
		CellSizeX: cellSizeX, CellSizeY: cellSizeY,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Scatter projects agent rows of value ([N,D]) into the grid by
// position (x,y), assigning slots in agent-iteration order. Agents
// beyond a cell's capacity are dropped for this call; the contract is
// that Gather later reads zero for them.
func (e *Engine) Scatter(value, x, y *tensor.Dense) (*Grid, CapacityReport, error) {
	n, d := value.Rows(), value.Cols()
	if x.Rows() != n || y.Rows() != n {
		return nil, CapacityReport{}, fmt.Errorf("grid.Scatter: x/y row count must match value (%d)", n)
	}

	g := newGrid(e.Height, e.Width, e.Capacity, d)
	counts := make([][]int, e.Height)
	for i := range counts {
		counts[i] = make([]int, e.Width)
	}

	report := newCapacityReport()
	slots := make([]slot, n)

	for i := 0; i < n; i++ {
		px := tensor.At(x, i, 0)
		py := tensor.At(y, i, 0)
		cx := clampInt(int(math.Floor(px/e.CellSizeX)), 0, e.Width-1)
		cy := clampInt(int(math.Floor(py/e.CellSizeY)), 0, e.Height-1)

		if counts[cy][cx] >= e.Capacity {
			report.TotalDropped++
			report.DroppedByCell[[2]int{cx, cy}]++
			slots[i] = slot{valid: false}
			continue
		}

		s := counts[cy][cx]
		counts[cy][cx]++
		for k := 0; k < d; k++ {
			g.Cells[cy][cx].Slots[s][k] = tensor.At(value, i, k)
		}
		slots[i] = slot{valid: true, cx: cx, cy: cy, slotIdx: s}
	}

	e.lastSlots = slots
	return g, report, nil
}

// Kernel is the pairwise reduction applied between a center and
// neighbor slot vector. It is the runtime's binding of a stencil's
// compiled kernel_operations to concrete float64 slices.
type Kernel func(center, neighbor []float64) ([]float64, error)

// Stencil applies kernel across every neighbor pair within rng cells
// of each other, torus-wrapping at the world boundary (spec §4.5). The
// outer loop runs offsets (dy,dx) in lexical order and the inner loop
// runs neighbor slots ascending, fixing the accumulation order so two
// implementations agree bit-for-bit (spec §5, §9).
func (e *Engine) Stencil(g *Grid, rng int, kernel Kernel) (*Grid, error) {
	h, w, c, d := g.H, g.W, g.C, g.D
	out := newGrid(h, w, c, d)

	padded := newGrid(h+2*rng, w+2*rng, c, d)
	for py := 0; py < h+2*rng; py++ {
		for px := 0; px < w+2*rng; px++ {
			sy := ((py-rng)%h + h) % h
			sx := ((px-rng)%w + w) % w
			padded.Cells[py][px] = g.Cells[sy][sx]
		}
	}

	for dy := -rng; dy <= rng; dy++ {
		for dx := -rng; dx <= rng; dx++ {
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					shifted := padded.Cells[y+rng+dy][x+rng+dx]
					center := g.Cells[y][x]
					for cc := 0; cc < c; cc++ {
						acc := out.Cells[y][x].Slots[cc]
						for cn := 0; cn < c; cn++ {
							if dy == 0 && dx == 0 && cc == cn {
								continue
							}
							res, err := kernel(center.Slots[cc], shifted.Slots[cn])
							if err != nil {
								return nil, err
							}
							if len(res) != d {
								return nil, fmt.Errorf("grid.Stencil: kernel returned %d channels, want %d", len(res), d)
							}
							for k := 0; k < d; k++ {
								acc[k] += res[k]
							}
						}
					}
				}
			}
		}
	}

	return out, nil
}

// Gather reverses the slot map recorded by the last Scatter, reading
// each agent's assigned (cell,slot) vector. Agents dropped at scatter
// time read zero.
func (e *Engine) Gather(g *Grid, n int) (*tensor.Dense, error) {
	if len(e.lastSlots) != n {
		return nil, fmt.Errorf("grid.Gather: no matching Scatter recorded for %d agents", n)
	}
	out, err := tensor.New(n, g.D)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		s := e.lastSlots[i]
		if !s.valid {
			continue
		}
		vec := g.Cells[s.cy][s.cx].Slots[s.slotIdx]
		for k := 0; k < g.D; k++ {
			if err := out.Set(i, k, vec[k]); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
