// Package phenotype builds and evaluates the shallow network that maps
// each agent's gene vector to its per-group dynamics parameters (spec
// §4.4): genes -> hidden (ReLU) -> one linear head per parameter
// group, each squashed by that group's configured activation.
package phenotype

import (
	"fmt"
	"math"
	"sort"

	"github.com/evolimo/evolimo/internal/compiler"
	"github.com/evolimo/evolimo/internal/tensor"
)

// Head is one parameter group's output layer.
type Head struct {
	Group      string
	Activation string
	Params     []string // param ids, in the compiled group's order
	W          *tensor.Dense
	B          *tensor.Dense
}

// Engine holds the weights of the phenotype network.
type Engine struct {
	GeneLen, HiddenLen int
	W1                 *tensor.Dense // [GeneLen, HiddenLen]
	B1                 *tensor.Dense // [1, HiddenLen]
	Heads              []Head        // one per OutputIR.Groups entry, sorted by group name
}

// RandSource is the minimal interface the builder needs for weight
// initialization, satisfied by *math/rand.Rand.
type RandSource interface {
	Float64() float64
}

// Build allocates an Engine sized for out, with weights drawn from rng
// via a small-variance uniform fill (spec §4.4 leaves initialization
// unspecified beyond "small random weights").
func Build(out *compiler.OutputIR, rng RandSource) (*Engine, error) {
	geneLen, hiddenLen := out.Constants.GeneLen, out.Constants.HiddenLen
	if geneLen <= 0 || hiddenLen <= 0 {
		return nil, fmt.Errorf("phenotype.Build: gene_len=%d hidden_len=%d must both be positive", geneLen, hiddenLen)
	}

	w1, err := randDense(geneLen, hiddenLen, rng)
	if err != nil {
		return nil, err
	}
	b1, err := tensor.Fill(1, hiddenLen, 0)
	if err != nil {
		return nil, err
	}

	groupNames := make([]string, 0, len(out.Groups))
	for name := range out.Groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	heads := make([]Head, 0, len(groupNames))
	for _, name := range groupNames {
		g := out.Groups[name]
		w, err := randDense(hiddenLen, len(g.Params), rng)
		if err != nil {
			return nil, err
		}
		b, err := tensor.Fill(1, len(g.Params), 0)
		if err != nil {
			return nil, err
		}
		heads = append(heads, Head{Group: name, Activation: g.Activation, Params: g.Params, W: w, B: b})
	}

	return &Engine{GeneLen: geneLen, HiddenLen: hiddenLen, W1: w1, B1: b1, Heads: heads}, nil
}

func randDense(rows, cols int, rng RandSource) (*tensor.Dense, error) {
	const scale = 0.1
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * scale
	}
	return tensor.FromRows(rows, cols, data)
}

// Eval runs genes ([N,GeneLen]) through the network, returning one
// [N,1] column per parameter id, keyed "group.id" the same way
// runtime.Interpreter.Step expects its params map.
func (e *Engine) Eval(genes *tensor.Dense) (map[string]*tensor.Dense, error) {
	hPre, err := tensor.MatMul(genes, e.W1)
	if err != nil {
		return nil, err
	}
	hPre, err = tensor.AddBroadcastRow(hPre, e.B1)
	if err != nil {
		return nil, err
	}
	hidden, err := tensor.Relu(hPre)
	if err != nil {
		return nil, err
	}

	params := map[string]*tensor.Dense{}
	for _, head := range e.Heads {
		pre, err := tensor.MatMul(hidden, head.W)
		if err != nil {
			return nil, err
		}
		pre, err = tensor.AddBroadcastRow(pre, head.B)
		if err != nil {
			return nil, err
		}
		activated, err := activate(pre, head.Activation)
		if err != nil {
			return nil, err
		}
		for j, id := range head.Params {
			col, err := tensor.Col(activated, j)
			if err != nil {
				return nil, err
			}
			params[head.Group+"."+id] = col
		}
	}
	return params, nil
}

func activate(t *tensor.Dense, kind string) (*tensor.Dense, error) {
	switch kind {
	case "none":
		return t, nil
	case "tanh":
		return mapTensor(t, tanh)
	case "sigmoid":
		return mapTensor(t, sigmoid)
	case "softmax":
		return softmaxRows(t)
	default:
		return nil, fmt.Errorf("phenotype: unknown activation %q", kind)
	}
}

func tanh(x float64) float64 {
	if x > 20 {
		return 1
	}
	if x < -20 {
		return -1
	}
	e2x := math.Exp(2 * x)
	return (e2x - 1) / (e2x + 1)
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func mapTensor(t *tensor.Dense, f func(float64) float64) (*tensor.Dense, error) {
	rows, cols := t.Rows(), t.Cols()
	data := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data[i*cols+j] = f(tensor.At(t, i, j))
		}
	}
	return tensor.FromRows(rows, cols, data)
}

// softmaxRows normalizes each row to a probability distribution.
func softmaxRows(t *tensor.Dense) (*tensor.Dense, error) {
	rows, cols := t.Rows(), t.Cols()
	data := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		max := tensor.At(t, i, 0)
		for j := 1; j < cols; j++ {
			if v := tensor.At(t, i, j); v > max {
				max = v
			}
		}
		var sum float64
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			v := math.Exp(tensor.At(t, i, j) - max)
			row[j] = v
			sum += v
		}
		for j := 0; j < cols; j++ {
			data[i*cols+j] = row[j] / sum
		}
	}
	return tensor.FromRows(rows, cols, data)
}
