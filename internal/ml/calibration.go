package ml

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/optimize"
)

// Calibration method names accepted in configuration.
const (
	CalibrationSigmoid  = "sigmoid"
	CalibrationIsotonic = "isotonic"
)

// Calibration maps raw log-odds scores to calibrated probabilities.
// Sigmoid (Platt) stores the affine coefficients; isotonic stores the
// step function produced by pool-adjacent-violators.
type Calibration struct {
	Method string    `json:"method"`
	A      float64   `json:"a,omitempty"`
	B      float64   `json:"b,omitempty"`
	Xs     []float64 `json:"xs,omitempty"`
	Vs     []float64 `json:"vs,omitempty"`
}

// FitCalibration fits the requested calibration on (score, label) pairs.
// Callers must ensure both classes are present.
func FitCalibration(method string, scores, labels []float64, maxIter int) (*Calibration, error) {
	if len(scores) == 0 || len(scores) != len(labels) {
		return nil, fmt.Errorf("calibration fit: %d scores with %d labels", len(scores), len(labels))
	}

	switch method {
	case CalibrationSigmoid:
		return fitPlatt(scores, labels, maxIter)
	case CalibrationIsotonic:
		return fitIsotonic(scores, labels), nil
	default:
		return nil, fmt.Errorf("unknown calibration method %q", method)
	}
}

// Apply maps a raw score to a calibrated probability.
func (c *Calibration) Apply(score float64) float64 {
	switch c.Method {
	case CalibrationSigmoid:
		return clampProb(sigmoid(c.A*score + c.B))
	case CalibrationIsotonic:
		return clampProb(c.isotonicLookup(score))
	default:
		return clampProb(sigmoid(score))
	}
}

// fitPlatt minimizes the log loss of sigmoid(A*score + B) over A and B.
func fitPlatt(scores, labels []float64, maxIter int) (*Calibration, error) {
	n := float64(len(scores))

	objective := func(params []float64) float64 {
		loss := 0.0
		for i, s := range scores {
			p := clampProb(sigmoid(params[0]*s + params[1]))
			if labels[i] > 0.5 {
				loss -= math.Log(p)
			} else {
				loss -= math.Log(1 - p)
			}
		}
		return loss / n
	}

	gradient := func(grad, params []float64) {
		grad[0], grad[1] = 0, 0
		for i, s := range scores {
			diff := sigmoid(params[0]*s+params[1]) - labels[i]
			grad[0] += diff * s
			grad[1] += diff
		}
		grad[0] /= n
		grad[1] /= n
	}

	problem := optimize.Problem{Func: objective, Grad: gradient}
	settings := &optimize.Settings{MajorIterations: maxIter}

	result, err := optimize.Minimize(problem, []float64{1, 0}, settings, &optimize.LBFGS{})
	if err != nil {
		return nil, fmt.Errorf("platt fit did not converge: %w", err)
	}

	return &Calibration{Method: CalibrationSigmoid, A: result.X[0], B: result.X[1]}, nil
}

// fitIsotonic runs pool-adjacent-violators over the score-sorted labels
// and stores one (right edge, value) pair per merged block.
func fitIsotonic(scores, labels []float64) *Calibration {
	type pair struct{ s, y float64 }
	pairs := make([]pair, len(scores))
	for i := range scores {
		pairs[i] = pair{scores[i], labels[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].s < pairs[j].s })

	type block struct {
		sum   float64
		count float64
		edge  float64
	}
	var blocks []block
	for _, p := range pairs {
		blocks = append(blocks, block{sum: p.y, count: 1, edge: p.s})
		for len(blocks) > 1 {
			last := len(blocks) - 1
			if blocks[last-1].sum/blocks[last-1].count <= blocks[last].sum/blocks[last].count {
				break
			}
			blocks[last-1].sum += blocks[last].sum
			blocks[last-1].count += blocks[last].count
			blocks[last-1].edge = blocks[last].edge
			blocks = blocks[:last]
		}
	}

	cal := &Calibration{Method: CalibrationIsotonic}
	for _, b := range blocks {
		cal.Xs = append(cal.Xs, b.edge)
		cal.Vs = append(cal.Vs, b.sum/b.count)
	}
	return cal
}

// isotonicLookup evaluates the step function: the value of the first
// block whose right edge covers the score, or the last block beyond it.
func (c *Calibration) isotonicLookup(score float64) float64 {
	if len(c.Xs) == 0 {
		return sigmoid(score)
	}
	idx := sort.SearchFloat64s(c.Xs, score)
	if idx >= len(c.Vs) {
		idx = len(c.Vs) - 1
	}
	return c.Vs[idx]
}

func hasBothClasses(labels []float64) bool {
	sawPos, sawNeg := false, false
	for _, y := range labels {
		if y > 0.5 {
			sawPos = true
		} else {
			sawNeg = true
		}
		if sawPos && sawNeg {
			return true
		}
	}
	return false
}
