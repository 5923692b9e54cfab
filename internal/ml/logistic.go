package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

const probEps = 1e-6

// Logistic is an L2-regularized logistic regression. Weights and bias are
// exported for JSON persistence.
type Logistic struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// LogisticOptions configures the fit.
type LogisticOptions struct {
	MaxIter int
	L2      float64
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func clampProb(p float64) float64 {
	if p < probEps {
		return probEps
	}
	if p > 1-probEps {
		return 1 - probEps
	}
	return p
}

// FitLogistic minimizes the mean log loss plus an L2 penalty on the
// weights (the bias is left unpenalized) with L-BFGS.
func FitLogistic(x [][]float64, y []float64, opts LogisticOptions) (*Logistic, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, fmt.Errorf("logistic fit: %d samples with %d labels", len(x), len(y))
	}
	dim := len(x[0])
	n := float64(len(x))

	// params = [w_0 .. w_{dim-1}, bias]
	objective := func(params []float64) float64 {
		loss := 0.0
		for i, row := range x {
			z := params[dim]
			for j, v := range row {
				z += params[j] * v
			}
			p := clampProb(sigmoid(z))
			if y[i] > 0.5 {
				loss -= math.Log(p)
			} else {
				loss -= math.Log(1 - p)
			}
		}
		loss /= n
		for j := 0; j < dim; j++ {
			loss += 0.5 * opts.L2 * params[j] * params[j] / n
		}
		return loss
	}

	gradient := func(grad, params []float64) {
		for j := range grad {
			grad[j] = 0
		}
		for i, row := range x {
			z := params[dim]
			for j, v := range row {
				z += params[j] * v
			}
			diff := sigmoid(z) - y[i]
			for j, v := range row {
				grad[j] += diff * v
			}
			grad[dim] += diff
		}
		for j := 0; j <= dim; j++ {
			grad[j] /= n
		}
		for j := 0; j < dim; j++ {
			grad[j] += opts.L2 * params[j] / n
		}
	}

	problem := optimize.Problem{Func: objective, Grad: gradient}
	settings := &optimize.Settings{MajorIterations: opts.MaxIter}

	initial := make([]float64, dim+1)
	result, err := optimize.Minimize(problem, initial, settings, &optimize.LBFGS{})
	if err != nil {
		return nil, fmt.Errorf("logistic fit did not converge: %w", err)
	}

	model := &Logistic{
		Weights: make([]float64, dim),
		Bias:    result.X[dim],
	}
	copy(model.Weights, result.X[:dim])
	return model, nil
}

// Score returns the pre-sigmoid margin for a feature vector.
func (l *Logistic) Score(v []float64) float64 {
	z := l.Bias
	for j, w := range l.Weights {
		if j < len(v) {
			z += w * v[j]
		}
	}
	return z
}

// PredictProba returns P(player1 wins), clamped away from 0 and 1.
func (l *Logistic) PredictProba(v []float64) float64 {
	return clampProb(sigmoid(l.Score(v)))
}
