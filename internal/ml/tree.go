package ml

import (
	"fmt"
	"math"
	"sort"
)

// TreeNode is one node of a regression tree. Leaves carry the additive
// log-odds contribution.
type TreeNode struct {
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
	Leaf      bool      `json:"leaf,omitempty"`
	Value     float64   `json:"value,omitempty"`
}

func (n *TreeNode) eval(v []float64) float64 {
	node := n
	for !node.Leaf {
		if v[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// BoostedTrees is a gradient boosted ensemble of shallow regression trees
// fit to the log-loss gradient, predicting in log-odds space.
type BoostedTrees struct {
	Trees        []*TreeNode `json:"trees"`
	LearningRate float64     `json:"learning_rate"`
	Base         float64     `json:"base"`
}

// TreeOptions configures the boosting fit.
type TreeOptions struct {
	Trees        int
	Depth        int
	LearningRate float64
}

const minLeafSamples = 5

// FitBoostedTrees runs gradient boosting on the log loss. Each round fits
// a depth-limited tree to the residuals y - p and sets leaf values with a
// single Newton step.
func FitBoostedTrees(x [][]float64, y []float64, opts TreeOptions) (*BoostedTrees, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, fmt.Errorf("boosted trees fit: %d samples with %d labels", len(x), len(y))
	}

	pos := 0.0
	for _, label := range y {
		pos += label
	}
	baseRate := clampProb(pos / float64(len(y)))

	model := &BoostedTrees{
		LearningRate: opts.LearningRate,
		Base:         math.Log(baseRate / (1 - baseRate)),
	}

	scores := make([]float64, len(y))
	for i := range scores {
		scores[i] = model.Base
	}

	residuals := make([]float64, len(y))
	hessians := make([]float64, len(y))
	indices := make([]int, len(y))
	for i := range indices {
		indices[i] = i
	}

	for round := 0; round < opts.Trees; round++ {
		for i := range y {
			p := sigmoid(scores[i])
			residuals[i] = y[i] - p
			hessians[i] = p * (1 - p)
		}

		tree := growTree(x, residuals, hessians, indices, opts.Depth)
		model.Trees = append(model.Trees, tree)

		for i, row := range x {
			scores[i] += opts.LearningRate * tree.eval(row)
		}
	}

	return model, nil
}

// growTree recursively splits on the residual variance reduction.
func growTree(x [][]float64, residuals, hessians []float64, indices []int, depth int) *TreeNode {
	if depth <= 0 || len(indices) < 2*minLeafSamples {
		return leafNode(residuals, hessians, indices)
	}

	feature, threshold, ok := bestSplit(x, residuals, indices)
	if !ok {
		return leafNode(residuals, hessians, indices)
	}

	var left, right []int
	for _, i := range indices {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < minLeafSamples || len(right) < minLeafSamples {
		return leafNode(residuals, hessians, indices)
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      growTree(x, residuals, hessians, left, depth-1),
		Right:     growTree(x, residuals, hessians, right, depth-1),
	}
}

// leafNode sets the leaf value with a Newton step on the log loss:
// sum(residual) / sum(p*(1-p)).
func leafNode(residuals, hessians []float64, indices []int) *TreeNode {
	num, den := 0.0, 0.0
	for _, i := range indices {
		num += residuals[i]
		den += hessians[i]
	}
	value := 0.0
	if den > 1e-12 {
		value = num / den
	}
	return &TreeNode{Leaf: true, Value: value}
}

// bestSplit scans every feature for the threshold with the largest
// squared-error reduction on the residuals.
func bestSplit(x [][]float64, residuals []float64, indices []int) (int, float64, bool) {
	dim := len(x[indices[0]])

	total := 0.0
	for _, i := range indices {
		total += residuals[i]
	}
	n := float64(len(indices))
	baseGain := total * total / n

	bestGain := baseGain
	bestFeature, bestThreshold := -1, 0.0

	sorted := make([]int, len(indices))
	for feature := 0; feature < dim; feature++ {
		copy(sorted, indices)
		sort.Slice(sorted, func(a, b int) bool {
			return x[sorted[a]][feature] < x[sorted[b]][feature]
		})

		leftSum, leftN := 0.0, 0.0
		for pos := 0; pos < len(sorted)-1; pos++ {
			i := sorted[pos]
			leftSum += residuals[i]
			leftN++

			cur, next := x[i][feature], x[sorted[pos+1]][feature]
			if cur == next {
				continue
			}
			if int(leftN) < minLeafSamples || len(sorted)-int(leftN) < minLeafSamples {
				continue
			}

			rightSum := total - leftSum
			rightN := n - leftN
			gain := leftSum*leftSum/leftN + rightSum*rightSum/rightN
			if gain > bestGain+1e-12 {
				bestGain = gain
				bestFeature = feature
				bestThreshold = (cur + next) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

// Score returns the log-odds prediction for a feature vector.
func (b *BoostedTrees) Score(v []float64) float64 {
	z := b.Base
	for _, tree := range b.Trees {
		z += b.LearningRate * tree.eval(v)
	}
	return z
}

// PredictProba returns P(player1 wins), clamped away from 0 and 1.
func (b *BoostedTrees) PredictProba(v []float64) float64 {
	return clampProb(sigmoid(b.Score(v)))
}
