package ml

import (
	"errors"
	"math"
)

// RandomSeed makes every training run reproduce the same shuffles and splits.
const RandomSeed = 42

// LogisticRegression is a binary classifier trained with class-balanced
// full-batch gradient descent. Training starts from a zero weight vector, so
// identical input always produces identical parameters.
type LogisticRegression struct {
	weights []float64
	bias    float64

	LearningRate float64
	MaxIter      int
	Tolerance    float64
}

// NewLogisticRegression returns a classifier with the default solver budget.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{
		LearningRate: 0.1,
		MaxIter:      1000,
		Tolerance:    1e-6,
	}
}

// Train fits the model. Loss contributions are weighted inversely to class
// frequency so the skewed delay/on-time ratio does not collapse the model
// into always predicting the majority class.
func (m *LogisticRegression) Train(features [][]float64, labels []int) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	width := len(features[0])
	for _, row := range features {
		if len(row) != width {
			return errors.New("inconsistent feature width")
		}
	}

	sampleWeights, err := balancedWeights(labels)
	if err != nil {
		return err
	}

	weights := make([]float64, width)
	bias := 0.0
	n := float64(len(features))

	for iter := 0; iter < m.MaxIter; iter++ {
		gradW := make([]float64, width)
		gradB := 0.0
		for i, row := range features {
			p := sigmoid(dot(weights, row) + bias)
			residual := sampleWeights[i] * (p - float64(labels[i]))
			for j, v := range row {
				gradW[j] += residual * v
			}
			gradB += residual
		}

		maxStep := 0.0
		for j := range weights {
			step := m.LearningRate * gradW[j] / n
			weights[j] -= step
			if s := math.Abs(step); s > maxStep {
				maxStep = s
			}
		}
		step := m.LearningRate * gradB / n
		bias -= step
		if s := math.Abs(step); s > maxStep {
			maxStep = s
		}

		if maxStep < m.Tolerance {
			break
		}
	}

	m.weights = weights
	m.bias = bias
	return nil
}

// PredictRow returns the label and delay probability for a single feature row.
func (m *LogisticRegression) PredictRow(features []float64) (int, float64, error) {
	if m.weights == nil {
		return 0, 0, errors.New("model not trained")
	}
	if len(features) != len(m.weights) {
		return 0, 0, errors.New("feature width mismatch")
	}
	p := sigmoid(dot(m.weights, features) + m.bias)
	if p > 0.5 {
		return 1, p, nil
	}
	return 0, p, nil
}

// balancedWeights assigns each sample the weight n / (2 * count(class)), so
// both classes contribute equally to the loss.
func balancedWeights(labels []int) ([]float64, error) {
	var positives, negatives int
	for _, label := range labels {
		switch label {
		case 0:
			negatives++
		case 1:
			positives++
		default:
			return nil, errors.New("labels must be binary")
		}
	}
	if positives == 0 || negatives == 0 {
		return nil, errors.New("training data needs both classes")
	}

	n := float64(len(labels))
	posWeight := n / (2 * float64(positives))
	negWeight := n / (2 * float64(negatives))
	weights := make([]float64, len(labels))
	for i, label := range labels {
		if label == 1 {
			weights[i] = posWeight
		} else {
			weights[i] = negWeight
		}
	}
	return weights, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
