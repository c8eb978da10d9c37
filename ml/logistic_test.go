package ml

import (
	"testing"
)

func TestLogisticRegressionSeparableData(t *testing.T) {
	features := [][]float64{
		{1, 0, 0}, {1, 0, 1}, {1, 1, 0},
		{0, 0, 0}, {0, 0, 1}, {0, 1, 1},
	}
	labels := []int{1, 1, 1, 0, 0, 0}

	model := NewLogisticRegression()
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, row := range features {
		label, _, err := model.PredictRow(row)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if label != labels[i] {
			t.Fatalf("row %d: expected %d, got %d", i, labels[i], label)
		}
	}
}

func TestLogisticRegressionImbalancedClasses(t *testing.T) {
	// 1 delayed example against 9 on-time; balanced weighting must keep
	// the minority class separable instead of predicting all zeros.
	features := [][]float64{{1, 1}}
	labels := []int{1}
	for i := 0; i < 9; i++ {
		features = append(features, []float64{0, 0})
		labels = append(labels, 0)
	}

	model := NewLogisticRegression()
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	label, _, err := model.PredictRow([]float64{1, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatal("expected minority class to survive balanced training")
	}
}

func TestLogisticRegressionDeterministic(t *testing.T) {
	features := [][]float64{{1, 0}, {0, 1}, {1, 1}, {0, 0}}
	labels := []int{1, 0, 1, 0}

	first := NewLogisticRegression()
	second := NewLogisticRegression()
	if err := first.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := second.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, row := range features {
		_, p1, err := first.PredictRow(row)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, p2, err := second.PredictRow(row)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p1 != p2 {
			t.Fatalf("expected identical probabilities, got %f vs %f", p1, p2)
		}
	}
}

func TestPredictRowUntrained(t *testing.T) {
	model := NewLogisticRegression()
	if _, _, err := model.PredictRow([]float64{1}); err == nil {
		t.Fatal("expected error for untrained model")
	}
}
