package ml

// DelayClassifier wraps the trained model behind the fit/predict contract the
// serving layer depends on. Fit replaces the trained state wholesale; Predict
// before any Fit returns all zeros instead of failing. The classifier does no
// internal locking: callers must not run Fit concurrently with Predict (the
// HTTP layer trains before serving and serializes refits behind its holder).
type DelayClassifier struct {
	state classifierState
}

// classifierState is the Untrained/Trained variant. Keeping the fallback
// branch in a type rather than a nil check means Predict cannot forget it.
type classifierState interface {
	predict(features [][]float64) []int
}

type untrained struct{}

func (untrained) predict(features [][]float64) []int {
	return make([]int, len(features))
}

type trained struct {
	model *LogisticRegression
}

func (s trained) predict(features [][]float64) []int {
	labels := make([]int, len(features))
	for i, row := range features {
		label, _, err := s.model.PredictRow(row)
		if err != nil {
			label = 0
		}
		labels[i] = label
	}
	return labels
}

// NewDelayClassifier returns an untrained classifier.
func NewDelayClassifier() *DelayClassifier {
	return &DelayClassifier{state: untrained{}}
}

// Fit trains a fresh model on the encoded features and replaces any previous
// state. Refitting never blends with earlier training runs.
func (c *DelayClassifier) Fit(features [][]float64, labels []int) error {
	model := NewLogisticRegression()
	if err := model.Train(features, labels); err != nil {
		return err
	}
	c.state = trained{model: model}
	return nil
}

// Predict returns one 0/1 label per feature row, in input order. On an
// untrained classifier every label is 0.
func (c *DelayClassifier) Predict(features [][]float64) []int {
	return c.state.predict(features)
}

// Trained reports whether Fit has completed at least once.
func (c *DelayClassifier) Trained() bool {
	_, ok := c.state.(trained)
	return ok
}
