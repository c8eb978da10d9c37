package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"flightdelay/db"
	"flightdelay/ml"
	"flightdelay/monitoring"
)

func trainedHolder(t *testing.T) *ModelHolder {
	t.Helper()

	frame, err := ml.NewFrame(
		[]string{"OPERA", "TIPOVUELO", "MES"},
		[][]string{
			{"Grupo LATAM", "I", "7"},
			{"Grupo LATAM", "I", "7"},
			{"Grupo LATAM", "I", "7"},
			{"Sky Airline", "N", "3"},
			{"Sky Airline", "N", "3"},
			{"Sky Airline", "N", "3"},
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	labels := []int{1, 1, 1, 0, 0, 0}

	features, err := ml.EncodeFeatures(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clf := ml.NewDelayClassifier()
	if err := clf.Fit(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	holder, err := NewModelHolder(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	holder.Swap(clf, []string{"Grupo LATAM", "Sky Airline"}, ModelInfo{
		TrainedAt:  time.Now().UTC(),
		Rows:       frame.Len(),
		DelayRatio: 0.5,
		Features:   ml.FeatureColumns(),
	})
	return holder
}

func setupAPI(t *testing.T, holder *ModelHolder) *http.ServeMux {
	t.Helper()

	Configure(holder, monitoring.NewStats(), nil, nil)
	savePredictions = func(records []db.PredictionRecord) error { return nil }
	t.Cleanup(func() { savePredictions = db.SavePredictions })

	mux := http.NewServeMux()
	RegisterHandlers(mux)
	return mux
}

func postPredict(t *testing.T, mux *http.ServeMux, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestHandlePredict(t *testing.T) {
	mux := setupAPI(t, trainedHolder(t))

	w := postPredict(t, mux, `{"flights":[
		{"OPERA":"Sky Airline","TIPOVUELO":"N","MES":3},
		{"OPERA":"Grupo LATAM","TIPOVUELO":"I","MES":7}
	]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp PredictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	want := []int{0, 1}
	if !reflect.DeepEqual(resp.Predict, want) {
		t.Fatalf("expected %v, got %v", want, resp.Predict)
	}
}

func TestHandlePredictValidation(t *testing.T) {
	mux := setupAPI(t, trainedHolder(t))

	cases := []struct {
		name string
		body string
	}{
		{"unknown operator", `{"flights":[{"OPERA":"Nope Air","TIPOVUELO":"N","MES":3}]}`},
		{"bad flight type", `{"flights":[{"OPERA":"Sky Airline","TIPOVUELO":"X","MES":3}]}`},
		{"month out of range", `{"flights":[{"OPERA":"Sky Airline","TIPOVUELO":"N","MES":13}]}`},
		{"empty payload", `{"flights":[]}`},
		{"invalid json", `{"flights":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postPredict(t, mux, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestHandlePredictUntrainedFallback(t *testing.T) {
	holder, err := NewModelHolder(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Catalog without a trained model: predictions fall back to all zeros.
	holder.Swap(ml.NewDelayClassifier(), []string{"Sky Airline"}, ModelInfo{})
	mux := setupAPI(t, holder)

	w := postPredict(t, mux, `{"flights":[
		{"OPERA":"Sky Airline","TIPOVUELO":"N","MES":3},
		{"OPERA":"Sky Airline","TIPOVUELO":"I","MES":7}
	]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp PredictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !reflect.DeepEqual(resp.Predict, []int{0, 0}) {
		t.Fatalf("expected fallback zeros, got %v", resp.Predict)
	}
}

func TestHandlePredictCachesRepeats(t *testing.T) {
	holder := trainedHolder(t)
	mux := setupAPI(t, holder)

	body := `{"flights":[{"OPERA":"Grupo LATAM","TIPOVUELO":"I","MES":7}]}`
	if w := postPredict(t, mux, body); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	_, hits, err := holder.Predict([]Flight{{Opera: "Grupo LATAM", TipoVuelo: "I", Mes: 7}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected cache hit for repeated triple, got %d", hits)
	}
}
