package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"flightdelay/ml"
)

func TestHandleHealth(t *testing.T) {
	mux := setupAPI(t, trainedHolder(t))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["status"] != "OK" {
		t.Fatalf("unexpected status: %q", payload["status"])
	}
}

func TestHandleModelInfo(t *testing.T) {
	mux := setupAPI(t, trainedHolder(t))

	req := httptest.NewRequest(http.MethodGet, "/api/model", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["trained"] != true {
		t.Fatalf("expected trained model, got %v", payload["trained"])
	}
}

func TestSwapReplacesCatalogAndCache(t *testing.T) {
	holder := trainedHolder(t)

	if _, _, err := holder.Predict([]Flight{{Opera: "Grupo LATAM", TipoVuelo: "I", Mes: 7}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	holder.Swap(ml.NewDelayClassifier(), []string{"Copa Air"}, ModelInfo{})

	if holder.ValidOperator("Grupo LATAM") {
		t.Fatal("old catalog should be gone after swap")
	}
	if !holder.ValidOperator("Copa Air") {
		t.Fatal("new catalog should be active after swap")
	}

	_, hits, err := holder.Predict([]Flight{{Opera: "Grupo LATAM", TipoVuelo: "I", Mes: 7}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits != 0 {
		t.Fatal("cache must be purged on swap")
	}
}
