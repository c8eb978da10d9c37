package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"flightdelay/db"
	"flightdelay/ml"
	"flightdelay/monitoring"
)

// Flight is a single flight to score.
type Flight struct {
	Opera     string `json:"OPERA"`
	TipoVuelo string `json:"TIPOVUELO"`
	Mes       int    `json:"MES"`
}

// PredictRequest is the batch request body for POST /api/predict.
type PredictRequest struct {
	Flights []Flight `json:"flights"`
}

// PredictResponse carries one 0/1 label per requested flight, in order.
type PredictResponse struct {
	Predict []int `json:"predict"`
}

var (
	modelHolder  *ModelHolder
	servingStats *monitoring.Stats
	statsHub     *monitoring.StatsHub
	logger       = zap.NewNop()

	// savePredictions is swappable so handler tests run without sqlite.
	savePredictions = db.SavePredictions
)

// Configure wires the shared serving state into the handlers. Call before
// RegisterHandlers.
func Configure(holder *ModelHolder, stats *monitoring.Stats, hub *monitoring.StatsHub, log *zap.Logger) {
	modelHolder = holder
	servingStats = stats
	statsHub = hub
	if log != nil {
		logger = log
	}
}

// RegisterHandlers registers all API routes.
func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/predict", handlePredict)
	mux.HandleFunc("GET /api/model", handleModelInfo)
	if statsHub != nil {
		mux.HandleFunc("GET /api/ws/stats", statsHub.HandleWebSocket)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Flights) == 0 {
		respondError(w, http.StatusBadRequest, "empty 'flights' payload")
		return
	}

	for _, flight := range req.Flights {
		if reasons := validateFlight(flight); len(reasons) > 0 {
			servingStats.RecordRejection()
			respondError(w, http.StatusBadRequest, strings.Join(reasons, ", "))
			return
		}
	}

	labels, cacheHits, err := modelHolder.Predict(req.Flights)
	if err != nil {
		var schemaErr *ml.SchemaError
		if errors.As(err, &schemaErr) {
			respondError(w, http.StatusBadRequest, schemaErr.Error())
			return
		}
		logger.Error("prediction failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "prediction failed")
		return
	}

	servingStats.RecordPredictions(labels, cacheHits)
	logPredictionBatch(req.Flights, labels)

	respondJSON(w, http.StatusOK, PredictResponse{Predict: labels})
}

func handleModelInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"trained": modelHolder.Trained(),
		"model":   modelHolder.Info(),
		"stats":   servingStats.Snapshot(),
	})
}

// validateFlight checks the domain constraints the encoder does not enforce:
// operator from the training catalog, flight type N or I, month 1..12.
func validateFlight(f Flight) []string {
	var reasons []string
	if !modelHolder.ValidOperator(f.Opera) {
		reasons = append(reasons, "invalid OPERA")
	}
	if f.TipoVuelo != "N" && f.TipoVuelo != "I" {
		reasons = append(reasons, "invalid TIPOVUELO (must be 'N' or 'I')")
	}
	if f.Mes < 1 || f.Mes > 12 {
		reasons = append(reasons, "invalid MES (must be 1..12)")
	}
	return reasons
}

func logPredictionBatch(flights []Flight, labels []int) {
	records := make([]db.PredictionRecord, len(flights))
	now := time.Now().UTC()
	for i, f := range flights {
		records[i] = db.PredictionRecord{
			Operator:   f.Opera,
			FlightType: f.TipoVuelo,
			Month:      f.Mes,
			Label:      labels[i],
			CreatedAt:  now,
		}
	}
	if err := savePredictions(records); err != nil {
		logger.Warn("prediction log write failed", zap.Error(err))
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
