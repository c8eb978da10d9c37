package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// InitDB initializes the SQLite database
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        operator TEXT NOT NULL,
        flight_type TEXT NOT NULL,
        month INTEGER NOT NULL,
        label INTEGER NOT NULL,
        cached INTEGER DEFAULT 0,
        created_at DATETIME NOT NULL
    );
    CREATE TABLE IF NOT EXISTS training_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_name VARCHAR(50),
        rows INTEGER,
        delay_ratio REAL,
        accuracy REAL,
        precision REAL,
        recall REAL,
        trained_at DATETIME
    );
    `

	_, err = database.Exec(query)
	return err
}

// Close closes the database handle.
func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// PredictionRecord is one served prediction.
type PredictionRecord struct {
	Operator   string    `json:"operator"`
	FlightType string    `json:"flight_type"`
	Month      int       `json:"month"`
	Label      int       `json:"label"`
	Cached     bool      `json:"cached"`
	CreatedAt  time.Time `json:"created_at"`
}

// SavePredictions appends served predictions to the log.
func SavePredictions(records []PredictionRecord) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	if len(records) == 0 {
		return nil
	}

	stmt, err := database.Prepare(`
        INSERT INTO predictions (operator, flight_type, month, label, cached, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		cached := 0
		if rec.Cached {
			cached = 1
		}
		if _, err := stmt.Exec(rec.Operator, rec.FlightType, rec.Month, rec.Label, cached, rec.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

// TrainingLog is one training run's metadata. Model parameters themselves are
// never persisted.
type TrainingLog struct {
	ModelName  string    `json:"model_name"`
	Rows       int       `json:"rows"`
	DelayRatio float64   `json:"delay_ratio"`
	Accuracy   float64   `json:"accuracy"`
	Precision  float64   `json:"precision"`
	Recall     float64   `json:"recall"`
	TrainedAt  time.Time `json:"trained_at"`
}

// SaveTrainingLog records a completed training run.
func SaveTrainingLog(entry TrainingLog) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(`
        INSERT INTO training_log (model_name, rows, delay_ratio, accuracy, precision, recall, trained_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `, entry.ModelName, entry.Rows, entry.DelayRatio, entry.Accuracy, entry.Precision, entry.Recall, entry.TrainedAt)
	return err
}

// LoadTrainingLog returns training runs, most recent first.
func LoadTrainingLog() ([]TrainingLog, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`
        SELECT model_name, rows, delay_ratio, accuracy, precision, recall, trained_at
        FROM training_log
        ORDER BY trained_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]TrainingLog, 0)
	for rows.Next() {
		var log TrainingLog
		if err := rows.Scan(&log.ModelName, &log.Rows, &log.DelayRatio, &log.Accuracy, &log.Precision, &log.Recall, &log.TrainedAt); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// CountPredictions returns how many predictions have been logged.
func CountPredictions() (int, error) {
	if database == nil {
		return 0, errors.New("database not initialized")
	}
	var count int
	err := database.QueryRow(`SELECT COUNT(*) FROM predictions`).Scan(&count)
	return count, err
}
