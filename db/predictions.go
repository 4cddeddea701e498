package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PredictionRecord associates one stored request/response pair with its owner.
// Append-mostly; results are never retroactively corrected.
type PredictionRecord struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Request   json.RawMessage `json:"request_data"`
	Response  json.RawMessage `json:"response_data"`
	CreatedAt time.Time       `json:"created_at"`
}

func SavePrediction(userID string, request, response json.RawMessage) (*PredictionRecord, error) {
	record := &PredictionRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Request:   request,
		Response:  response,
		CreatedAt: time.Now().UTC(),
	}
	_, err := database.Exec(
		`INSERT INTO predictions (id, user_id, request_json, response_json, created_at) VALUES (?, ?, ?, ?, ?)`,
		record.ID, record.UserID, string(record.Request), string(record.Response), record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListPredictionsByUser pages through one owner's history, newest first.
func ListPredictionsByUser(userID string, limit, offset int) ([]PredictionRecord, error) {
	rows, err := database.Query(
		`SELECT id, user_id, request_json, response_json, created_at
         FROM predictions WHERE user_id = ?
         ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]PredictionRecord, 0, limit)
	for rows.Next() {
		record, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func CountPredictionsByUser(userID string) (int, error) {
	var count int
	err := database.QueryRow(`SELECT COUNT(*) FROM predictions WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}

func FindPredictionByID(id string) (*PredictionRecord, error) {
	rows, err := database.Query(
		`SELECT id, user_id, request_json, response_json, created_at FROM predictions WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanPrediction(rows)
}

func scanPrediction(rows *sql.Rows) (*PredictionRecord, error) {
	var record PredictionRecord
	var request, response string
	if err := rows.Scan(&record.ID, &record.UserID, &request, &response, &record.CreatedAt); err != nil {
		return nil, err
	}
	record.Request = json.RawMessage(request)
	record.Response = json.RawMessage(response)
	return &record, nil
}
