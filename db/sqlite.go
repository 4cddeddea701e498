package db

import (
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Init opens the SQLite database and creates the schema.
func Init(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY,
        username TEXT NOT NULL UNIQUE,
        email TEXT NOT NULL UNIQUE,
        password_hash TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    CREATE TABLE IF NOT EXISTS predictions (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        request_json TEXT NOT NULL,
        response_json TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        FOREIGN KEY(user_id) REFERENCES users(id)
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_user_created
        ON predictions(user_id, created_at DESC);
    CREATE TABLE IF NOT EXISTS kepler_objects (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        object_name TEXT NOT NULL,
        name_folded TEXT NOT NULL,
        disposition TEXT,
        period_days REAL,
        radius_earth REAL,
        eq_temp_k REAL,
        snr REAL,
        magnitude REAL
    );
    CREATE TABLE IF NOT EXISTS tess_objects (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        object_name TEXT NOT NULL,
        name_folded TEXT NOT NULL,
        disposition TEXT,
        period_days REAL,
        radius_earth REAL,
        eq_temp_k REAL,
        snr REAL,
        magnitude REAL
    );
    `
	if _, err := database.Exec(query); err != nil {
		return err
	}
	return nil
}

// Conn exposes the underlying handle for collaborators with their own queries.
func Conn() *sql.DB {
	return database
}

// Close closes the database.
func Close() error {
	if database == nil {
		return nil
	}
	return database.Close()
}
