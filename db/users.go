package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func CreateUser(username, email, passwordHash string) (*User, error) {
	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := database.Exec(
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func FindUserByEmail(email string) (*User, error) {
	return scanUser(database.QueryRow(
		`SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?`, email))
}

func FindUserByUsername(username string) (*User, error) {
	return scanUser(database.QueryRow(
		`SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?`, username))
}

func FindUserByID(id string) (*User, error) {
	return scanUser(database.QueryRow(
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, id))
}

func scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
