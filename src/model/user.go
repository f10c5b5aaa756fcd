package model

import (
	"database/sql"
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

// User is an application user. Identity comes from the external provider; we
// keep no credentials of our own, only the profile and issued sessions.
type User struct {
	ID              int64         `json:"id"`
	GoogleID        string        `json:"-"`
	Email           string        `json:"email"`
	FirstName       string        `json:"first_name"`
	LastName        string        `json:"last_name"`
	ProfileImageURL string        `json:"profile_image_url,omitempty"`
	CreditScore     sql.NullInt64 `json:"credit_score,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Session is an issued access token tied to a user.
type Session struct {
	ID           int64
	UserID       int64
	Token        string
	RefreshToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// GetUserByID fetches a user by primary key.
func GetUserByID(db *sql.DB, id int64) (*User, error) {
	var u User
	err := db.QueryRow(`
		SELECT id, google_id, email, first_name, last_name, profile_image_url, credit_score, created_at, updated_at
		FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.GoogleID, &u.Email, &u.FirstName, &u.LastName, &u.ProfileImageURL, &u.CreditScore, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpsertUserByGoogleID creates the user on first login or refreshes the
// profile fields on subsequent logins, returning the stored row either way.
func UpsertUserByGoogleID(db *sql.DB, googleID, email, firstName, lastName, pictureURL string) (*User, error) {
	_, err := db.Exec(`
		INSERT INTO users (google_id, email, first_name, last_name, profile_image_url)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(google_id) DO UPDATE SET
			email = excluded.email,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			profile_image_url = excluded.profile_image_url,
			updated_at = CURRENT_TIMESTAMP`,
		googleID, email, firstName, lastName, pictureURL)
	if err != nil {
		return nil, err
	}

	var u User
	err = db.QueryRow(`
		SELECT id, google_id, email, first_name, last_name, profile_image_url, credit_score, created_at, updated_at
		FROM users WHERE google_id = ?`, googleID).
		Scan(&u.ID, &u.GoogleID, &u.Email, &u.FirstName, &u.LastName, &u.ProfileImageURL, &u.CreditScore, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetUserCreditScore records a user-supplied credit score. A nil score clears
// the value back to the explicit "unavailable" state.
func SetUserCreditScore(db *sql.DB, userID int64, score *int) error {
	var value sql.NullInt64
	if score != nil {
		value = sql.NullInt64{Int64: int64(*score), Valid: true}
	}
	_, err := db.Exec(`UPDATE users SET credit_score = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, value, userID)
	return err
}

// CreateSession stores an issued token pair for a user.
func CreateSession(db *sql.DB, userID int64, token, refreshToken string, expiresAt time.Time) error {
	_, err := db.Exec(`
		INSERT INTO sessions (user_id, token, refresh_token, expires_at)
		VALUES (?, ?, ?, ?)`, userID, token, refreshToken, expiresAt)
	return err
}

// GetSessionByToken returns the session for an access token, if any.
func GetSessionByToken(db *sql.DB, token string) (*Session, error) {
	var s Session
	err := db.QueryRow(`
		SELECT id, user_id, token, refresh_token, expires_at, created_at
		FROM sessions WHERE token = ?`, token).
		Scan(&s.ID, &s.UserID, &s.Token, &s.RefreshToken, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSessionByToken removes a session on logout.
func DeleteSessionByToken(db *sql.DB, token string) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// DeleteExpiredSessions clears out sessions past their expiry.
func DeleteExpiredSessions(db *sql.DB) (int64, error) {
	res, err := db.Exec(`DELETE FROM sessions WHERE expires_at < CURRENT_TIMESTAMP`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
