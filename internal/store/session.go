package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/singhsimarjot13/Aptuquest-2025/internal/model"
)

// DefaultSessionTTL is the inactivity window before a session expires.
const DefaultSessionTTL = 5 * time.Minute

// CreateWebSession creates a session row for the given identity and returns
// the cookie token.
func (s *Store) CreateWebSession(id model.Identity, ttl time.Duration) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	_, err = s.db.Exec(
		`INSERT INTO web_sessions (id, google_id, email, name, picture, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		token, id.GoogleID, id.Email, id.Name, id.Picture, now, now.Add(ttl),
	)
	if err != nil {
		return "", err
	}
	return token, nil
}

// GetWebSession returns the session for the given token, or nil if missing or
// expired. A hit slides the expiry window forward: the timeout measures
// inactivity, not absolute age.
func (s *Store) GetWebSession(token string, ttl time.Duration) (*model.WebSession, error) {
	var sess model.WebSession
	sess.Token = token
	err := s.db.QueryRow(
		`SELECT google_id, email, name, picture, created_at, expires_at FROM web_sessions WHERE id = ?`, token,
	).Scan(&sess.Identity.GoogleID, &sess.Identity.Email, &sess.Identity.Name, &sess.Identity.Picture,
		&sess.CreatedAt, &sess.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if now.After(sess.ExpiresAt) {
		_ = s.DeleteWebSession(token)
		return nil, nil
	}
	sess.ExpiresAt = now.Add(ttl)
	_, err = s.db.Exec(`UPDATE web_sessions SET expires_at = ? WHERE id = ?`, sess.ExpiresAt, token)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// DeleteWebSession removes a session token.
func (s *Store) DeleteWebSession(token string) error {
	_, err := s.db.Exec(`DELETE FROM web_sessions WHERE id = ?`, token)
	return err
}

// CleanupExpiredSessions removes all expired sessions.
func (s *Store) CleanupExpiredSessions() error {
	_, err := s.db.Exec(`DELETE FROM web_sessions WHERE expires_at < ?`, time.Now().UTC())
	return err
}

// SetFlash stores a one-shot flash message on the session.
func (s *Store) SetFlash(token, message, kind string) error {
	_, err := s.db.Exec(
		`UPDATE web_sessions SET flash_message = ?, flash_kind = ? WHERE id = ?`,
		message, kind, token,
	)
	return err
}

// PopFlash returns and clears the session's flash message, or nil when unset.
func (s *Store) PopFlash(token string) (*model.Flash, error) {
	var f model.Flash
	err := s.db.QueryRow(
		`SELECT flash_message, flash_kind FROM web_sessions WHERE id = ?`, token,
	).Scan(&f.Message, &f.Kind)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if f.Message == "" {
		return nil, nil
	}
	_, err = s.db.Exec(`UPDATE web_sessions SET flash_message = '', flash_kind = '' WHERE id = ?`, token)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
