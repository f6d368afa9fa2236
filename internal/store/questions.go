package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/singhsimarjot13/Aptuquest-2025/internal/model"
)

// InsertQuestion stores a bank question.
func (s *Store) InsertQuestion(q model.Question) (int64, error) {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return 0, fmt.Errorf("encode options: %w", err)
	}
	answer, err := json.Marshal(q.Answer)
	if err != nil {
		return 0, fmt.Errorf("encode answer: %w", err)
	}
	res, err := s.db.Exec(
		`INSERT INTO questions (category, text, options, answer, multiple) VALUES (?, ?, ?, ?, ?)`,
		q.Category, q.Text, string(options), string(answer), q.Multiple,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListQuestionsByCategory returns the whole bank grouped by category.
func (s *Store) ListQuestionsByCategory() (map[string][]model.Question, error) {
	rows, err := s.db.Query(`SELECT id, category, text, options, answer, multiple FROM questions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bank := make(map[string][]model.Question)
	for rows.Next() {
		var q model.Question
		var options, answer string
		if err := rows.Scan(&q.ID, &q.Category, &q.Text, &options, &answer, &q.Multiple); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("decode options for question %d: %w", q.ID, err)
		}
		if err := json.Unmarshal([]byte(answer), &q.Answer); err != nil {
			return nil, fmt.Errorf("decode answer for question %d: %w", q.ID, err)
		}
		bank[q.Category] = append(bank[q.Category], q)
	}
	return bank, rows.Err()
}

// QuestionCount returns the number of questions in the bank.
func (s *Store) QuestionCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM questions`).Scan(&count)
	return count, err
}

// GetImportedFileHash returns the recorded hash for a bank file.
// Returns empty string and nil error if the file was never imported.
func (s *Store) GetImportedFileHash(path string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT hash FROM imported_files WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return hash, err
}

// SetImportedFileHash records the hash of an imported bank file.
func (s *Store) SetImportedFileHash(path, hash string) error {
	_, err := s.db.Exec(
		`INSERT INTO imported_files (path, hash) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET hash = ?`,
		path, hash, hash,
	)
	return err
}
