package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/singhsimarjot13/Aptuquest-2025/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS participants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		google_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		profile_pic TEXT NOT NULL DEFAULT '',
		urn TEXT,
		crn TEXT,
		branch TEXT NOT NULL DEFAULT '',
		year INTEGER NOT NULL DEFAULT 0,
		approval_status TEXT NOT NULL DEFAULT 'pending',
		quiz_submitted INTEGER NOT NULL DEFAULT 0,
		score INTEGER NOT NULL DEFAULT 0,
		answers TEXT,
		questions TEXT,
		category_scores TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT NOT NULL,
		text TEXT NOT NULL,
		options TEXT NOT NULL,
		answer TEXT NOT NULL,
		multiple INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS web_sessions (
		id TEXT PRIMARY KEY,
		google_id TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		picture TEXT NOT NULL DEFAULT '',
		flash_message TEXT NOT NULL DEFAULT '',
		flash_kind TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS email_outbox (
		id TEXT PRIMARY KEY,
		participant_id INTEGER NOT NULL,
		email TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		attempt_count INTEGER NOT NULL DEFAULT 0,
		next_attempt_at DATETIME NOT NULL,
		last_error TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (participant_id) REFERENCES participants(id)
	);

	CREATE TABLE IF NOT EXISTS imported_files (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateParticipant inserts a new participant with a pending approval status.
func (s *Store) CreateParticipant(p model.Participant) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO participants (google_id, name, email, profile_pic, urn, crn, branch, year, approval_status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.GoogleID, p.Name, p.Email, p.ProfilePic,
		nullIfEmpty(p.URN), nullIfEmpty(p.CRN),
		p.Branch, p.Year, model.ApprovalPending, now, now,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetParticipantByEmail returns the participant for the given email, or nil.
func (s *Store) GetParticipantByEmail(email string) (*model.Participant, error) {
	return s.getParticipant(`WHERE email = ?`, email)
}

// GetParticipant returns a participant by ID, or nil if not found.
func (s *Store) GetParticipant(id int64) (*model.Participant, error) {
	return s.getParticipant(`WHERE id = ?`, id)
}

const participantColumns = `id, google_id, name, email, profile_pic, urn, crn, branch, year,
	approval_status, quiz_submitted, score, answers, questions, category_scores, created_at, updated_at`

func (s *Store) getParticipant(where string, arg any) (*model.Participant, error) {
	row := s.db.QueryRow(`SELECT `+participantColumns+` FROM participants `+where, arg)
	p, err := scanParticipant(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func scanParticipant(scan func(...any) error) (*model.Participant, error) {
	var p model.Participant
	var urn, crn, answers, questions, categoryScores sql.NullString
	err := scan(
		&p.ID, &p.GoogleID, &p.Name, &p.Email, &p.ProfilePic, &urn, &crn, &p.Branch, &p.Year,
		&p.ApprovalStatus, &p.QuizSubmitted, &p.Score, &answers, &questions, &categoryScores,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.URN = urn.String
	p.CRN = crn.String
	if answers.Valid && answers.String != "" {
		if err := json.Unmarshal([]byte(answers.String), &p.Answers); err != nil {
			return nil, fmt.Errorf("decode answers for participant %d: %w", p.ID, err)
		}
	}
	if questions.Valid && questions.String != "" {
		if err := json.Unmarshal([]byte(questions.String), &p.Questions); err != nil {
			return nil, fmt.Errorf("decode questions for participant %d: %w", p.ID, err)
		}
	}
	if categoryScores.Valid && categoryScores.String != "" {
		if err := json.Unmarshal([]byte(categoryScores.String), &p.CategoryScores); err != nil {
			return nil, fmt.Errorf("decode category scores for participant %d: %w", p.ID, err)
		}
	}
	return &p, nil
}

// ListPendingParticipants returns all participants awaiting approval, oldest first.
func (s *Store) ListPendingParticipants() ([]model.Participant, error) {
	return s.listParticipants(`WHERE approval_status = ? ORDER BY id`, string(model.ApprovalPending))
}

// ListSubmittedByScore returns all submitted participants sorted by score, highest first.
func (s *Store) ListSubmittedByScore() ([]model.Participant, error) {
	return s.listParticipants(`WHERE quiz_submitted = 1 ORDER BY score DESC, id`)
}

func (s *Store) listParticipants(where string, args ...any) ([]model.Participant, error) {
	rows, err := s.db.Query(`SELECT `+participantColumns+` FROM participants `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var participants []model.Participant
	for rows.Next() {
		p, err := scanParticipant(rows.Scan)
		if err != nil {
			return nil, err
		}
		participants = append(participants, *p)
	}
	return participants, rows.Err()
}

// SetApprovalStatus updates the approval status of a participant.
func (s *Store) SetApprovalStatus(id int64, status model.ApprovalStatus) error {
	_, err := s.db.Exec(
		`UPDATE participants SET approval_status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	return err
}

// SaveServedQuestions persists the exact question set served to a participant,
// including the per-participant option order. It refuses to overwrite the set
// once the quiz has been submitted.
func (s *Store) SaveServedQuestions(id int64, questions []model.Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	_, err = s.db.Exec(
		`UPDATE participants SET questions = ?, updated_at = ? WHERE id = ? AND quiz_submitted = 0`,
		string(data), time.Now().UTC(), id,
	)
	return err
}

// MarkQuizSubmitted commits a scored submission. The update is conditional on
// quiz_submitted still being unset so two concurrent submissions cannot both
// commit; it reports whether this call won the commit.
func (s *Store) MarkQuizSubmitted(id int64, result model.QuizResult) (bool, error) {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return false, fmt.Errorf("encode answers: %w", err)
	}
	categoryScores, err := json.Marshal(result.CategoryScores)
	if err != nil {
		return false, fmt.Errorf("encode category scores: %w", err)
	}
	res, err := s.db.Exec(
		`UPDATE participants
		 SET quiz_submitted = 1, score = ?, answers = ?, category_scores = ?, updated_at = ?
		 WHERE id = ? AND quiz_submitted = 0`,
		result.Score, string(answers), string(categoryScores), time.Now().UTC(), id,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ParticipantCount returns the total number of participants.
func (s *Store) ParticipantCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM participants`).Scan(&count)
	return count, err
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
