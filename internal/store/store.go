// Package store persists candidate profiles, question sets, answers and the
// turn transcript in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/talentscout/hiring-assistant/internal/candidate"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS candidates (
	session_id       TEXT PRIMARY KEY,
	full_name        TEXT,
	email            TEXT,
	phone            TEXT,
	years_experience INTEGER,
	desired_positions TEXT NOT NULL DEFAULT '[]',
	current_location TEXT,
	tech_stack       TEXT NOT NULL DEFAULT '[]',
	language         TEXT NOT NULL DEFAULT 'en',
	outcome          TEXT,
	created_at       TIMESTAMP NOT NULL,
	updated_at       TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS technical_questions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	level      TEXT NOT NULL,
	questions  TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS technical_answers (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id     TEXT NOT NULL,
	question_index INTEGER NOT NULL,
	question       TEXT NOT NULL,
	answer         TEXT NOT NULL,
	created_at     TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS conversation_logs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_answers_session ON technical_answers (session_id);
CREATE INDEX IF NOT EXISTS idx_logs_session ON conversation_logs (session_id);
`

// Store wraps the SQLite database. SQLite allows one writer at a time, so
// the pool is capped at a single connection.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveProfile upserts the candidate row for the session.
func (s *Store) SaveProfile(ctx context.Context, sessionID string, p *candidate.Profile, lang string) error {
	positions, err := json.Marshal(orEmpty(p.DesiredPositions))
	if err != nil {
		return fmt.Errorf("encode positions: %w", err)
	}
	tech, err := json.Marshal(orEmpty(p.TechStack))
	if err != nil {
		return fmt.Errorf("encode tech stack: %w", err)
	}

	var years sql.NullInt64
	if p.YearsExperience != nil {
		years = sql.NullInt64{Int64: int64(*p.YearsExperience), Valid: true}
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO candidates
			(session_id, full_name, email, phone, years_experience,
			 desired_positions, current_location, tech_stack, language,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			full_name = excluded.full_name,
			email = excluded.email,
			phone = excluded.phone,
			years_experience = excluded.years_experience,
			desired_positions = excluded.desired_positions,
			current_location = excluded.current_location,
			tech_stack = excluded.tech_stack,
			language = excluded.language,
			updated_at = excluded.updated_at`,
		sessionID, p.FullName, p.Email, p.Phone, years,
		string(positions), p.CurrentLocation, string(tech), lang,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// SaveQuestions stores the generated question set for the session.
func (s *Store) SaveQuestions(ctx context.Context, sessionID string, level string, qs []string) error {
	encoded, err := json.Marshal(orEmpty(qs))
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO technical_questions (session_id, level, questions, created_at)
		VALUES (?, ?, ?, ?)`,
		sessionID, level, string(encoded), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save questions: %w", err)
	}
	return nil
}

// SaveAnswer stores one answer keyed by question index.
func (s *Store) SaveAnswer(ctx context.Context, sessionID string, index int, question, answer string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO technical_answers (session_id, question_index, question, answer, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		sessionID, index, question, answer, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save answer: %w", err)
	}
	return nil
}

// LogTurn appends one transcript entry.
func (s *Store) LogTurn(ctx context.Context, sessionID, role, content string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversation_logs (session_id, role, content, created_at)
		VALUES (?, ?, ?, ?)`,
		sessionID, role, content, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("log turn: %w", err)
	}
	return nil
}

// Finalize stamps the session's outcome on the candidate row.
func (s *Store) Finalize(ctx context.Context, sessionID string, outcome string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE candidates SET outcome = ?, updated_at = ? WHERE session_id = ?`,
		outcome, time.Now().UTC(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("finalize session: %w", err)
	}
	return nil
}

// json.Marshal(nil slice) yields "null"; the list columns always hold arrays.
func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
