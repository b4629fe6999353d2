package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// CandidateRecord is one exported candidate with everything recorded for
// the session.
type CandidateRecord struct {
	SessionID        string        `json:"session_id"`
	FullName         string        `json:"full_name,omitempty"`
	Email            string        `json:"email,omitempty"`
	Phone            string        `json:"phone,omitempty"`
	YearsExperience  *int          `json:"years_experience,omitempty"`
	DesiredPositions []string      `json:"desired_positions"`
	CurrentLocation  string        `json:"current_location,omitempty"`
	TechStack        []string      `json:"tech_stack"`
	Language         string        `json:"language"`
	Outcome          string        `json:"outcome,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	Questions        []QuestionSet `json:"questions,omitempty"`
	Answers          []Answer      `json:"answers,omitempty"`
	Transcript       []Turn        `json:"transcript,omitempty"`
}

type QuestionSet struct {
	Level     string   `json:"level"`
	Questions []string `json:"questions"`
}

type Answer struct {
	QuestionIndex int    `json:"question_index"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
}

type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Export writes every recorded candidate as indented JSON.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	records, err := s.loadCandidates(ctx)
	if err != nil {
		return err
	}

	for i := range records {
		rec := &records[i]
		if rec.Questions, err = s.loadQuestions(ctx, rec.SessionID); err != nil {
			return err
		}
		if rec.Answers, err = s.loadAnswers(ctx, rec.SessionID); err != nil {
			return err
		}
		if rec.Transcript, err = s.loadTranscript(ctx, rec.SessionID); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

func (s *Store) loadCandidates(ctx context.Context) ([]CandidateRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, full_name, email, phone, years_experience,
		       desired_positions, current_location, tech_stack, language,
		       outcome, created_at, updated_at
		FROM candidates ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	records := []CandidateRecord{}
	for rows.Next() {
		var (
			rec       CandidateRecord
			years     sql.NullInt64
			outcome   sql.NullString
			positions string
			tech      string
		)
		err := rows.Scan(&rec.SessionID, &rec.FullName, &rec.Email, &rec.Phone,
			&years, &positions, &rec.CurrentLocation, &tech, &rec.Language,
			&outcome, &rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}

		if years.Valid {
			v := int(years.Int64)
			rec.YearsExperience = &v
		}
		rec.Outcome = outcome.String
		if err := json.Unmarshal([]byte(positions), &rec.DesiredPositions); err != nil {
			return nil, fmt.Errorf("decode positions for %s: %w", rec.SessionID, err)
		}
		if err := json.Unmarshal([]byte(tech), &rec.TechStack); err != nil {
			return nil, fmt.Errorf("decode tech stack for %s: %w", rec.SessionID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) loadQuestions(ctx context.Context, sessionID string) ([]QuestionSet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT level, questions FROM technical_questions
		WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var sets []QuestionSet
	for rows.Next() {
		var (
			set     QuestionSet
			encoded string
		)
		if err := rows.Scan(&set.Level, &encoded); err != nil {
			return nil, fmt.Errorf("scan questions: %w", err)
		}
		if err := json.Unmarshal([]byte(encoded), &set.Questions); err != nil {
			return nil, fmt.Errorf("decode questions for %s: %w", sessionID, err)
		}
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

func (s *Store) loadAnswers(ctx context.Context, sessionID string) ([]Answer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT question_index, question, answer FROM technical_answers
		WHERE session_id = ? ORDER BY question_index`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var answers []Answer
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.QuestionIndex, &a.Question, &a.Answer); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (s *Store) loadTranscript(ctx context.Context, sessionID string) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, created_at FROM conversation_logs
		WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
