package store

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/talentscout/hiring-assistant/internal/candidate"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "talentscout.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func intPtr(v int) *int { return &v }

func TestSaveProfileUpserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	profile := &candidate.Profile{FullName: "Sarah Johnson"}
	require.NoError(t, s.SaveProfile(ctx, "session-1", profile, "en"))

	profile.Email = "sarah@techcorp.com"
	profile.YearsExperience = intPtr(5)
	profile.TechStack = []string{"Python", "Docker"}
	require.NoError(t, s.SaveProfile(ctx, "session-1", profile, "en"))

	var buf bytes.Buffer
	require.NoError(t, s.Export(ctx, &buf))

	var records []CandidateRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 1)

	rec := records[0]
	require.Equal(t, "session-1", rec.SessionID)
	require.Equal(t, "Sarah Johnson", rec.FullName)
	require.Equal(t, "sarah@techcorp.com", rec.Email)
	require.NotNil(t, rec.YearsExperience)
	require.Equal(t, 5, *rec.YearsExperience)
	require.Equal(t, []string{"Python", "Docker"}, rec.TechStack)
	require.Empty(t, rec.DesiredPositions)
}

func TestFullSessionRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	profile := &candidate.Profile{
		FullName:         "Sarah Johnson",
		Email:            "sarah@techcorp.com",
		Phone:            "+1-555-123-4567",
		YearsExperience:  intPtr(5),
		DesiredPositions: []string{"backend developer"},
		CurrentLocation:  "New York",
		TechStack:        []string{"Python", "Docker"},
	}
	require.NoError(t, s.SaveProfile(ctx, "session-1", profile, "en"))
	require.NoError(t, s.SaveQuestions(ctx, "session-1", "mid", []string{"q1?", "q2?", "q3?"}))
	require.NoError(t, s.SaveAnswer(ctx, "session-1", 0, "q1?", "a1"))
	require.NoError(t, s.SaveAnswer(ctx, "session-1", 1, "q2?", "a2"))
	require.NoError(t, s.LogTurn(ctx, "session-1", "assistant", "Hello!"))
	require.NoError(t, s.LogTurn(ctx, "session-1", "user", "Sarah Johnson"))
	require.NoError(t, s.Finalize(ctx, "session-1", "completed"))

	var buf bytes.Buffer
	require.NoError(t, s.Export(ctx, &buf))

	var records []CandidateRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 1)

	rec := records[0]
	require.Equal(t, "completed", rec.Outcome)
	require.Len(t, rec.Questions, 1)
	require.Equal(t, "mid", rec.Questions[0].Level)
	require.Len(t, rec.Questions[0].Questions, 3)
	require.Len(t, rec.Answers, 2)
	require.Equal(t, 0, rec.Answers[0].QuestionIndex)
	require.Equal(t, "a1", rec.Answers[0].Answer)
	require.Len(t, rec.Transcript, 2)
	require.Equal(t, "assistant", rec.Transcript[0].Role)
	require.Equal(t, "user", rec.Transcript[1].Role)
}

func TestExportEmptyStore(t *testing.T) {
	s := openTestStore(t)

	var buf bytes.Buffer
	require.NoError(t, s.Export(context.Background(), &buf))
	require.JSONEq(t, "[]", buf.String())
}

func TestFinalizeUnknownSessionIsNoop(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Finalize(context.Background(), "missing", "abandoned"))
}
