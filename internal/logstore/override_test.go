package logstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notilog/internal/record"
	"notilog/pkg/logx"
)

func seedExpiredEvent(t *testing.T, s *Store, uid string, id uint32) {
	t.Helper()
	require.NoError(t, s.Append(record.Record{
		EventUID: uid, ID: id,
		Epoch: record.Int64p(100), HHMM: "10:00",
		Summary: "build finished",
	}))
	require.NoError(t, s.Append(record.Record{
		EventUID: uid, ID: id,
		CloseReasonCode: record.Uint32p(record.ReasonExpired),
		CloseReason:     "expired",
		ClosedEpoch:     record.Int64p(200), ClosedHHMM: "10:03",
	}))
}

func TestMarkUserDismissedByUID(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "log.jsonl"), 0, logx.Nop())
	seedExpiredEvent(t, s, "7_ts", 7)

	uid, err := s.MarkUserDismissed(Target{EventUID: "7_ts"}, 300, "10:05")
	require.NoError(t, err)
	assert.Equal(t, "7_ts", uid)

	records, err := s.ReadAll()
	require.NoError(t, err)
	merged := record.Aggregate(records)
	require.Len(t, merged, 1)
	require.NotNil(t, merged[0].CloseReasonCode)
	assert.Equal(t, uint32(record.ReasonDismissedByUser), *merged[0].CloseReasonCode)
	assert.Equal(t, "dismissed-by-user", merged[0].CloseReason)
	assert.Equal(t, "10:05", merged[0].ClosedHHMM)
	// Open-side fields survive the override append.
	assert.Equal(t, "build finished", merged[0].Summary)
}

func TestMarkUserDismissedSecondAttemptRejected(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "log.jsonl"), 0, logx.Nop())
	seedExpiredEvent(t, s, "7_ts", 7)

	_, err := s.MarkUserDismissed(Target{EventUID: "7_ts"}, 300, "10:05")
	require.NoError(t, err)

	_, err = s.MarkUserDismissed(Target{EventUID: "7_ts"}, 400, "10:07")
	require.ErrorIs(t, err, ErrNotExpired)
	assert.Contains(t, err.Error(), "dismissed-by-user")
}

func TestMarkUserDismissedUnknownTarget(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "log.jsonl"), 0, logx.Nop())
	seedExpiredEvent(t, s, "7_ts", 7)

	_, err := s.MarkUserDismissed(Target{EventUID: "no_such"}, 300, "10:05")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkUserDismissedStillOpenRejected(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "log.jsonl"), 0, logx.Nop())
	require.NoError(t, s.Append(record.Record{
		EventUID: "8_ts", ID: 8, Epoch: record.Int64p(100),
	}))

	_, err := s.MarkUserDismissed(Target{EventUID: "8_ts"}, 300, "10:05")
	require.ErrorIs(t, err, ErrNotExpired)
	assert.Contains(t, err.Error(), "unknown")
}

func TestMarkUserDismissedByIDOnlyMatchesExpired(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "log.jsonl"), 0, logx.Nop())
	// Two events share id 9: one dismissed by the user already, one
	// auto-expired. By-id targeting must resolve to the expired one.
	require.NoError(t, s.Append(record.Record{
		EventUID: "9_a", ID: 9, Epoch: record.Int64p(100),
		CloseReasonCode: record.Uint32p(record.ReasonDismissedByUser),
		CloseReason:     "dismissed-by-user",
	}))
	seedExpiredEvent(t, s, "9_b", 9)

	uid, err := s.MarkUserDismissed(Target{ID: 9, ByID: true}, 300, "10:05")
	require.NoError(t, err)
	assert.Equal(t, "9_b", uid)
}

func TestMarkUserDismissedByIDNoExpiredMatch(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "log.jsonl"), 0, logx.Nop())
	require.NoError(t, s.Append(record.Record{
		EventUID: "9_a", ID: 9, Epoch: record.Int64p(100),
		CloseReasonCode: record.Uint32p(record.ReasonDismissedByUser),
		CloseReason:     "dismissed-by-user",
	}))

	_, err := s.MarkUserDismissed(Target{ID: 9, ByID: true}, 300, "10:05")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkUserDismissedEmptyHHMMFallsBack(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "log.jsonl"), 0, logx.Nop())
	seedExpiredEvent(t, s, "7_ts", 7)

	_, err := s.MarkUserDismissed(Target{EventUID: "7_ts"}, 300, "")
	require.NoError(t, err)

	records, err := s.ReadAll()
	require.NoError(t, err)
	merged := record.Aggregate(records)
	require.Len(t, merged, 1)
	assert.Equal(t, "--:--", merged[0].ClosedHHMM)
}
