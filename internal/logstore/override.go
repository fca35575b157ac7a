package logstore

import (
	"errors"
	"fmt"

	"notilog/internal/record"
)

// ErrNotFound means the override target does not exist in the current
// merged state of the log.
var ErrNotFound = errors.New("target notification not found in log")

// ErrNotExpired means the target exists but its current close reason is
// not auto-expired; only auto-expired events may be overridden.
var ErrNotExpired = errors.New("notification is not auto-expired")

// Target selects the event to override: an explicit event uid, or a
// notification id resolved against the merged states that currently read
// as auto-expired.
type Target struct {
	EventUID string
	ID       uint32
	ByID     bool
}

// MarkUserDismissed appends a close record that flips the target event's
// close reason from expired to dismissed-by-user. It fails when the
// target is missing or its current close reason code is not 1. The
// appended record wins by the last-write-wins merge rule, so a second
// override of the same event reports ErrNotFound or ErrNotExpired.
func (s *Store) MarkUserDismissed(target Target, nowEpoch int64, nowHHMM string) (string, error) {
	records, err := s.ReadAll()
	if err != nil {
		return "", err
	}
	merged := record.Aggregate(records)

	var current *record.Record
	for i := range merged {
		if target.ByID {
			if merged[i].ID == target.ID && merged[i].CloseReasonCode != nil &&
				*merged[i].CloseReasonCode == record.ReasonExpired {
				current = &merged[i]
				break
			}
		} else if merged[i].EventUID == target.EventUID {
			current = &merged[i]
			break
		}
	}
	if current == nil {
		return "", ErrNotFound
	}

	if current.CloseReasonCode == nil || *current.CloseReasonCode != record.ReasonExpired {
		reason := current.CloseReason
		if reason == "" {
			reason = "unknown"
		}
		return "", fmt.Errorf("%w (current reason: %s)", ErrNotExpired, reason)
	}

	if nowHHMM == "" {
		nowHHMM = "--:--"
	}
	override := record.Record{
		EventUID:        current.EventUID,
		ID:              current.ID,
		CloseReasonCode: record.Uint32p(record.ReasonDismissedByUser),
		CloseReason:     record.CloseReasonLabel(record.ReasonDismissedByUser),
		ClosedEpoch:     record.Int64p(nowEpoch),
		ClosedHHMM:      nowHHMM,
	}
	if err := s.Append(override); err != nil {
		return "", err
	}
	return current.EventUID, nil
}
