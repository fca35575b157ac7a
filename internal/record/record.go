package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMissingID marks a log line whose id field is absent or not a number.
// Readers treat these lines as skippable, never fatal.
var ErrMissingID = errors.New("record has no usable id")

// Close reason codes from the desktop notification spec.
const (
	ReasonExpired         uint32 = 1
	ReasonDismissedByUser uint32 = 2
	ReasonClosedByCall    uint32 = 3
	ReasonUndefined       uint32 = 4
)

// CloseReasonLabel maps a close reason code to its stable label.
func CloseReasonLabel(code uint32) string {
	switch code {
	case ReasonExpired:
		return "expired"
	case ReasonDismissedByUser:
		return "dismissed-by-user"
	case ReasonClosedByCall:
		return "closed-by-call"
	case ReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// Record is one immutable line of the notification log: either the "open"
// side of an event (emitted when a Notify call resolves) or the "close"
// side (emitted on a NotificationClosed signal or a manual override).
// Multiple records may describe the same logical event; Aggregate folds
// them back together.
//
// The bus timestamp fields are write-only debug context: the logger emits
// them, but they take no part in merging and never reach merged output.
type Record struct {
	EventUID           string  `json:"event_uid,omitempty"`
	ID                 uint32  `json:"id"`
	Epoch              *int64  `json:"epoch,omitempty"`
	HHMM               string  `json:"hhmm,omitempty"`
	BusTimestamp       string  `json:"bus_timestamp,omitempty"`
	AppName            string  `json:"app_name,omitempty"`
	Summary            string  `json:"summary,omitempty"`
	Body               string  `json:"body,omitempty"`
	CloseReasonCode    *uint32 `json:"close_reason_code,omitempty"`
	CloseReason        string  `json:"close_reason,omitempty"`
	ClosedEpoch        *int64  `json:"closed_epoch,omitempty"`
	ClosedHHMM         string  `json:"closed_hhmm,omitempty"`
	ClosedBusTimestamp string  `json:"closed_bus_timestamp,omitempty"`
}

// Int64p returns a pointer to v, for filling optional epoch fields.
func Int64p(v int64) *int64 { return &v }

// Uint32p returns a pointer to v, for filling optional code fields.
func Uint32p(v uint32) *uint32 { return &v }

// UnmarshalJSON decodes a log line defensively. The id is required and is
// accepted as either a number or a numeric string (older log files used
// strings). Every other field degrades to absent rather than failing the
// line: blank strings, nulls and malformed scalars all read back as unset.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		EventUID           json.RawMessage `json:"event_uid"`
		ID                 json.RawMessage `json:"id"`
		Epoch              json.RawMessage `json:"epoch"`
		HHMM               json.RawMessage `json:"hhmm"`
		BusTimestamp       json.RawMessage `json:"bus_timestamp"`
		AppName            json.RawMessage `json:"app_name"`
		Summary            json.RawMessage `json:"summary"`
		Body               json.RawMessage `json:"body"`
		CloseReasonCode    json.RawMessage `json:"close_reason_code"`
		CloseReason        json.RawMessage `json:"close_reason"`
		ClosedEpoch        json.RawMessage `json:"closed_epoch"`
		ClosedHHMM         json.RawMessage `json:"closed_hhmm"`
		ClosedBusTimestamp json.RawMessage `json:"closed_bus_timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, ok := asUint32(raw.ID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingID, compact(raw.ID))
	}

	*r = Record{
		EventUID:           asString(raw.EventUID),
		ID:                 id,
		HHMM:               asString(raw.HHMM),
		BusTimestamp:       asString(raw.BusTimestamp),
		AppName:            asString(raw.AppName),
		Summary:            asString(raw.Summary),
		Body:               asString(raw.Body),
		CloseReason:        asString(raw.CloseReason),
		ClosedHHMM:         asString(raw.ClosedHHMM),
		ClosedBusTimestamp: asString(raw.ClosedBusTimestamp),
	}
	if v, ok := asInt64(raw.Epoch); ok {
		r.Epoch = Int64p(v)
	}
	if v, ok := asInt64(raw.ClosedEpoch); ok {
		r.ClosedEpoch = Int64p(v)
	}
	if v, ok := asUint32(raw.CloseReasonCode); ok {
		r.CloseReasonCode = Uint32p(v)
	}
	return nil
}

// MergeFrom folds other into r, field by field: a present field in other
// overwrites, an absent field leaves r untouched. The id and the raw bus
// timestamps are deliberately not merged.
func (r *Record) MergeFrom(other Record) {
	if other.EventUID != "" {
		r.EventUID = other.EventUID
	}
	if other.Epoch != nil {
		r.Epoch = other.Epoch
	}
	if other.HHMM != "" {
		r.HHMM = other.HHMM
	}
	if other.AppName != "" {
		r.AppName = other.AppName
	}
	if other.Summary != "" {
		r.Summary = other.Summary
	}
	if other.Body != "" {
		r.Body = other.Body
	}
	if other.CloseReasonCode != nil {
		r.CloseReasonCode = other.CloseReasonCode
	}
	if other.CloseReason != "" {
		r.CloseReason = other.CloseReason
	}
	if other.ClosedEpoch != nil {
		r.ClosedEpoch = other.ClosedEpoch
	}
	if other.ClosedHHMM != "" {
		r.ClosedHHMM = other.ClosedHHMM
	}
}

// Key returns the event key grouping this record with the rest of its
// event: the event uid when present, otherwise a synthetic key derived
// from the id and the record's position in the file. Synthetic keys never
// collide, so uid-less legacy records never merge with anything.
func (r Record) Key(index int) string {
	if r.EventUID != "" {
		return r.EventUID
	}
	return "legacy:" + strconv.FormatUint(uint64(r.ID), 10) + ":" + strconv.Itoa(index)
}

// EventEpoch returns the best available epoch for ordering and age
// decisions: the close time when known, else the open time.
func (r Record) EventEpoch() (int64, bool) {
	if r.ClosedEpoch != nil {
		return *r.ClosedEpoch, true
	}
	if r.Epoch != nil {
		return *r.Epoch, true
	}
	return 0, false
}

// OrderEpoch is EventEpoch with absent mapped to zero, the value used for
// ranking.
func (r Record) OrderEpoch() int64 {
	epoch, _ := r.EventEpoch()
	return epoch
}

// IsExpired reports whether the record currently reads as auto-expired.
// Older log lines may carry only the label, so both forms count.
func (r Record) IsExpired() bool {
	if r.CloseReasonCode != nil && *r.CloseReasonCode == ReasonExpired {
		return true
	}
	return r.CloseReason == "expired"
}

func asString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func asInt64(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func asUint32(raw json.RawMessage) (uint32, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n uint32
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

func compact(raw json.RawMessage) string {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return "<absent>"
	}
	if len(b) > 32 {
		b = b[:32]
	}
	return string(b)
}
