package record

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestUnmarshalAcceptsNumericStringID(t *testing.T) {
	var rec Record
	if err := json.Unmarshal([]byte(`{"id":"42","summary":"hi"}`), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.ID != 42 {
		t.Fatalf("expected id 42, got %d", rec.ID)
	}
}

func TestUnmarshalRejectsMissingID(t *testing.T) {
	for _, line := range []string{
		`{"summary":"no id"}`,
		`{"id":null}`,
		`{"id":"seven"}`,
		`{"id":-3}`,
	} {
		var rec Record
		err := json.Unmarshal([]byte(line), &rec)
		if !errors.Is(err, ErrMissingID) {
			t.Fatalf("line %s: expected ErrMissingID, got %v", line, err)
		}
	}
}

func TestUnmarshalDegradesBadOptionalFields(t *testing.T) {
	line := `{"id":7,"epoch":"not-a-number","close_reason_code":{"weird":true},"summary":"  padded  ","body":"   "}`
	var rec Record
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.Epoch != nil {
		t.Fatalf("expected absent epoch, got %d", *rec.Epoch)
	}
	if rec.CloseReasonCode != nil {
		t.Fatalf("expected absent close reason code")
	}
	if rec.Summary != "padded" {
		t.Fatalf("expected trimmed summary, got %q", rec.Summary)
	}
	if rec.Body != "" {
		t.Fatalf("expected blank body to read as absent, got %q", rec.Body)
	}
}

func TestUnmarshalAcceptsStringEpochs(t *testing.T) {
	line := `{"id":7,"epoch":"100","closed_epoch":"200","close_reason_code":"2"}`
	var rec Record
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.Epoch == nil || *rec.Epoch != 100 {
		t.Fatalf("expected epoch 100, got %+v", rec.Epoch)
	}
	if rec.ClosedEpoch == nil || *rec.ClosedEpoch != 200 {
		t.Fatalf("expected closed epoch 200, got %+v", rec.ClosedEpoch)
	}
	if rec.CloseReasonCode == nil || *rec.CloseReasonCode != 2 {
		t.Fatalf("expected close reason code 2, got %+v", rec.CloseReasonCode)
	}
}

func TestMergeFromLastWriteWinsPerField(t *testing.T) {
	open := Record{
		EventUID: "7_x",
		ID:       7,
		Epoch:    Int64p(100),
		HHMM:     "10:00",
		AppName:  "firefox",
		Summary:  "A",
	}
	closed := Record{
		EventUID:        "7_x",
		ID:              7,
		CloseReasonCode: Uint32p(ReasonExpired),
		CloseReason:     "expired",
		ClosedEpoch:     Int64p(200),
		ClosedHHMM:      "10:03",
	}

	merged := Record{ID: 7}
	merged.MergeFrom(open)
	merged.MergeFrom(closed)

	if merged.Summary != "A" || merged.Epoch == nil || *merged.Epoch != 100 {
		t.Fatalf("open fields lost: %+v", merged)
	}
	if merged.CloseReasonCode == nil || *merged.CloseReasonCode != ReasonExpired {
		t.Fatalf("close fields missing: %+v", merged)
	}
	if merged.ClosedEpoch == nil || *merged.ClosedEpoch != 200 {
		t.Fatalf("closed epoch missing: %+v", merged)
	}

	// Absent fields in a later record leave the running value alone.
	merged.MergeFrom(Record{ID: 7, Summary: "B"})
	if merged.Summary != "B" || merged.ClosedEpoch == nil {
		t.Fatalf("field overwrite clobbered unrelated fields: %+v", merged)
	}
}

func TestKeySyntheticWhenNoUID(t *testing.T) {
	rec := Record{ID: 7}
	if got := rec.Key(3); got != "legacy:7:3" {
		t.Fatalf("unexpected synthetic key %q", got)
	}
	rec.EventUID = "7_abc"
	if got := rec.Key(3); got != "7_abc" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestEventEpochPrefersClose(t *testing.T) {
	rec := Record{ID: 1, Epoch: Int64p(100), ClosedEpoch: Int64p(200)}
	if epoch, ok := rec.EventEpoch(); !ok || epoch != 200 {
		t.Fatalf("expected 200, got %d (ok=%v)", epoch, ok)
	}
	rec.ClosedEpoch = nil
	if epoch, _ := rec.EventEpoch(); epoch != 100 {
		t.Fatalf("expected 100, got %d", epoch)
	}
	rec.Epoch = nil
	if _, ok := rec.EventEpoch(); ok {
		t.Fatalf("expected absent epoch")
	}
}

func TestCloseReasonLabels(t *testing.T) {
	cases := map[uint32]string{
		1: "expired", 2: "dismissed-by-user", 3: "closed-by-call",
		4: "undefined", 9: "unknown", 0: "unknown",
	}
	for code, want := range cases {
		if got := CloseReasonLabel(code); got != want {
			t.Fatalf("code %d: expected %q, got %q", code, want, got)
		}
	}
}

func TestIsExpiredAcceptsLabelOnlyRecords(t *testing.T) {
	if !(Record{ID: 1, CloseReason: "expired"}).IsExpired() {
		t.Fatalf("label-only record should read as expired")
	}
	if (Record{ID: 1, CloseReasonCode: Uint32p(ReasonDismissedByUser)}).IsExpired() {
		t.Fatalf("dismissed record should not read as expired")
	}
}
