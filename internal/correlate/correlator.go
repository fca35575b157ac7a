// Package correlate turns bus message blocks into notification lifecycle
// records.
//
// The engine is a pure state-machine step over two small owned tables:
// notify calls wait in pendingCalls until their method return arrives and
// assigns the notification id, and resolved events wait in activeEvents
// until a close signal consumes them. Blocks outside the three known
// shapes are ignored without error.
package correlate

import (
	"strconv"
	"strings"

	"notilog/internal/clock"
	"notilog/internal/record"
	"notilog/internal/transcript"
)

// pendingCall is a Notify call captured from the transcript, keyed by its
// correlation cookie until the matching reply arrives. A later call
// reusing the same cookie overwrites it.
type pendingCall struct {
	timestamp string
	appName   string
	summary   string
	body      string
}

// Correlator matches notify calls to their replies and close signals.
// It is not safe for concurrent use; the logger feeds it strictly
// sequentially from one monitor stream.
type Correlator struct {
	resolver clock.Resolver

	pendingCalls map[uint64]pendingCall
	activeEvents map[uint32]string
}

func New(resolver clock.Resolver) *Correlator {
	return &Correlator{
		resolver:     resolver,
		pendingCalls: make(map[uint64]pendingCall),
		activeEvents: make(map[uint32]string),
	}
}

// Step consumes one message block, mutating the correlation tables, and
// returns the lifecycle record it produced, if any. Missing requirements
// never raise: the block just yields no record.
func (c *Correlator) Step(block transcript.Block) (record.Record, bool) {
	if len(block) == 0 {
		return record.Record{}, false
	}

	switch block.Type() {
	case "method_call":
		if block.Contains("Member=Notify") {
			c.captureNotify(block)
		}
	case "method_return":
		return c.resolveReply(block)
	case "signal":
		if block.Contains("Member=NotificationClosed") {
			return c.closeEvent(block)
		}
	}
	return record.Record{}, false
}

// captureNotify stores a pending call. Argument position 1 is the bus
// replaces-icon field and is skipped; 0, 2, 3 carry app name, summary and
// body.
func (c *Correlator) captureNotify(block transcript.Block) {
	header := block.Header()
	cookieToken, ok := transcript.Token(header, "Cookie=")
	if !ok {
		return
	}
	cookie, err := strconv.ParseUint(cookieToken, 10, 64)
	if err != nil {
		return
	}
	timestamp, ok := transcript.QuotedAfter(header, "Timestamp=")
	if !ok {
		return
	}
	strs := block.Strings()
	if len(strs) < 4 {
		return
	}

	c.pendingCalls[cookie] = pendingCall{
		timestamp: timestamp,
		appName:   strs[0],
		summary:   strs[2],
		body:      strs[3],
	}
}

// resolveReply consumes the pending call addressed by ReplyCookie (at
// most one reply consumes one call) and emits the event's open record.
func (c *Correlator) resolveReply(block transcript.Block) (record.Record, bool) {
	cookieToken, ok := transcript.Token(block.Header(), "ReplyCookie=")
	if !ok {
		return record.Record{}, false
	}
	cookie, err := strconv.ParseUint(cookieToken, 10, 64)
	if err != nil {
		return record.Record{}, false
	}
	call, ok := c.pendingCalls[cookie]
	if !ok {
		return record.Record{}, false
	}
	delete(c.pendingCalls, cookie)

	id, ok := block.FirstUint32()
	if !ok {
		return record.Record{}, false
	}

	uid := EventUID(id, call.timestamp)
	c.activeEvents[id] = uid

	rec := record.Record{
		EventUID:     uid,
		ID:           id,
		BusTimestamp: call.timestamp,
		AppName:      call.appName,
		Summary:      call.summary,
		Body:         call.body,
	}
	if epoch, hhmm, ok := c.resolver.Resolve(call.timestamp); ok {
		rec.Epoch = record.Int64p(epoch)
		rec.HHMM = hhmm
	}
	return rec, true
}

// closeEvent emits the close record for a NotificationClosed signal. The
// event uid is absent when the open side was never observed, e.g. when
// the logger started mid-session.
func (c *Correlator) closeEvent(block transcript.Block) (record.Record, bool) {
	timestamp, ok := transcript.QuotedAfter(block.Header(), "Timestamp=")
	if !ok {
		return record.Record{}, false
	}
	values := block.Uint32s()
	if len(values) < 2 {
		return record.Record{}, false
	}
	id, reasonCode := values[0], values[1]

	rec := record.Record{
		ID:                 id,
		CloseReasonCode:    record.Uint32p(reasonCode),
		CloseReason:        record.CloseReasonLabel(reasonCode),
		ClosedBusTimestamp: timestamp,
	}
	if uid, ok := c.activeEvents[id]; ok {
		rec.EventUID = uid
		delete(c.activeEvents, id)
	}
	if epoch, hhmm, ok := c.resolver.Resolve(timestamp); ok {
		rec.ClosedEpoch = record.Int64p(epoch)
		rec.ClosedHHMM = hhmm
	}
	return rec, true
}

// EventUID builds the stable identifier for one notification lifetime:
// the assigned id plus the bus timestamp with every non-alphanumeric
// character replaced so the result survives a shell round trip.
func EventUID(id uint32, busTimestamp string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, busTimestamp)
	return strconv.FormatUint(uint64(id), 10) + "_" + sanitized
}
