// Package transcript splits the line-oriented output of `busctl monitor`
// into message blocks and extracts header tokens and typed argument
// values from them.
//
// The transcript format is externally defined and not self-describing,
// so every extractor here is tolerant of absence: a missing key or a
// malformed value yields a zero result, never an error. Blocks that do
// not match a known message shape simply produce no lifecycle fact
// downstream.
package transcript

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// blockMarker opens every message a busctl monitor stream prints.
const blockMarker = "‣" // ‣

// Block is the raw lines of one bus message, marker line first.
type Block []string

// Header returns the marker line carrying Type=, Cookie=, Timestamp= and
// friends, or "" for an empty block.
func (b Block) Header() string {
	if len(b) == 0 {
		return ""
	}
	return b[0]
}

// Type returns the message kind from the header (method_call,
// method_return, signal).
func (b Block) Type() string {
	v, _ := Token(b.Header(), "Type=")
	return v
}

// Contains reports whether any line of the block contains needle.
func (b Block) Contains(needle string) bool {
	for _, line := range b {
		if strings.Contains(line, needle) {
			return true
		}
	}
	return false
}

// Strings returns every quoted string on a STRING-typed argument line, in
// block order.
func (b Block) Strings() []string {
	var out []string
	for _, line := range b {
		trimmed := strings.TrimLeft(line, " \t")
		if !strings.HasPrefix(trimmed, "STRING ") {
			continue
		}
		if s, ok := firstQuoted(trimmed); ok {
			out = append(out, s)
		}
	}
	return out
}

// Uint32s returns every value on a UINT32-typed argument line, in block
// order. Parse failures are dropped silently.
func (b Block) Uint32s() []uint32 {
	var out []uint32
	for _, line := range b {
		trimmed := strings.TrimLeft(line, " \t")
		raw, ok := strings.CutPrefix(trimmed, "UINT32 ")
		if !ok {
			continue
		}
		raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), ";"))
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			continue
		}
		out = append(out, uint32(v))
	}
	return out
}

// FirstUint32 returns the first UINT32 argument value, if any.
func (b Block) FirstUint32() (uint32, bool) {
	values := b.Uint32s()
	if len(values) == 0 {
		return 0, false
	}
	return values[0], true
}

// Token extracts the first whitespace-delimited token following key= on
// the line, with a trailing semicolon and surrounding quotes stripped.
func Token(line, key string) (string, bool) {
	_, tail, ok := strings.Cut(line, key)
	if !ok {
		return "", false
	}
	fields := strings.Fields(tail)
	if len(fields) == 0 {
		return "", false
	}
	token := strings.Trim(strings.TrimSuffix(fields[0], ";"), `"`)
	return token, true
}

// QuotedAfter extracts the first double-quoted substring following key=
// on the line.
func QuotedAfter(line, key string) (string, bool) {
	_, tail, ok := strings.Cut(line, key)
	if !ok {
		return "", false
	}
	return firstQuoted(tail)
}

func firstQuoted(s string) (string, bool) {
	_, tail, ok := strings.Cut(s, `"`)
	if !ok {
		return "", false
	}
	quoted, _, ok := strings.Cut(tail, `"`)
	if !ok {
		return "", false
	}
	return quoted, true
}

// Scanner splits an unbounded monitor stream into Blocks. A new block
// begins at each marker line containing Type=; everything up to the next
// marker belongs to the current block. Leading blank lines before the
// first marker are dropped, and the final accumulated block is flushed at
// stream end.
type Scanner struct {
	sc      *bufio.Scanner
	current Block
	block   Block
}

// maxLineBytes bounds one transcript line; bodies inside Notify calls can
// be long but never near this.
const maxLineBytes = 1 << 20

func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Scanner{sc: sc}
}

// Scan advances to the next complete block. It blocks until the upstream
// produces enough lines or closes its stream.
func (s *Scanner) Scan() bool {
	for s.sc.Scan() {
		line := s.sc.Text()

		if strings.HasPrefix(line, blockMarker) && strings.Contains(line, "Type=") {
			if len(s.current) > 0 {
				s.block = s.current
				s.current = Block{line}
				return true
			}
			s.current = Block{line}
			continue
		}

		// Drop blank lines only while no block is open.
		if strings.TrimSpace(line) != "" || len(s.current) > 0 {
			s.current = append(s.current, line)
		}
	}

	if len(s.current) > 0 {
		s.block = s.current
		s.current = nil
		return true
	}
	return false
}

// Block returns the block read by the last successful Scan.
func (s *Scanner) Block() Block { return s.block }

// Err returns the first non-EOF error from the underlying stream.
func (s *Scanner) Err() error { return s.sc.Err() }
