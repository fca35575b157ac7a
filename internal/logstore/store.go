// Package logstore persists notification lifecycle records as an
// append-only JSONL file and bounds its growth.
//
// Two pruning paths exist on purpose and must stay distinct: count-bound
// retention (EnforceRetention) evicts whole events, dropping every line of
// an evicted key, while age pruning (PruneOlderThan) drops individual
// lines and can therefore keep one side of an open/close pair. The first
// bounds what a viewer window shows, the second bounds raw disk growth.
package logstore

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"notilog/internal/record"
	"notilog/pkg/logx"
)

// maxLineBytes bounds a single log line when scanning. Notification
// bodies are small; this leaves generous headroom.
const maxLineBytes = 1 << 20

// Store is the append-only notification log.
//
// Writers append one JSON line per record and never mutate existing
// lines; rewrites happen only at file granularity during retention and
// pruning. Readers always take a whole-file snapshot, so a concurrent
// writer costs a reader at most one record of staleness.
//
// All mutations hold mu: the scheduled prune runs on its own goroutine,
// and an append racing a rewrite would land on the unlinked pre-rename
// inode and vanish.
type Store struct {
	path      string
	maxEvents int

	mu sync.Mutex

	log logx.Logger
}

// New creates a store over path. maxEvents bounds the number of distinct
// events kept after each append (0 disables retention). The log file's
// directory is created best-effort.
func New(path string, maxEvents int, log logx.Logger) *Store {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}
	return &Store{path: path, maxEvents: maxEvents, log: log}
}

// Path returns the log file location.
func (s *Store) Path() string { return s.path }

// Append writes one record as a single JSON line, durable before return,
// then applies count-bound retention.
func (s *Store) Append(rec record.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal log record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	_, werr := f.Write(append(b, '\n'))
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("append log record: %w", werr)
	}
	if cerr != nil {
		return fmt.Errorf("close log file: %w", cerr)
	}

	return s.enforceRetention()
}

// ReadAll returns every parseable record in file order. A missing file is
// an empty log. Lines that fail to parse as the record schema (malformed
// JSON, unusable id) are skipped, never fatal: a process killed mid-write
// may leave a truncated final line and that must not poison reads.
func (s *Store) ReadAll() ([]record.Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	var records []record.Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec record.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			s.log.Debug("skipping unparseable log line", logx.Err(err))
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return records, nil
}

// Tail returns the last n records in file order.
func (s *Store) Tail(n int) ([]record.Record, error) {
	records, err := s.ReadAll()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	if len(records) > n {
		records = records[len(records)-n:]
	}
	return records, nil
}

// Count returns the raw (unmerged) record count.
func (s *Store) Count() (int, error) {
	records, err := s.ReadAll()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// rewrite replaces the log with the given records, preserving their
// order. It goes through a temp file and rename so a concurrent reader
// sees either the old snapshot or the new one, never a half-written
// file. Any write, sync or close failure aborts before the rename so a
// truncated temp file can never replace the real log. Caller holds mu.
func (s *Store) rewrite(records []record.Record) error {
	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open temp log file: %w", err)
	}

	if err := writeRecords(f, records); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write temp log file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync temp log file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp log file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace log file: %w", err)
	}
	return nil
}

func writeRecords(w io.Writer, records []record.Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		if _, err := bw.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return bw.Flush()
}
