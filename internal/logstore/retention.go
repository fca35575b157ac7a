package logstore

import (
	"notilog/internal/record"
	"notilog/pkg/logx"
)

// EnforceRetention bounds the log to the newest maxEvents distinct
// events, ranked by best order value per event key. Eviction drops every
// line of an evicted key. No-op when retention is disabled or the bound
// is not exceeded; applying it twice in a row never rewrites twice.
func (s *Store) EnforceRetention() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enforceRetention()
}

func (s *Store) enforceRetention() error {
	if s.maxEvents <= 0 {
		return nil
	}

	records, err := s.ReadAll()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	trimmed := record.TrimToNewest(records, s.maxEvents)
	if len(trimmed) == len(records) {
		return nil
	}

	s.log.Debug("retention evicting records",
		logx.Int("before", len(records)),
		logx.Int("after", len(trimmed)),
		logx.Int("max_events", s.maxEvents))
	return s.rewrite(trimmed)
}

// PruneOlderThan drops individual record lines whose best available epoch
// is older than days ago, and reports how many lines were removed and how
// many remain. A line with no epoch at all is kept regardless of age.
//
// This is line-grained by contract, unlike EnforceRetention: it may keep
// the close side of an event whose open side aged out.
func (s *Store) PruneOlderThan(days int64, now int64) (removed, remaining int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.ReadAll()
	if err != nil {
		return 0, 0, err
	}

	cutoff := now - days*24*60*60
	kept := make([]record.Record, 0, len(records))
	for _, rec := range records {
		if epoch, ok := rec.EventEpoch(); ok && epoch < cutoff {
			continue
		}
		kept = append(kept, rec)
	}

	if err := s.rewrite(kept); err != nil {
		return 0, 0, err
	}
	return len(records) - len(kept), len(kept), nil
}
