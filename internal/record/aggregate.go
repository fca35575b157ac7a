package record

import "sort"

// OrderValue ranks an event: its best known epoch, with the file index as
// tie breaker. Later lines beat earlier ones at the same epoch.
type OrderValue struct {
	Epoch int64
	Index int
}

// After reports whether o ranks strictly above other.
func (o OrderValue) After(other OrderValue) bool {
	if o.Epoch != other.Epoch {
		return o.Epoch > other.Epoch
	}
	return o.Index > other.Index
}

// BestOrder computes, per event key, the highest OrderValue seen across
// all records. This is the ranking retention uses; it does not need the
// merged field contents.
func BestOrder(records []Record) map[string]OrderValue {
	order := make(map[string]OrderValue, len(records))
	for i, rec := range records {
		key := rec.Key(i)
		ov := OrderValue{Epoch: rec.OrderEpoch(), Index: i}
		if best, ok := order[key]; !ok || ov.After(best) {
			order[key] = ov
		}
	}
	return order
}

// Aggregate folds every record sharing an event key into one merged
// current-state view, last present field winning in file order, and
// returns the views most-recently-active first (OrderValue descending,
// ties to the larger file index).
//
// A merged view that had no uid of its own adopts its event key as uid,
// so synthetic legacy keys survive an export/re-import round trip.
func Aggregate(records []Record) []Record {
	merged := make(map[string]*Record, len(records))
	order := make(map[string]OrderValue, len(records))
	keys := make([]string, 0, len(records))

	for i, rec := range records {
		key := rec.Key(i)
		entry, ok := merged[key]
		if !ok {
			entry = &Record{ID: rec.ID}
			merged[key] = entry
			keys = append(keys, key)
		}
		if entry.EventUID == "" {
			entry.EventUID = key
		}
		entry.MergeFrom(rec)

		ov := OrderValue{Epoch: rec.OrderEpoch(), Index: i}
		if best, ok := order[key]; !ok || ov.After(best) {
			order[key] = ov
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		return order[keys[i]].After(order[keys[j]])
	})

	out := make([]Record, 0, len(keys))
	for _, key := range keys {
		out = append(out, *merged[key])
	}
	return out
}

// TrimToNewest bounds records to the max newest distinct events. Eviction
// is keyed, not line-grained: every line of an evicted event is dropped,
// even one that individually looks recent. Survivors keep their original
// relative order. max <= 0 disables trimming.
func TrimToNewest(records []Record, max int) []Record {
	if max <= 0 {
		return records
	}

	order := BestOrder(records)
	if len(order) <= max {
		return records
	}

	ranked := make([]string, 0, len(order))
	for key := range order {
		ranked = append(ranked, key)
	}
	sort.Slice(ranked, func(i, j int) bool {
		return order[ranked[i]].After(order[ranked[j]])
	})

	keep := make(map[string]struct{}, max)
	for _, key := range ranked[:max] {
		keep[key] = struct{}{}
	}

	out := make([]Record, 0, len(records))
	for i, rec := range records {
		if _, ok := keep[rec.Key(i)]; ok {
			out = append(out, rec)
		}
	}
	return out
}
