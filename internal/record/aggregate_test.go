package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateMergesSharedUID(t *testing.T) {
	facts := []Record{
		{ID: 7, EventUID: "7_x", Epoch: Int64p(100), Summary: "A"},
		{ID: 7, EventUID: "7_x", CloseReasonCode: Uint32p(1), CloseReason: "expired", ClosedEpoch: Int64p(200)},
	}

	merged := Aggregate(facts)
	require.Len(t, merged, 1)
	state := merged[0]
	assert.Equal(t, uint32(7), state.ID)
	assert.Equal(t, "A", state.Summary)
	require.NotNil(t, state.Epoch)
	assert.Equal(t, int64(100), *state.Epoch)
	require.NotNil(t, state.ClosedEpoch)
	assert.Equal(t, int64(200), *state.ClosedEpoch)
	require.NotNil(t, state.CloseReasonCode)
	assert.Equal(t, uint32(1), *state.CloseReasonCode)
}

func TestAggregateNeverMergesUIDlessFacts(t *testing.T) {
	// Same id, no uid: distinct synthetic keys, two legacy entries.
	facts := []Record{
		{ID: 7, Epoch: Int64p(100), Summary: "A"},
		{ID: 7, CloseReasonCode: Uint32p(1), ClosedEpoch: Int64p(200)},
	}

	merged := Aggregate(facts)
	require.Len(t, merged, 2)
	// Each legacy entry adopts its synthetic key as uid.
	assert.Equal(t, "legacy:7:1", merged[0].EventUID) // closed at 200, ranks first
	assert.Equal(t, "legacy:7:0", merged[1].EventUID)
}

func TestAggregateOrdersMostRecentFirst(t *testing.T) {
	facts := []Record{
		{ID: 1, EventUID: "a", Epoch: Int64p(100)},
		{ID: 2, EventUID: "b", Epoch: Int64p(300)},
		{ID: 3, EventUID: "c", Epoch: Int64p(200)},
	}

	merged := Aggregate(facts)
	require.Len(t, merged, 3)
	assert.Equal(t, "b", merged[0].EventUID)
	assert.Equal(t, "c", merged[1].EventUID)
	assert.Equal(t, "a", merged[2].EventUID)
}

func TestAggregateBreaksEpochTiesByFileIndex(t *testing.T) {
	facts := []Record{
		{ID: 1, EventUID: "a", Epoch: Int64p(100)},
		{ID: 2, EventUID: "b", Epoch: Int64p(100)},
	}

	merged := Aggregate(facts)
	require.Len(t, merged, 2)
	assert.Equal(t, "b", merged[0].EventUID)
}

func TestAggregateIdempotent(t *testing.T) {
	facts := []Record{
		{ID: 7, EventUID: "7_x", Epoch: Int64p(100), Summary: "A", AppName: "app"},
		{ID: 7, EventUID: "7_x", CloseReasonCode: Uint32p(1), CloseReason: "expired", ClosedEpoch: Int64p(200)},
		{ID: 9, Epoch: Int64p(50), Summary: "legacy"},
		{ID: 8, EventUID: "8_y", Epoch: Int64p(300), Summary: "B"},
	}

	once := Aggregate(facts)
	twice := Aggregate(once)
	assert.Equal(t, once, twice)
}

func TestTrimToNewestKeepsTopEvents(t *testing.T) {
	// K1 ordered (100, 0), K2 ordered (200, 1): with max 1 only K2's
	// facts survive.
	facts := []Record{
		{ID: 1, EventUID: "K1", Epoch: Int64p(100)},
		{ID: 2, EventUID: "K2", Epoch: Int64p(200)},
	}

	trimmed := TrimToNewest(facts, 1)
	require.Len(t, trimmed, 1)
	assert.Equal(t, "K2", trimmed[0].EventUID)
}

func TestTrimToNewestEvictsWholeEvents(t *testing.T) {
	// The evicted event's close line looks recent on its own, but
	// eviction is keyed: both of its lines go.
	facts := []Record{
		{ID: 1, EventUID: "old", Epoch: Int64p(100)},
		{ID: 2, EventUID: "new", Epoch: Int64p(500)},
		{ID: 2, EventUID: "new", ClosedEpoch: Int64p(600)},
		{ID: 1, EventUID: "old", ClosedEpoch: Int64p(550)},
	}

	trimmed := TrimToNewest(facts, 1)
	require.Len(t, trimmed, 2)
	for _, rec := range trimmed {
		assert.Equal(t, "new", rec.EventUID)
	}
}

func TestTrimToNewestNoopWithinBound(t *testing.T) {
	facts := []Record{
		{ID: 1, EventUID: "a", Epoch: Int64p(100)},
		{ID: 2, EventUID: "b", Epoch: Int64p(200)},
	}

	assert.Equal(t, facts, TrimToNewest(facts, 2))
	assert.Equal(t, facts, TrimToNewest(facts, 0), "0 disables trimming")

	trimmed := TrimToNewest(facts, 1)
	assert.Equal(t, trimmed, TrimToNewest(trimmed, 1), "second application is a no-op")
}

func TestBestOrderTracksMaximumPerKey(t *testing.T) {
	facts := []Record{
		{ID: 1, EventUID: "a", Epoch: Int64p(100)},
		{ID: 1, EventUID: "a", ClosedEpoch: Int64p(300)},
		{ID: 2, EventUID: "b", Epoch: Int64p(200)},
	}

	order := BestOrder(facts)
	require.Len(t, order, 2)
	assert.Equal(t, OrderValue{Epoch: 300, Index: 1}, order["a"])
	assert.Equal(t, OrderValue{Epoch: 200, Index: 2}, order["b"])
}
