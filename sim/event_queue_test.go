package sim

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEventQueue_TimestampOrdering tests that events are popped in timestamp order
func TestEventQueue_TimestampOrdering(t *testing.T) {
	eq := NewEventQueue()
	core := NewCore(0)

	eq.Schedule(&QuantumOverEvent{time: 100, Core: core})
	eq.Schedule(&ArrivalEvent{time: 50, Request: NewRequest(1, 50, 1)})
	eq.Schedule(&DepartureEvent{time: 150, Request: NewRequest(2, 0, 1)})

	for _, want := range []float64{50, 100, 150} {
		got := eq.PopNext()
		require.NotNil(t, got)
		assert.Equal(t, want, got.Timestamp())
	}
	assert.Nil(t, eq.PopNext(), "empty queue signals exhaustion")
	assert.Nil(t, eq.Peek())
}

// TestEventQueue_TimeoutAfterOtherKinds tests that a Timeout is popped after every
// other kind sharing its timestamp, whatever the insertion order.
func TestEventQueue_TimeoutAfterOtherKinds(t *testing.T) {
	eq := NewEventQueue()
	core := NewCore(0)
	req := NewRequest(1, 0, 1)

	eq.Schedule(&TimeoutEvent{time: 10, RequestID: 1})
	eq.Schedule(&ArrivalEvent{time: 10, Request: req})
	eq.Schedule(&TimeoutEvent{time: 10, RequestID: 2})
	eq.Schedule(&ContextSwitchCompleteEvent{time: 10, Core: core})
	eq.Schedule(&DepartureEvent{time: 10, Request: req})
	eq.Schedule(&QuantumOverEvent{time: 10, Core: core})

	var kinds []EventKind
	for eq.Len() > 0 {
		kinds = append(kinds, eq.PopNext().Kind())
	}
	require.Len(t, kinds, 6)
	for _, k := range kinds[:4] {
		assert.NotEqual(t, EventTimeout, k)
	}
	assert.Equal(t, EventTimeout, kinds[4])
	assert.Equal(t, EventTimeout, kinds[5])
}

func TestEventQueue_EarlierTimeoutBeforeLaterArrival(t *testing.T) {
	eq := NewEventQueue()
	eq.Schedule(&ArrivalEvent{time: 2, Request: NewRequest(1, 2, 1)})
	eq.Schedule(&TimeoutEvent{time: 1, RequestID: 0})

	assert.Equal(t, EventTimeout, eq.PopNext().Kind())
	assert.Equal(t, EventArrival, eq.PopNext().Kind())
}

// TestEventQueue_RandomInsertion_NonDecreasing: for any insertion order, events come
// out in non-decreasing timestamp order and Timeouts trail their timestamp group.
func TestEventQueue_RandomInsertion_NonDecreasing(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	eq := NewEventQueue()
	core := NewCore(0)
	for i := 0; i < 2000; i++ {
		ts := float64(rng.IntN(50)) // force many ties
		switch rng.IntN(5) {
		case 0:
			eq.Schedule(&ArrivalEvent{time: ts, Request: NewRequest(int64(i), ts, 1)})
		case 1:
			eq.Schedule(&DepartureEvent{time: ts, Request: NewRequest(int64(i), 0, 1)})
		case 2:
			eq.Schedule(&QuantumOverEvent{time: ts, Core: core})
		case 3:
			eq.Schedule(&ContextSwitchCompleteEvent{time: ts, Core: core})
		default:
			eq.Schedule(&TimeoutEvent{time: ts, RequestID: int64(i)})
		}
	}

	prev := eq.PopNext()
	for eq.Len() > 0 {
		next := eq.PopNext()
		require.GreaterOrEqual(t, next.Timestamp(), prev.Timestamp())
		if next.Timestamp() == prev.Timestamp() && prev.Kind() == EventTimeout {
			require.Equal(t, EventTimeout, next.Kind(), "non-Timeout popped after a Timeout at t=%g", next.Timestamp())
		}
		prev = next
	}
}

func TestEventQueue_Peek_DoesNotRemove(t *testing.T) {
	eq := NewEventQueue()
	eq.Schedule(&TimeoutEvent{time: 3, RequestID: 9})

	assert.Equal(t, 3.0, eq.Peek().Timestamp())
	assert.Equal(t, 1, eq.Len())
}
