package sim

import "container/heap"

// kindRank orders event kinds at equal timestamps. Timeouts come strictly after
// everything else so a request finishing at its deadline departs first. The other
// kinds share a rank: their relative order is by insertion and is not a guarantee.
func kindRank(k EventKind) int {
	if k == EventTimeout {
		return 1
	}
	return 0
}

type queuedEvent struct {
	ev  Event
	seq uint64
}

// EventQueue implements heap.Interface and orders events by timestamp, then kind
// rank, then insertion sequence.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type EventQueue struct {
	events  []queuedEvent
	nextSeq uint64
}

// NewEventQueue creates an empty event queue.
func NewEventQueue() *EventQueue {
	eq := &EventQueue{events: make([]queuedEvent, 0)}
	heap.Init(eq)
	return eq
}

func (eq *EventQueue) Len() int { return len(eq.events) }

func (eq *EventQueue) Less(i, j int) bool {
	ei, ej := eq.events[i], eq.events[j]
	if ti, tj := ei.ev.Timestamp(), ej.ev.Timestamp(); ti != tj {
		return ti < tj
	}
	if ri, rj := kindRank(ei.ev.Kind()), kindRank(ej.ev.Kind()); ri != rj {
		return ri < rj
	}
	return ei.seq < ej.seq
}

func (eq *EventQueue) Swap(i, j int) { eq.events[i], eq.events[j] = eq.events[j], eq.events[i] }

func (eq *EventQueue) Push(x any) {
	eq.events = append(eq.events, x.(queuedEvent))
}

func (eq *EventQueue) Pop() any {
	old := eq.events
	n := len(old)
	item := old[n-1]
	old[n-1] = queuedEvent{} // avoid memory leak
	eq.events = old[0 : n-1]
	return item
}

// Schedule adds an event to the queue.
func (eq *EventQueue) Schedule(ev Event) {
	heap.Push(eq, queuedEvent{ev: ev, seq: eq.nextSeq})
	eq.nextSeq++
}

// PopNext removes and returns the next event, or nil when the queue is exhausted.
func (eq *EventQueue) PopNext() Event {
	if eq.Len() == 0 {
		return nil
	}
	return heap.Pop(eq).(queuedEvent).ev
}

// Peek returns the next event without removing it.
func (eq *EventQueue) Peek() Event {
	if eq.Len() == 0 {
		return nil
	}
	return eq.events[0].ev
}
