// Implements the RequestQueue, used for both the thread-pool queue (requests holding a
// thread slot but no core) and the bounded overflow buffer.

package sim

import (
	"fmt"
	"strings"
)

// RequestQueue represents a FIFO queue of requests waiting for a core or a thread slot.
// Waiting is modelled as data sitting here, never as a suspended goroutine.
type RequestQueue struct {
	queue []*Request
}

// Enqueue adds a request to the back of the queue.
func (rq *RequestQueue) Enqueue(r *Request) {
	if r == nil {
		panic("Enqueue: req must not be nil")
	}
	rq.queue = append(rq.queue, r)
}

func (rq *RequestQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, val := range rq.queue {
		sb.WriteString(fmt.Sprint(val.ID))
		if i < len(rq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of requests in the queue.
func (rq *RequestQueue) Len() int {
	return len(rq.queue)
}

// Dequeue removes and returns the request at the front of the queue, or nil.
func (rq *RequestQueue) Dequeue() *Request {
	if len(rq.queue) == 0 {
		return nil
	}
	next := rq.queue[0]
	rq.queue[0] = nil
	rq.queue = rq.queue[1:]
	return next
}
