package booking

import (
	"container/heap"

	"github.com/iliyamo/railway-ticketing/internal/model"
)

type queued struct {
	req model.PurchaseRequest
	seq uint64
}

// requestHeap orders by priority, highest first, then by arrival.
type requestHeap []queued

func (h requestHeap) Len() int { return len(h) }

func (h requestHeap) Less(i, j int) bool {
	if h[i].req.Priority != h[j].req.Priority {
		return h[i].req.Priority > h[j].req.Priority
	}
	return h[i].seq < h[j].seq
}

func (h requestHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *requestHeap) Push(x any) { *h = append(*h, x.(queued)) }

func (h *requestHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// orderQueue is a priority queue of pending requests, FIFO within equal
// priority.  It is not safe for concurrent use; Processor guards it.
type orderQueue struct {
	items requestHeap
	seq   uint64
}

func (q *orderQueue) push(req model.PurchaseRequest) {
	q.seq++
	heap.Push(&q.items, queued{req: req, seq: q.seq})
}

func (q *orderQueue) pop() (model.PurchaseRequest, bool) {
	if len(q.items) == 0 {
		return model.PurchaseRequest{}, false
	}
	return heap.Pop(&q.items).(queued).req, true
}

func (q *orderQueue) size() int { return len(q.items) }
