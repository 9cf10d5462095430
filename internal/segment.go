package internal

import "time"

// Segment is one binary unit of media data delivered over the connection.
// The payload is opaque; ordering is the network arrival order.
type Segment struct {
	Seq     uint64
	Data    []byte
	Arrived time.Time
}

// SegmentQueue is the ordered holding area for segments awaiting ingestion.
// It is owned by the coordinator and only touched from its event loop, so
// no locking is needed. Bounding happens one level up: the coordinator
// stops reading frames once Len reaches its high-water mark.
type SegmentQueue struct {
	segs []Segment
}

func NewSegmentQueue() *SegmentQueue {
	return &SegmentQueue{}
}

// Enqueue appends a segment at the tail.
func (q *SegmentQueue) Enqueue(seg Segment) {
	q.segs = append(q.segs, seg)
}

// Dequeue removes and returns the head segment. It never blocks;
// the second return value is false when the queue is empty.
func (q *SegmentQueue) Dequeue() (Segment, bool) {
	if len(q.segs) == 0 {
		return Segment{}, false
	}
	seg := q.segs[0]
	q.segs[0] = Segment{}
	q.segs = q.segs[1:]
	if len(q.segs) == 0 {
		q.segs = nil
	}
	return seg, true
}

// Len returns the number of queued segments.
func (q *SegmentQueue) Len() int {
	return len(q.segs)
}

// Clear discards all queued segments. Called on every session transition
// so that residual segments of a superseded item are never ingested.
func (q *SegmentQueue) Clear() {
	q.segs = nil
}
