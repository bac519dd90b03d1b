package mqtt

// bufferedMsg is a serialized message waiting for a connection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer keeps the newest capacity messages in arrival order. When full,
// a push replaces the oldest message. The caller synchronizes access.
type ringBuffer struct {
	msgs     []bufferedMsg
	capacity int
	next     int // slot the next push writes
	size     int
	full     bool // dropped since the last drain
	dropped  int
}

func newRingBuffer(capacity int) *ringBuffer {
	capacity = max(capacity, 1)
	return &ringBuffer{msgs: make([]bufferedMsg, capacity), capacity: capacity}
}

// push stores msg and reports whether this is the first drop since the last
// drain, so the caller can warn once per outage.
func (r *ringBuffer) push(msg bufferedMsg) bool {
	r.msgs[r.next] = msg
	r.next = (r.next + 1) % r.capacity
	if r.size < r.capacity {
		r.size++
		return false
	}
	r.dropped++
	first := !r.full
	r.full = true
	return first
}

// drainAll empties the buffer, oldest message first. It returns nil when
// there is nothing to replay.
func (r *ringBuffer) drainAll() []bufferedMsg {
	if r.size == 0 {
		return nil
	}
	out := make([]bufferedMsg, 0, r.size)
	oldest := (r.next - r.size + r.capacity) % r.capacity
	for i := range r.size {
		out = append(out, r.msgs[(oldest+i)%r.capacity])
	}
	r.next, r.size, r.full = 0, 0, false
	return out
}

func (r *ringBuffer) len() int {
	return r.size
}
