package syncer

import "time"

// Kind is the remote write a mutation performs.
type Kind string

const (
	KindInsert   Kind = "insert"
	KindPosition Kind = "position"
	KindContent  Kind = "content"
)

// Status tracks a remote write from queueing to its outcome.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCommitted Status = "committed"
	StatusFailed    Status = "failed"
)

// Mutation is the record of one remote write.
type Mutation struct {
	Seq      uint64     `json:"seq"`
	Kind     Kind       `json:"kind"`
	NodeID   string     `json:"node_id"`
	Status   Status     `json:"status"`
	Error    string     `json:"error,omitempty"`
	QueuedAt time.Time  `json:"queued_at"`
	DoneAt   *time.Time `json:"done_at,omitempty"`
}

// Mutations returns the most recent writes, oldest first.
func (s *Syncer) Mutations() []Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Mutation, len(s.history))
	copy(out, s.history)
	return out
}

// Pending is the number of writes queued or in flight.
func (s *Syncer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Failed returns the recent writes that did not reach the store.
func (s *Syncer) Failed() []Mutation {
	var failed []Mutation
	for _, m := range s.Mutations() {
		if m.Status == StatusFailed {
			failed = append(failed, m)
		}
	}
	return failed
}

func (s *Syncer) record(w write) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.pending++
	s.history = append(s.history, Mutation{
		Seq:      s.seq,
		Kind:     w.kind,
		NodeID:   w.nodeID,
		Status:   StatusPending,
		QueuedAt: s.opts.Now(),
	})
	if over := len(s.history) - s.opts.HistorySize; over > 0 {
		s.history = append(s.history[:0:0], s.history[over:]...)
	}
	return s.seq
}

func (s *Syncer) complete(seq uint64, status Status, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending--

	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].Seq != seq {
			continue
		}
		now := s.opts.Now()
		s.history[i].Status = status
		s.history[i].DoneAt = &now
		if err != nil {
			s.history[i].Error = err.Error()
		}
		return
	}
}
