package pool

// WorkerStats is a point-in-time view of one worker.
type WorkerStats struct {
	ID       int         `json:"id"`
	State    WorkerState `json:"-"`
	StateStr string      `json:"state"`
	Executed uint64      `json:"executed"`
	Failed   uint64      `json:"failed"`
}

// Stats is a point-in-time view of the pool. Counters are read without a
// global lock and may be slightly skewed while tasks are in flight.
type Stats struct {
	Size      int           `json:"size"`
	Active    int           `json:"active"`
	Queued    int           `json:"queued"`
	Submitted uint64        `json:"submitted"`
	Completed uint64        `json:"completed"`
	Failed    uint64        `json:"failed"`
	Rejected  uint64        `json:"rejected"`
	Closed    bool          `json:"closed"`
	Workers   []WorkerStats `json:"workers"`
}

// Stats returns a snapshot of pool and worker counters.
func (p *Pool) Stats() Stats {
	s := Stats{
		Size:      len(p.workers),
		Queued:    p.queue.len(),
		Submitted: p.submitted.Load(),
		Rejected:  p.rejected.Load(),
		Closed:    p.queue.isClosed(),
		Workers:   make([]WorkerStats, 0, len(p.workers)),
	}

	for _, w := range p.workers {
		state := w.getState()
		ws := WorkerStats{
			ID:       w.id,
			State:    state,
			StateStr: state.String(),
			Executed: w.executed.Load(),
			Failed:   w.failed.Load(),
		}
		if state != WorkerStopped {
			s.Active++
		}
		s.Completed += ws.Executed
		s.Failed += ws.Failed
		s.Workers = append(s.Workers, ws)
	}

	return s
}
