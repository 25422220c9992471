package cpusampler

// push appends record, evicting the oldest entry first when at capacity.
// Caller must hold the write lock.
func (s *Sampler) push(record TimeAndThreadCpuUsages) {
	for len(s.history) >= s.cfg.Capacity {
		s.history = s.history[1:]
	}
	s.history = append(s.history, record)
}

// GetHistory returns a snapshot of the recorded ticks, oldest first.
func (s *Sampler) GetHistory() []TimeAndThreadCpuUsages {
	s.lock.RLock()
	defer s.lock.RUnlock()

	out := make([]TimeAndThreadCpuUsages, len(s.history))
	copy(out, s.history)
	return out
}

// Len is the number of records currently held.
func (s *Sampler) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.history)
}
