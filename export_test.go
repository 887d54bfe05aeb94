package gpuctl

// ArenaLen returns the number of handle slots s tracks.
func ArenaLen(s *Session) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.arena)
}
