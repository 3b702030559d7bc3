package comms

// seenSet holds the task IDs already answered for one inbound message.
type seenSet map[string]struct{}

func (s seenSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

// add inserts id and reports whether it was new.
func (s seenSet) add(id string) bool {
	if s.has(id) {
		return false
	}
	s[id] = struct{}{}
	return true
}
