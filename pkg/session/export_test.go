package session

// Active exposes the lock table size to tests.
func (m *Manager) Active() int { return m.active() }
