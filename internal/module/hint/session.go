package hint

import "sync"

// SessionCounter tracks hints consumed per (user, level) for the current
// attempt session. The count is process-local UI state only: it
// resets when the level restarts, and is not a source of truth.
type SessionCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewSessionCounter creates an empty counter.
func NewSessionCounter() *SessionCounter {
	return &SessionCounter{counts: make(map[string]int)}
}

func sessionKey(userID, levelID string) string {
	return userID + "\x00" + levelID
}

// Consume records one hint use if the tier's budget allows it and returns
// the updated count. It returns false without incrementing when the budget
// is exhausted.
func (c *SessionCounter) Consume(userID, levelID string, d Difficulty) (int, bool) {
	key := sessionKey(userID, levelID)

	c.mu.Lock()
	defer c.mu.Unlock()

	used := c.counts[key]
	if used >= MaxHints(d) {
		return used, false
	}
	used++
	c.counts[key] = used
	return used, true
}

// Count returns the hints consumed in the current session.
func (c *SessionCounter) Count(userID, levelID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[sessionKey(userID, levelID)]
}

// Reset clears the session count, used when the level restarts.
func (c *SessionCounter) Reset(userID, levelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, sessionKey(userID, levelID))
}
