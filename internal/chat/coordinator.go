package chat

import "sync"

// Coordinator guards the single active-turn slot. A turn may act on shared
// state only while its token is current, and it is finalized at most once.
type Coordinator struct {
	mu     sync.Mutex
	next   Token
	active *Turn
	last   *Turn
}

// Begin installs t as the active turn and returns the turn it superseded, if
// any. The superseded turn is cancelled and marked finalized so none of its
// pending completions can reach the view. onInstall runs under the lock after
// the swap.
func (c *Coordinator) Begin(t *Turn, onInstall func(prev *Turn)) *Turn {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.active
	if prev != nil {
		prev.cancel()
		prev.state = StateCancelled
		prev.finalized = true
	}
	c.next++
	t.token = c.next
	c.active = t
	c.last = t
	if onInstall != nil {
		onInstall(prev)
	}
	return prev
}

// Stop invalidates the active turn and returns it, or nil when idle. The slot
// is left empty; onStop runs under the lock.
func (c *Coordinator) Stop(onStop func(t *Turn)) *Turn {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.active
	if t == nil {
		return nil
	}
	t.cancel()
	t.state = StateCancelled
	c.active = nil
	if onStop != nil {
		onStop(t)
	}
	return t
}

// IsCurrent reports whether tok belongs to the active turn.
func (c *Coordinator) IsCurrent(tok Token) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil && c.active.token == tok
}

// WithCurrent runs fn under the lock only if tok is still current.
func (c *Coordinator) WithCurrent(tok Token, fn func(t *Turn)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil || c.active.token != tok {
		return false
	}
	fn(c.active)
	return true
}

// Retire ends the active turn from its own goroutine: if tok is still current
// it runs fn, empties the slot and marks the turn finalized.
func (c *Coordinator) Retire(tok Token, fn func(t *Turn)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.active
	if t == nil || t.token != tok || t.finalized {
		return false
	}
	fn(t)
	t.finalized = true
	c.active = nil
	return true
}

// Finalize runs fn once for t, and only if no newer turn holds the slot.
func (c *Coordinator) Finalize(t *Turn, fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.finalized {
		return false
	}
	if c.active != nil && c.active != t {
		t.finalized = true
		return false
	}
	t.finalized = true
	if c.active == t {
		c.active = nil
	}
	fn()
	return true
}

func (c *Coordinator) locked(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

// Active returns the id and state of the active turn.
func (c *Coordinator) Active() (id string, state State, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return "", "", false
	}
	return c.active.ID, c.active.state, true
}

// State returns the state of the active turn, else of the most recent one.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.active != nil:
		return c.active.state
	case c.last != nil:
		return c.last.state
	default:
		return StateIdle
	}
}
