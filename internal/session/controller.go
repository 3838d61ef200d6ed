// Package session tracks the single active session: who is signed in, when
// the session times out, and the bounded activity log used for auditing.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ordermaster/identity/internal/common"
	"github.com/ordermaster/identity/internal/logging"
	"github.com/ordermaster/identity/internal/users"
)

// EndReason distinguishes a user-initiated logout from a timeout.
type EndReason int

const (
	EndManual EndReason = iota
	EndExpired
)

const (
	// DefaultTimeout is the inactivity window after which a session expires.
	DefaultTimeout = 8 * time.Hour

	// DefaultCheckInterval is how often the background checker looks for
	// an expired session.
	DefaultCheckInterval = time.Minute

	maxActivities = 1000
	trimBatch     = 500
)

// Session is the record of the currently signed-in user. User is a snapshot
// looked up from the credential store, not the store's own record.
type Session struct {
	ID         uuid.UUID
	User       *users.User
	LoginTime  time.Time
	RememberMe bool

	// secret holds credential material tied to this session; it is
	// zeroed when the session ends.
	secret []byte

	// expiring is set once the checker has handed the session to the
	// expiry callback, so a second tick cannot fire the callback again.
	expiring bool
}

// ActivityEntry is one line of the bounded, append-only activity log.
type ActivityEntry struct {
	UserID    int
	UserName  string
	Activity  string
	Timestamp time.Time
	SessionID uuid.UUID
}

// Controller owns the single active session. All mutation is serialized
// behind one mutex; the periodic checker goroutine funnels through the same
// lock, so a tick can never race a concurrent login or logout.
type Controller struct {
	mu            sync.Mutex
	clock         Clock
	log           logging.Logger
	timeout       time.Duration
	checkInterval time.Duration
	current       *Session
	activities    []ActivityEntry
	onExpired     func(*users.User)
	stop          chan struct{}
}

// NewController returns a logged-out controller using the given clock.
func NewController(clock Clock, log logging.Logger) *Controller {
	return &Controller{
		clock:         clock,
		log:           log.With("component", "session"),
		timeout:       DefaultTimeout,
		checkInterval: DefaultCheckInterval,
	}
}

// SetTimeout replaces the expiration window for the current and future
// sessions.
func (c *Controller) SetTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.timeout = d
	}
}

// SetCheckInterval replaces the checker period used by future sessions.
func (c *Controller) SetCheckInterval(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.checkInterval = d
	}
}

// OnExpired registers the callback invoked when the checker detects an
// expired session. The callback only chooses what happens next (re-prompt,
// shut down); it cannot veto the expiration itself.
func (c *Controller) OnExpired(fn func(*users.User)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = fn
}

// Start begins a session for user. Any session still live is ended first,
// so at most one session exists per process. secret may carry credential
// material to be wiped when the session ends; nil is fine.
func (c *Controller) Start(user *users.User, rememberMe bool, secret []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.endLocked(EndManual)
	}

	c.current = &Session{
		ID:         uuid.New(),
		User:       user,
		LoginTime:  c.clock.Now(),
		RememberMe: rememberMe,
		secret:     secret,
	}
	c.stop = make(chan struct{})
	go c.watch(c.stop)

	c.logActivityLocked("session started")
	c.log.Info(context.Background(), "session started",
		"sessionId", c.current.ID, "userId", user.ID, "rememberMe", rememberMe)
}

// End terminates the current session, stopping the checker and wiping any
// secret buffers tied to the session. A no-op when logged out.
func (c *Controller) End(reason EndReason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLocked(reason)
}

func (c *Controller) endLocked(reason EndReason) {
	if c.current == nil {
		return
	}

	msg := "session ended"
	if reason == EndExpired {
		msg = "session expired"
	}
	c.logActivityLocked(msg)
	c.log.Info(context.Background(), msg,
		"sessionId", c.current.ID, "userId", c.current.User.ID)

	close(c.stop)
	c.stop = nil

	common.WipeByteArray(c.current.secret)
	c.current = nil
}

// Extend resets the login time to now without re-authenticating.
func (c *Controller) Extend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return
	}
	c.current.LoginTime = c.clock.Now()
	c.logActivityLocked("session extended")
}

// CurrentUser returns the signed-in user, or nil when logged out.
func (c *Controller) CurrentUser() *users.User {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil
	}
	return c.current.User
}

// IsLoggedIn reports whether a session is live.
func (c *Controller) IsLoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// IsExpired reports whether the current session has outlived the timeout.
// Always false when logged out.
func (c *Controller) IsExpired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current != nil && c.clock.Now().Sub(c.current.LoginTime) > c.timeout
}

// RemainingTime returns how long until the current session expires, never
// negative. Zero when logged out.
func (c *Controller) RemainingTime() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return 0
	}
	remaining := c.timeout - c.clock.Now().Sub(c.current.LoginTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// LogActivity appends an entry to the activity log. Entries are only
// recorded while a session is live.
func (c *Controller) LogActivity(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logActivityLocked(text)
}

func (c *Controller) logActivityLocked(text string) {
	if c.current == nil {
		return
	}

	c.activities = append(c.activities, ActivityEntry{
		UserID:    c.current.User.ID,
		UserName:  c.current.User.FullName,
		Activity:  text,
		Timestamp: c.clock.Now(),
		SessionID: c.current.ID,
	})

	// overflow drops the oldest entries as one batch, not one at a time
	if len(c.activities) > maxActivities {
		trimmed := make([]ActivityEntry, len(c.activities)-trimBatch)
		copy(trimmed, c.activities[trimBatch:])
		c.activities = trimmed
	}
}

// Activities returns up to max entries, most recent first, optionally
// filtered by user ID (0 means all users). max <= 0 falls back to 100.
func (c *Controller) Activities(userID int, max int) []ActivityEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if max <= 0 {
		max = 100
	}

	out := make([]ActivityEntry, 0, max)
	for i := len(c.activities) - 1; i >= 0 && len(out) < max; i-- {
		entry := c.activities[i]
		if userID != 0 && entry.UserID != userID {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// watch runs the periodic expiration check until stop closes. It is started
// per session, so a logout cannot leave a checker firing against the next
// session.
func (c *Controller) watch(stop chan struct{}) {
	ticker := c.clock.Ticker(c.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			c.checkExpiry()
		case <-stop:
			return
		}
	}
}

// checkExpiry fires the expiry callback at most once per session and then
// ends the session unconditionally. The callback runs outside the lock so
// it may call back into the controller (for example to inspect activities
// or start a new session).
func (c *Controller) checkExpiry() {
	c.mu.Lock()
	s := c.current
	if s == nil || s.expiring || c.clock.Now().Sub(s.LoginTime) <= c.timeout {
		c.mu.Unlock()
		return
	}
	s.expiring = true
	cb := c.onExpired
	user := s.User
	c.mu.Unlock()

	if cb != nil {
		cb(user)
	}

	// end only if the expired session is still the current one; the
	// callback may already have signed in again
	c.mu.Lock()
	if c.current == s {
		c.endLocked(EndExpired)
	}
	c.mu.Unlock()
}
