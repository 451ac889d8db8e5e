package auth

import (
	"context"
	"sync"
	"time"
)

// refreshLeeway is how close to expiry a token may get before Refresh
// replaces it.
const refreshLeeway = 5 * time.Minute

// Snapshot is an immutable view of the authentication state at one moment.
type Snapshot struct {
	State State
	User  *User
}

// Observer receives state snapshots. Called synchronously under the
// controller's dispatch; observers must not call back into the controller.
type Observer func(Snapshot)

// StateController owns the mutable authentication state for one session and
// publishes it to observers as immutable snapshots. It replaces shared
// mutable auth globals: all transitions go through this single owner.
type StateController struct {
	mu        sync.Mutex
	provider  Provider
	state     State
	session   *Session
	observers map[int]Observer
	nextID    int
	now       func() time.Time
}

// NewStateController builds a controller over provider, seeding the state
// from the provider's current sign-in status.
func NewStateController(provider Provider) *StateController {
	c := &StateController{
		provider:  provider,
		observers: make(map[int]Observer),
		now:       time.Now,
	}
	if provider.IsSignedIn() {
		c.state = StateAuthenticated
	} else {
		c.state = StateUnauthenticated
	}
	return c
}

// Subscribe registers obs and immediately delivers the current snapshot.
// The returned func cancels the subscription.
func (c *StateController) Subscribe(obs Observer) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.observers[id] = obs
	snap := c.snapshotLocked()
	c.mu.Unlock()

	obs(snap)
	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// Snapshot returns the current state.
func (c *StateController) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SignIn authenticates via the provider, transitioning through
// StateAuthenticating to StateAuthenticated or StateError.
func (c *StateController) SignIn(ctx context.Context) Result {
	c.transition(StateAuthenticating, nil)

	result := c.provider.SignIn(ctx)
	if result.Success && result.Session != nil {
		c.transition(StateAuthenticated, result.Session)
	} else {
		c.transition(StateError, nil)
	}
	return result
}

// SignOut clears the session regardless of provider outcome.
func (c *StateController) SignOut(ctx context.Context) Result {
	result := c.provider.SignOut(ctx)
	c.transition(StateUnauthenticated, nil)
	return result
}

// Refresh renews the session token if it expires within the leeway window.
// A failed refresh demotes the state to unauthenticated: the user must sign
// in again.
func (c *StateController) Refresh(ctx context.Context) Result {
	c.mu.Lock()
	session := c.session
	now := c.now()
	c.mu.Unlock()

	if session == nil {
		c.transition(StateUnauthenticated, nil)
		return Result{Success: false, Error: "no active session"}
	}
	if !session.Token.ExpiresWithin(refreshLeeway, now) {
		// Token still comfortably valid.
		return Result{Success: true, Session: session}
	}

	result := c.provider.Refresh(ctx)
	if result.Success && result.Session != nil {
		c.transition(StateAuthenticated, result.Session)
	} else {
		c.transition(StateUnauthenticated, nil)
	}
	return result
}

// Authenticated reports whether the controller currently holds an
// authenticated session.
func (c *StateController) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateAuthenticated
}

func (c *StateController) transition(state State, session *Session) {
	c.mu.Lock()
	c.state = state
	if session != nil || state == StateUnauthenticated || state == StateError {
		c.session = session
	}
	snap := c.snapshotLocked()
	observers := make([]Observer, 0, len(c.observers))
	for _, obs := range c.observers {
		observers = append(observers, obs)
	}
	c.mu.Unlock()

	for _, obs := range observers {
		obs(snap)
	}
}

func (c *StateController) snapshotLocked() Snapshot {
	snap := Snapshot{State: c.state}
	if c.session != nil {
		user := c.session.User
		snap.User = &user
	}
	return snap
}
