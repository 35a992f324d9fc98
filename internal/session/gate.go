// Package session tracks who is signed in on this device and decides, on every
// transition into signed-in, whether the device's local data should be offered
// for migration.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/projectsanctuary/sanctuary/internal/auth"
	"github.com/projectsanctuary/sanctuary/internal/logging"
	"github.com/projectsanctuary/sanctuary/internal/migration"
	"github.com/projectsanctuary/sanctuary/internal/storage/local"
)

var (
	ErrNotSignedIn  = errors.New("not signed in")
	ErrTokenMissing = errors.New("id token is required")
)

// Session is the persisted sign-in of this device.
type Session struct {
	OwnerID    string    `json:"uid"`
	Email      string    `json:"email,omitempty"`
	SignedInAt time.Time `json:"signed_in_at"`
}

// Change is handed to OnChange listeners after every transition.
type Change struct {
	SignedIn bool
	OwnerID  string
}

type StateStore interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
	Remove(ctx context.Context, keys ...string) error
}

// Migrator is the migration protocol as the gate drives it.
type Migrator interface {
	ShouldOffer(ctx context.Context, owner string) (bool, error)
	Accept(ctx context.Context, owner string) (migration.Result, error)
	Skip(ctx context.Context) error
	Pending() bool
}

type Options struct {
	State     StateStore
	Verifier  auth.TokenVerifier
	Migration Migrator
	// Bus is optional; without it only in-process sign-ins are seen.
	Bus      Bus
	DeviceID string
}

// Gate is the single source of truth for the device's identity. It is
// constructed once at startup and handed to whatever needs the owner.
type Gate struct {
	opts   Options
	origin string

	mu        sync.RWMutex
	current   *Session
	listeners []func(context.Context, Change)

	evaluating atomic.Bool

	stop    context.CancelFunc
	done    chan struct{}
	closeFn func() error
}

func NewGate(opts Options) *Gate {
	return &Gate{
		opts:   opts,
		origin: opts.DeviceID + "/" + uuid.NewString(),
	}
}

// OnChange registers fn to run after every sign-in or sign-out. Register before Start.
func (g *Gate) OnChange(fn func(context.Context, Change)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

// OwnerID returns the signed-in owner or "".
func (g *Gate) OwnerID() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == nil {
		return ""
	}
	return g.current.OwnerID
}

func (g *Gate) Current() (Session, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == nil {
		return Session{}, false
	}
	return *g.current, true
}

// MigrationOffered reports whether a migration offer is waiting for an answer.
func (g *Gate) MigrationOffered() bool {
	return g.opts.Migration != nil && g.opts.Migration.Pending()
}

// Restore loads the persisted session, evaluates migration for it and notifies
// listeners once, signed in or not.
func (g *Gate) Restore(ctx context.Context) error {
	var s Session
	ok, err := g.opts.State.GetJSON(ctx, local.KeySession, &s)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if ok && s.OwnerID != "" {
		g.set(&s)
		g.evaluateMigration(ctx)
	}
	g.notify(ctx)
	return nil
}

// Start restores the session and starts listening for auth events from other
// processes.
func (g *Gate) Start(ctx context.Context) error {
	if err := g.Restore(ctx); err != nil {
		return err
	}
	if g.opts.Bus == nil {
		return nil
	}
	events, closeFn, err := g.opts.Bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	lctx, cancel := context.WithCancel(context.Background())
	g.stop = cancel
	g.closeFn = closeFn
	g.done = make(chan struct{})
	go g.listen(lctx, events)
	return nil
}

func (g *Gate) listen(ctx context.Context, events <-chan Event) {
	defer close(g.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			g.handle(ctx, ev)
		}
	}
}

func (g *Gate) handle(ctx context.Context, ev Event) {
	if ev.Origin == g.origin {
		return
	}
	log := logging.NewLogger(ctx)
	switch ev.Type {
	case EventSignedIn:
		if _, err := g.signIn(ctx, ev.IDToken); err != nil {
			log.LogError("session.event.sign_in", err)
		}
	case EventSignedOut:
		if err := g.signOut(ctx); err != nil {
			log.LogError("session.event.sign_out", err)
		}
	default:
		log.LogWarnf("session.event", "ignoring event type=%s origin=%s", ev.Type, ev.Origin)
	}
}

// SignIn verifies idToken, persists the session, evaluates migration and tells
// other processes. MigrationOffered has the outcome.
func (g *Gate) SignIn(ctx context.Context, idToken string) (Session, error) {
	s, err := g.signIn(ctx, idToken)
	if err != nil {
		return Session{}, err
	}
	g.publish(ctx, Event{Type: EventSignedIn, IDToken: idToken})
	return s, nil
}

func (g *Gate) signIn(ctx context.Context, idToken string) (Session, error) {
	if idToken == "" {
		return Session{}, ErrTokenMissing
	}
	if g.opts.Verifier == nil {
		return Session{}, errors.New("sign-in is not configured")
	}
	id, err := g.opts.Verifier.Verify(ctx, idToken)
	if err != nil {
		return Session{}, err
	}

	s := Session{OwnerID: id.UID, Email: id.Email, SignedInAt: time.Now().UTC()}
	if err := g.opts.State.SetJSON(ctx, local.KeySession, s); err != nil {
		return Session{}, fmt.Errorf("persist session: %w", err)
	}
	g.set(&s)
	g.evaluateMigration(ctx)
	g.notify(ctx)
	return s, nil
}

// SignOut forgets the session. Hosted data stays where it is.
func (g *Gate) SignOut(ctx context.Context) error {
	if err := g.signOut(ctx); err != nil {
		return err
	}
	g.publish(ctx, Event{Type: EventSignedOut})
	return nil
}

func (g *Gate) signOut(ctx context.Context) error {
	if err := g.opts.State.Remove(ctx, local.KeySession); err != nil {
		return fmt.Errorf("forget session: %w", err)
	}
	g.set(nil)
	g.notify(ctx)
	return nil
}

// AcceptMigration runs the migration for the signed-in owner and reloads on success.
func (g *Gate) AcceptMigration(ctx context.Context) (migration.Result, error) {
	owner := g.OwnerID()
	if owner == "" {
		return migration.Result{}, ErrNotSignedIn
	}
	res, err := g.opts.Migration.Accept(ctx, owner)
	if err != nil {
		return res, err
	}
	g.notify(ctx)
	return res, nil
}

func (g *Gate) SkipMigration(ctx context.Context) error {
	if g.OwnerID() == "" {
		return ErrNotSignedIn
	}
	return g.opts.Migration.Skip(ctx)
}

// evaluateMigration asks the protocol whether to offer. A call made while
// another evaluation is running is dropped.
func (g *Gate) evaluateMigration(ctx context.Context) {
	if g.opts.Migration == nil {
		return
	}
	if !g.evaluating.CompareAndSwap(false, true) {
		return
	}
	defer g.evaluating.Store(false)

	owner := g.OwnerID()
	offered, err := g.opts.Migration.ShouldOffer(ctx, owner)
	if err != nil {
		logging.NewLogger(ctx).LogError("session.migration", err)
		return
	}
	if offered {
		logging.NewLogger(ctx).LogInfof("session.migration", "offering migration to owner=%s", owner)
	}
}

func (g *Gate) set(s *Session) {
	g.mu.Lock()
	g.current = s
	g.mu.Unlock()
}

func (g *Gate) notify(ctx context.Context) {
	g.mu.RLock()
	ch := Change{SignedIn: g.current != nil}
	if g.current != nil {
		ch.OwnerID = g.current.OwnerID
	}
	listeners := append([]func(context.Context, Change){}, g.listeners...)
	g.mu.RUnlock()

	for _, fn := range listeners {
		fn(ctx, ch)
	}
}

func (g *Gate) publish(ctx context.Context, ev Event) {
	if g.opts.Bus == nil {
		return
	}
	ev.Origin = g.origin
	if err := g.opts.Bus.Publish(ctx, ev); err != nil {
		logging.NewLogger(ctx).LogError("session.publish", err)
	}
}

// Close stops the event listener.
func (g *Gate) Close() error {
	if g.stop == nil {
		return nil
	}
	g.stop()
	var err error
	if g.closeFn != nil {
		err = g.closeFn()
	}
	<-g.done
	return err
}
