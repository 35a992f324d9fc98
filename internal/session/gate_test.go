package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectsanctuary/sanctuary/internal/auth"
	"github.com/projectsanctuary/sanctuary/internal/migration"
	"github.com/projectsanctuary/sanctuary/internal/storage/local"
)

type stubVerifier map[string]auth.Identity

func (s stubVerifier) Verify(_ context.Context, token string) (auth.Identity, error) {
	id, ok := s[token]
	if !ok {
		return auth.Identity{}, errors.New("token rejected")
	}
	return id, nil
}

type fakeMigrator struct {
	mu      sync.Mutex
	offer   bool
	pending bool
	calls   []string
	accept  error
}

func (f *fakeMigrator) ShouldOffer(_ context.Context, owner string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "offer:"+owner)
	f.pending = f.offer && owner != ""
	return f.pending, nil
}

func (f *fakeMigrator) Accept(_ context.Context, owner string) (migration.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "accept:"+owner)
	if f.accept != nil {
		return migration.Result{}, f.accept
	}
	f.pending = false
	return migration.Result{Projects: 1}, nil
}

func (f *fakeMigrator) Skip(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "skip")
	f.pending = false
	return nil
}

func (f *fakeMigrator) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

func openStore(t *testing.T) *local.Store {
	t.Helper()
	s, err := local.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGate_SignInOut(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	mig := &fakeMigrator{offer: true}
	g := NewGate(Options{
		State:     store,
		Verifier:  stubVerifier{"tok": {UID: "u1", Email: "u1@example.com"}},
		Migration: mig,
		DeviceID:  "laptop",
	})

	var changes []Change
	g.OnChange(func(_ context.Context, c Change) { changes = append(changes, c) })

	require.NoError(t, g.Start(ctx))
	assert.Empty(t, g.OwnerID())
	require.Len(t, changes, 1)
	assert.False(t, changes[0].SignedIn)

	_, err := g.SignIn(ctx, "")
	assert.ErrorIs(t, err, ErrTokenMissing)
	_, err = g.SignIn(ctx, "forged")
	assert.Error(t, err)
	assert.Empty(t, g.OwnerID())

	s, err := g.SignIn(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.OwnerID)
	assert.Equal(t, "u1", g.OwnerID())
	assert.True(t, g.MigrationOffered())
	assert.Equal(t, Change{SignedIn: true, OwnerID: "u1"}, changes[len(changes)-1])

	res, err := g.AcceptMigration(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Projects)
	assert.False(t, g.MigrationOffered())

	require.NoError(t, g.SignOut(ctx))
	assert.Empty(t, g.OwnerID())
	_, ok := g.Current()
	assert.False(t, ok)
	assert.False(t, changes[len(changes)-1].SignedIn)

	_, err = g.AcceptMigration(ctx)
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.ErrorIs(t, g.SkipMigration(ctx), ErrNotSignedIn)

	assert.Equal(t, []string{"offer:u1", "accept:u1"}, mig.calls)
}

func TestGate_RestoresPersistedSession(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	require.NoError(t, store.SetJSON(ctx, local.KeySession, Session{OwnerID: "u9", SignedInAt: time.Now().UTC()}))

	mig := &fakeMigrator{offer: true}
	g := NewGate(Options{State: store, Migration: mig})
	require.NoError(t, g.Start(ctx))

	assert.Equal(t, "u9", g.OwnerID())
	assert.True(t, g.MigrationOffered())
	assert.Equal(t, []string{"offer:u9"}, mig.calls)
}

func TestGate_FailedAcceptKeepsOffer(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	mig := &fakeMigrator{offer: true, accept: migration.ErrIncomplete}
	g := NewGate(Options{State: store, Verifier: stubVerifier{"tok": {UID: "u1"}}, Migration: mig})

	reloads := 0
	g.OnChange(func(context.Context, Change) { reloads++ })

	_, err := g.SignIn(ctx, "tok")
	require.NoError(t, err)
	before := reloads

	_, err = g.AcceptMigration(ctx)
	assert.ErrorIs(t, err, migration.ErrIncomplete)
	assert.True(t, g.MigrationOffered())
	assert.Equal(t, before, reloads, "no reload after a failed migration")
}

func TestGate_EvaluationLatch(t *testing.T) {
	ctx := context.Background()
	mig := &fakeMigrator{offer: true}
	g := NewGate(Options{State: openStore(t), Migration: mig})
	g.set(&Session{OwnerID: "u1"})

	g.evaluating.Store(true)
	g.evaluateMigration(ctx)
	assert.Empty(t, mig.calls, "evaluation in flight drops the second one")

	g.evaluating.Store(false)
	g.evaluateMigration(ctx)
	assert.Equal(t, []string{"offer:u1"}, mig.calls)
}

func TestGate_RedisEvents(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	newClient := func() *redis.Client {
		c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { c.Close() })
		return c
	}

	verifier := stubVerifier{"tok": {UID: "u1"}}
	daemon := NewGate(Options{
		State:     openStore(t),
		Verifier:  verifier,
		Migration: &fakeMigrator{},
		Bus:       NewRedisBus(newClient(), "sanctuary:auth"),
		DeviceID:  "daemon",
	})

	changed := make(chan Change, 4)
	daemon.OnChange(func(_ context.Context, c Change) { changed <- c })
	require.NoError(t, daemon.Start(ctx))
	defer daemon.Close()
	<-changed

	cli := NewGate(Options{
		State:    openStore(t),
		Verifier: verifier,
		Bus:      NewRedisBus(newClient(), "sanctuary:auth"),
		DeviceID: "cli",
	})

	_, err := cli.SignIn(ctx, "tok")
	require.NoError(t, err)

	select {
	case c := <-changed:
		assert.Equal(t, Change{SignedIn: true, OwnerID: "u1"}, c)
	case <-time.After(2 * time.Second):
		t.Fatal("daemon never saw the sign-in")
	}
	assert.Equal(t, "u1", daemon.OwnerID())

	require.NoError(t, cli.SignOut(ctx))
	select {
	case c := <-changed:
		assert.False(t, c.SignedIn)
	case <-time.After(2 * time.Second):
		t.Fatal("daemon never saw the sign-out")
	}
}

func TestRedisBus_CloseWithoutReader(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	bus := NewRedisBus(client, "ch")
	events, closeFn, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		require.NoError(t, bus.Publish(ctx, Event{Type: EventSignedIn, Origin: "other"}))
	}
	require.Eventually(t, func() bool { return len(events) == cap(events) }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, closeFn())
	require.NoError(t, closeFn())
	time.Sleep(50 * time.Millisecond)

	// Only the buffered events arrive; the pending send was abandoned.
	received := 0
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				assert.Equal(t, cap(events), received)
				return
			}
			received++
		case <-timeout:
			t.Fatalf("event channel not closed after %d events", received)
		}
	}
}

func TestRedisBus_DropsOwnEvents(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	g := NewGate(Options{State: openStore(t), Verifier: stubVerifier{"tok": {UID: "u1"}}})
	g.handle(ctx, Event{Type: EventSignedIn, Origin: g.origin, IDToken: "tok"})
	assert.Empty(t, g.OwnerID())

	g.handle(ctx, Event{Type: EventSignedIn, Origin: "elsewhere", IDToken: "tok"})
	assert.Equal(t, "u1", g.OwnerID())

	bus := NewRedisBus(client, "ch")
	events, closeFn, err := bus.Subscribe(ctx)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, Event{Type: EventSignedOut, Origin: "x"}))
	select {
	case ev := <-events:
		assert.Equal(t, EventSignedOut, ev.Type)
		assert.False(t, ev.At.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
	}
	require.NoError(t, closeFn())
}
