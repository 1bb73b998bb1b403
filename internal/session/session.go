// Package session obtains and persists the TMDB guest session that
// authorizes rating writes.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/vmunix/reelrate/internal/kv"
	"github.com/vmunix/reelrate/internal/tmdb"
	"golang.org/x/sync/singleflight"
)

// DefaultKey is the storage key holding the encoded token.
const DefaultKey = "guestSessionInfo"

// ErrSessionCreation is wrapped by every failure to obtain a new guest session.
var ErrSessionCreation = errors.New("failed to create guest session")

//go:generate mockgen -source=session.go -destination=mocks/mock_session.go -package=mocks

// Creator requests new guest sessions from the catalog.
type Creator interface {
	NewGuestSession(ctx context.Context) (*tmdb.GuestSession, error)
}

// Token is a persisted guest session.
type Token struct {
	ID        string
	ExpiresAt string
}

// Encode serializes the token as "<id>\n<expiresAt>".
func (t Token) Encode() string {
	return t.ID + "\n" + t.ExpiresAt
}

// Decode parses a stored value. An empty value or one without an id
// reports ok=false.
func Decode(value string) (Token, bool) {
	id, expiresAt, _ := strings.Cut(value, "\n")
	if id == "" {
		return Token{}, false
	}
	return Token{ID: id, ExpiresAt: expiresAt}, true
}

// Store hands out the guest session id, creating one on first use.
// Expiry is never checked; a stored token is reused until Invalidate.
type Store struct {
	kv      kv.Store
	key     string
	creator Creator
	log     *slog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	token *Token
}

// NewStore creates a session store. An empty key uses DefaultKey.
func NewStore(store kv.Store, creator Creator, key string, log *slog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		kv:      store,
		key:     key,
		creator: creator,
		log:     log,
	}
}

// ID returns the guest session id.
func (s *Store) ID(ctx context.Context) (string, error) {
	t, err := s.Token(ctx)
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

// Token returns the full guest session token, loading or creating it.
// Concurrent first calls share one storage read and at most one creation.
func (s *Store) Token(ctx context.Context) (Token, error) {
	s.mu.RLock()
	cached := s.token
	s.mu.RUnlock()
	if cached != nil {
		return *cached, nil
	}

	v, err, _ := s.group.Do(s.key, func() (any, error) {
		return s.load(ctx)
	})
	if err != nil {
		return Token{}, err
	}
	return v.(Token), nil
}

func (s *Store) load(ctx context.Context) (Token, error) {
	value, err := s.kv.Get(ctx, s.key)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return Token{}, fmt.Errorf("read session: %w", err)
	}

	if t, ok := Decode(value); ok {
		s.remember(t)
		return t, nil
	}

	sess, err := s.creator.NewGuestSession(ctx)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %w", ErrSessionCreation, err)
	}

	t := Token{ID: sess.ID, ExpiresAt: sess.ExpiresAt}
	if err := s.kv.Set(ctx, s.key, t.Encode()); err != nil {
		return Token{}, fmt.Errorf("persist session: %w", err)
	}
	s.log.Info("guest session created", "expires_at", t.ExpiresAt)

	s.remember(t)
	return t, nil
}

func (s *Store) remember(t Token) {
	s.mu.Lock()
	s.token = &t
	s.mu.Unlock()
}

// Invalidate forgets the stored token so the next call creates a new one.
func (s *Store) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}
