package match

import (
	"context"
	"log/slog"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// Lobby holds running matches by key.
type Lobby struct {
	matches *xsync.MapOf[string, *Match]
	logger  *slog.Logger
}

// NewLobby creates an empty lobby.
func NewLobby(logger *slog.Logger) *Lobby {
	return &Lobby{
		matches: xsync.NewMapOf[string, *Match](),
		logger:  logger,
	}
}

// Store stores the match under key and returns true if it replaced another.
func (l *Lobby) Store(key string, m *Match) (overridden bool) {
	_, overridden = l.matches.LoadAndStore(key, m)
	return overridden
}

// Load returns the match stored under key.
func (l *Lobby) Load(key string) (*Match, bool) {
	return l.matches.Load(key)
}

// Delete removes the match stored under key.
func (l *Lobby) Delete(key string) {
	l.matches.Delete(key)
}

// Len returns the number of matches.
func (l *Lobby) Len() int {
	return l.matches.Size()
}

// Expire removes the matches created more than ttl before now and returns
// how many were removed.
func (l *Lobby) Expire(now time.Time, ttl time.Duration) int {
	var n int
	l.matches.Range(func(key string, m *Match) bool {
		if m.CreatedAt().Add(ttl).Before(now) {
			l.logger.Debug(
				"match expired, deleting",
				"key", key,
				"match_id", m.ID(),
				"created_at", m.CreatedAt())
			l.matches.Delete(key)
			n++
		}
		return true
	})
	return n
}

// Run expires matches older than ttl every interval until ctx is done.
func (l *Lobby) Run(ctx context.Context, interval, ttl time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case now := <-ticker.C:
			// clean up
			l.Expire(now, ttl)
		}
	}
}
