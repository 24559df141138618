// Package web serves N-in-a-row games over WebSockets.
package web

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/twipi/twinrow/match"
)

// GameType is the kind of game a connection starts.
type GameType string

const (
	// VersusAI pits the connecting human against the AI.
	VersusAI GameType = "vs_ai"
	// VersusHuman starts a game others join by its ID.
	VersusHuman GameType = "vs_hum"
	// AIVersusAI has two AIs play while the connecting human watches.
	AIVersusAI GameType = "ai_vs_ai"
)

// Board sizes accepted for new games, in both directions. The win length
// ranges from MinFieldSize to the shorter side.
const (
	MinFieldSize = 3
	MaxFieldSize = 5
)

//go:embed static
var static embed.FS

// Server is the WebSocket game server.
type Server struct {
	lobby    *match.Lobby
	ai       match.AIConfig
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a new server. Human versus human games are kept in lobby
// until their host leaves.
func NewServer(lobby *match.Lobby, ai match.AIConfig, logger *slog.Logger) *Server {
	return &Server{
		lobby:    lobby,
		ai:       ai,
		logger:   logger,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Register registers the server's routes: the browser client at / and the
// game socket at /ws.
func (s *Server) Register(r chi.Router) {
	r.Get("/", serveIndex)
	r.Handle("/static/*", http.FileServer(http.FS(static)))
	r.Get("/ws", s.serveWS)
}

func serveIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, static, "static/index.html")
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		m        *match.Match
		gameType GameType
		gameID   string
	)

	if id := q.Get("game_id"); id != "" {
		var ok bool
		m, ok = s.lobby.Load(id)
		if !ok {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		gameType = VersusHuman
		gameID = id
	} else {
		cfg, gt, err := parseConfig(q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		m, err = match.New(cfg, s.logger)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gameType = gt
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug(
			"failed to upgrade connection",
			"err", err)
		return
	}

	c := newClient(conn, s.logger)
	go func() {
		defer conn.Close()
		if err := writeWithHeartbeat(conn, c.send); err != nil {
			s.logger.Debug(
				"failed to write to websocket",
				"err", err)
		}
	}()
	defer c.close()

	ctx := r.Context()

	if err := s.start(ctx, c, m, gameType, gameID); err != nil {
		c.sendError(err)
	} else {
		s.logger.Debug(
			"websocket joined match",
			"match_id", m.ID(),
			"game_type", gameType,
			"handle", c.handle)

		c.readLoop(ctx)
	}

	if c.handle == "" {
		return
	}
	m.Leave(c.handle)
	if c.handle == match.Host && c.gameID != "" {
		if stored, ok := s.lobby.Load(c.gameID); ok && stored == m {
			s.lobby.Delete(c.gameID)
		}
	}
}

// start joins the client to the match, along with the AIs the game type
// needs. The AIs stop playing once ctx, the connection's context, is done.
func (s *Server) start(ctx context.Context, c *client, m *match.Match, gameType GameType, gameID string) error {
	switch gameType {
	case VersusAI:
		c.join(m, "")
		ai, err := match.NewAI(ctx, m, s.ai, s.logger.With("component", "ai"))
		if err != nil {
			return err
		}
		// The AI moves right away if it starts.
		return ai.Play(ctx)

	case VersusHuman:
		if gameID == "" {
			gameID = m.ID()
			s.lobby.Store(gameID, m)
		}
		c.join(m, gameID)
		return nil

	case AIVersusAI:
		first, err := match.NewAI(ctx, m, s.ai, s.logger.With("component", "ai"))
		if err != nil {
			return err
		}
		if _, err := match.NewAI(ctx, m, s.ai, s.logger.With("component", "ai")); err != nil {
			return err
		}
		c.join(m, "")
		go func() {
			if err := first.Play(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error(
					"AI failed to start the game",
					"match_id", m.ID(),
					"err", err)
			}
		}()
		return nil

	default:
		return fmt.Errorf("unknown game type %q", gameType)
	}
}

// parseConfig reads the match config and game type of a new game. Missing
// parameters default to a Tic-Tac-Toe game against the AI.
func parseConfig(q url.Values) (match.Config, GameType, error) {
	cfg := match.DefaultConfig()

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"field_width", &cfg.Width},
		{"field_height", &cfg.Height},
		{"qty_to_win", &cfg.WinLength},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, "", fmt.Errorf("invalid %s %q: %w", p.name, v, err)
		}
		*p.dst = n
	}

	if v := q.Get("host_char"); v != "" {
		cfg.HostChar = v
	}
	if v := q.Get("start_player_handle"); v != "" {
		cfg.StartHandle = match.Handle(v)
	}

	gameType := VersusAI
	if v := q.Get("game_type"); v != "" {
		gameType = GameType(v)
	}
	switch gameType {
	case VersusAI, VersusHuman, AIVersusAI:
	default:
		return cfg, "", fmt.Errorf("unknown game type %q", gameType)
	}

	if cfg.Width < MinFieldSize || cfg.Width > MaxFieldSize ||
		cfg.Height < MinFieldSize || cfg.Height > MaxFieldSize {
		return cfg, "", fmt.Errorf(
			"field size %dx%d is outside %d..%d",
			cfg.Width, cfg.Height, MinFieldSize, MaxFieldSize)
	}
	if cfg.WinLength < MinFieldSize || cfg.WinLength > min(cfg.Width, cfg.Height) {
		return cfg, "", fmt.Errorf(
			"qty_to_win %d is outside %d..%d",
			cfg.WinLength, MinFieldSize, min(cfg.Width, cfg.Height))
	}

	return cfg, gameType, nil
}
