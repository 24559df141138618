package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "embed"

	"github.com/twipi/pubsub"
	"github.com/twipi/twinrow/game"
	"github.com/twipi/twinrow/match"
	"github.com/twipi/twipi/proto/out/twicmdproto"
	"github.com/twipi/twipi/proto/out/twismsproto"
	"github.com/twipi/twipi/twicmd"
	"github.com/twipi/twipi/twisms"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/encoding/prototext"
)

//go:embed service.txtpb
var servicePrototext []byte

var service = (func() *twicmdproto.Service {
	service := new(twicmdproto.Service)
	if err := prototext.Unmarshal(servicePrototext, service); err != nil {
		panic(fmt.Sprintf("failed to unmarshal service proto: %v", err))
	}
	return service
})()

// Config configures the service.
type Config struct {
	// AI configures the AI every game is played against.
	AI match.AIConfig
	// GameExpiry is how long a game is kept after it started.
	GameExpiry time.Duration
}

// DefaultConfig returns the default service config.
func DefaultConfig() Config {
	return Config{
		AI:         match.AIConfig{Rules: game.DefaultRules()},
		GameExpiry: 24 * time.Hour,
	}
}

// Service is the main running N-in-a-row Twicmd service. Every phone number
// plays its own Tic-Tac-Toe game against the AI.
type Service struct {
	sendCh  chan *twismsproto.Message
	sendSub pubsub.Subscriber[*twismsproto.Message]
	games   *match.Lobby
	config  Config
	logger  *slog.Logger

	// aiCtx bounds the AIs' searches. It is canceled once Start returns.
	aiCtx    context.Context
	aiCancel context.CancelFunc
}

var (
	_ twicmd.Service           = (*Service)(nil)
	_ twisms.MessageSubscriber = (*Service)(nil)
)

// NewService creates a new service. Start it with [Service.Start].
func NewService(config Config, logger *slog.Logger) *Service {
	aiCtx, aiCancel := context.WithCancel(context.Background())
	return &Service{
		sendCh:   make(chan *twismsproto.Message),
		games:    match.NewLobby(logger.With("component", "lobby")),
		config:   config,
		logger:   logger,
		aiCtx:    aiCtx,
		aiCancel: aiCancel,
	}
}

// Name implements [twicmd.Service].
func (s *Service) Name() string {
	return service.Name
}

// Service implements [twicmd.Service].
func (s *Service) Service(ctx context.Context) (*twicmdproto.Service, error) {
	return service, nil
}

// Execute implements [twicmd.Service].
func (s *Service) Execute(ctx context.Context, req *twicmdproto.ExecuteRequest) (*twicmdproto.ExecuteResponse, error) {
	switch req.Command.Command {
	case "start":
		s.logger.Debug(
			"starting new game",
			"phone_number", req.Message.From)

		m, err := match.New(match.DefaultConfig(), s.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create match: %w", err)
		}

		m.Join(&smsPlayer{send: s.sendCh, reply: req.Message})
		if _, err := match.NewAI(s.aiCtx, m, s.config.AI, s.logger.With("component", "ai")); err != nil {
			return nil, fmt.Errorf("failed to add AI: %w", err)
		}

		if s.games.Store(req.Message.From, m) {
			s.sendCh <- twisms.NewReplyingMessage(req.Message, textBody(
				"An existing game was overridden. A new game has started. It is now your turn.",
			))
		} else {
			s.sendCh <- twisms.NewReplyingMessage(req.Message, textBody(
				"A new game has started. It is now your turn.",
			))
		}

		s.sendCh <- twisms.NewReplyingMessage(req.Message, drawBoardMessage("", m.State()))
		return nil, nil

	case "place":
		args := twicmd.MapArguments(req.Command.Arguments)
		s.logger.Debug(
			"placing piece",
			"phone_number", req.Message.From,
			"position", args["position"])

		m, ok := s.games.Load(req.Message.From)
		if !ok {
			return twicmd.StatusResponse("No game found. Please start a new game."), nil
		}

		if p, ok := m.Participant(match.Host); ok {
			if p, ok := p.(*smsPlayer); ok {
				p.setReply(req.Message)
			}
		}

		state := m.State()
		pos, ok := positionFromIndex(args["position"], state)
		if !ok {
			return twicmd.StatusResponse(fmt.Sprintf(
				"Invalid position. Please provide a number between 1 and %d.",
				state.Width()*state.Height())), nil
		}

		if err := m.Perform(match.Host, pos.X, pos.Y); err != nil {
			var occupied *game.OccupiedCellError
			switch {
			case errors.Is(err, match.ErrGameOver):
				return twicmd.StatusResponse("The game is over. Please start a new game."), nil
			case errors.As(err, &occupied):
				return twicmd.StatusResponse("Invalid move. Please try again."), nil
			default:
				return nil, fmt.Errorf("failed to place piece: %w", err)
			}
		}

		// The AI has already replied by the time Perform returns.
		if state := m.State(); state.IsTerminal() {
			return twicmd.TextResponse(gameOverMessage(state.Outcome())), nil
		}

		return nil, nil

	default:
		return nil, fmt.Errorf("unknown command: %q", req.Command.Command)
	}
}

// positionFromIndex parses a 1-based cell index counted in reading order.
func positionFromIndex(arg string, state *game.State) (game.Pos, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > state.Width()*state.Height() {
		return game.Pos{}, false
	}
	n--
	return game.Pos{X: n % state.Width(), Y: n / state.Width()}, true
}

var markUnicode = map[game.Mark]string{
	game.Host:     "❌",
	game.Opponent: "⚫",
	game.Empty:    "⬜",
}

func textBody(text string) *twismsproto.MessageBody {
	return &twismsproto.MessageBody{
		Text: &twismsproto.TextBody{Text: text},
	}
}

func gameOverMessage(outcome game.Mark) string {
	if outcome == game.Draw {
		return "The game is over. It's a draw!"
	}
	return fmt.Sprintf("The game is over. %s wins!", markUnicode[outcome])
}

func drawBoardMessage(prefix string, state *game.State) *twismsproto.MessageBody {
	var s strings.Builder
	if prefix != "" {
		s.WriteString(prefix)
		s.WriteString("\n\n")
	}
	for y := range state.Height() {
		for x := range state.Width() {
			s.WriteString(markUnicode[state.At(x, y)])
		}
		s.WriteString("\n")
	}
	s.WriteString("❌ is your piece.\n")
	s.WriteString("⚫ is the AI's piece.")
	return textBody(s.String())
}

// smsPlayer is the human side of a game. It texts the board back after
// every move.
type smsPlayer struct {
	send chan<- *twismsproto.Message

	mu    sync.Mutex
	reply *twismsproto.Message
}

func (p *smsPlayer) setReply(msg *twismsproto.Message) {
	p.mu.Lock()
	p.reply = msg
	p.mu.Unlock()
}

// Notify implements [match.Participant].
func (p *smsPlayer) Notify(ev match.Event) {
	if ev.Kind != match.EventMove {
		return
	}

	p.mu.Lock()
	reply := p.reply
	p.mu.Unlock()

	prefix := "You just placed:"
	if ev.Handle != match.Host {
		prefix = "In return, the AI placed:"
	}
	p.send <- twisms.NewReplyingMessage(reply, drawBoardMessage(prefix, ev.State))
}

// Start sends the replies and expires old games until ctx is done.
func (s *Service) Start(ctx context.Context) error {
	defer s.aiCancel()

	errg, ctx := errgroup.WithContext(ctx)

	errg.Go(func() error {
		return s.sendSub.Listen(ctx, s.sendCh)
	})

	errg.Go(func() error {
		return s.games.Run(ctx, 4*time.Hour, s.config.GameExpiry)
	})

	return errg.Wait()
}

// SubscribeMessages implements [twisms.MessageSubscriber].
func (s *Service) SubscribeMessages(ch chan<- *twismsproto.Message, filters *twismsproto.MessageFilters) {
	s.sendSub.Subscribe(ch, func(msg *twismsproto.Message) bool {
		return twisms.FilterMessage(filters, msg)
	})
}

// UnsubscribeMessages implements [twisms.MessageSubscriber].
func (s *Service) UnsubscribeMessages(ch chan<- *twismsproto.Message) {
	s.sendSub.Unsubscribe(ch)
}
