package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/pflag"
	"github.com/twipi/twinrow/game"
	"github.com/twipi/twinrow/match"
	"github.com/twipi/twinrow/service"
	"github.com/twipi/twinrow/web"
	twicmdhttp "github.com/twipi/twipi/twicmd/http"
	"golang.org/x/sync/errgroup"
	"libdb.so/hserve"
)

var (
	listenAddr = ":8080"
	debug      = false
	depth      = game.DefaultDepth
	thinkTime  = 5 * time.Second
	gameExpiry = 24 * time.Hour
)

func init() {
	pflag.StringVarP(&listenAddr, "listen-addr", "l", listenAddr, "address to listen on")
	pflag.BoolVar(&debug, "debug", debug, "enable debug logging")
	pflag.IntVar(&depth, "depth", depth, "how many moves ahead the AI looks")
	pflag.DurationVar(&thinkTime, "think-time", thinkTime, "maximum time the AI spends on a move, 0 for no limit")
	pflag.DurationVar(&gameExpiry, "game-expiry", gameExpiry, "how long games are kept")
	pflag.Parse()
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	os.Exit(start(ctx, logger))
}

func start(ctx context.Context, logger *slog.Logger) int {
	errg, ctx := errgroup.WithContext(ctx)

	rules := game.DefaultRules()
	rules.Depth = depth
	ai := match.AIConfig{Rules: rules, ThinkTime: thinkTime}

	svcConfig := service.DefaultConfig()
	svcConfig.AI = ai
	svcConfig.GameExpiry = gameExpiry

	svc := service.NewService(svcConfig, logger.With("component", "service"))
	errg.Go(func() error { return svc.Start(ctx) })

	lobby := match.NewLobby(logger.With("component", "lobby"))
	errg.Go(func() error { return lobby.Run(ctx, time.Hour, gameExpiry) })

	handler := twicmdhttp.NewHandler(svc, logger.With("component", "http"))
	errg.Go(func() error {
		<-ctx.Done()
		if err := handler.Close(); err != nil {
			logger.Error(
				"failed to close http service handler",
				"err", err)
		}
		return ctx.Err()
	})

	errg.Go(func() error {
		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.RealIP)
		r.Use(middleware.Recoverer)

		r.Get("/health", healthCheck)
		web.NewServer(lobby, ai, logger.With("component", "web")).Register(r)
		r.Mount("/twicmd", handler)

		logger.Info(
			"listening via HTTP",
			"addr", listenAddr)

		if err := hserve.ListenAndServe(ctx, listenAddr, r); err != nil {
			logger.Error(
				"failed to listen and serve",
				"err", err)
			return err
		}

		return ctx.Err()
	})

	if err := errg.Wait(); err != nil {
		logger.Error(
			"service error",
			"err", err)
		return 1
	}

	return 0
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
