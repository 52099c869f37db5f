package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/danielhkuo/lunchpick/auth"
	"github.com/danielhkuo/lunchpick/cliparse"
	"github.com/danielhkuo/lunchpick/db"
	"github.com/danielhkuo/lunchpick/middleware"
	"github.com/danielhkuo/lunchpick/ordering"
	"github.com/danielhkuo/lunchpick/profiles"
	"github.com/danielhkuo/lunchpick/router"
	"github.com/danielhkuo/lunchpick/schedule"
	"github.com/danielhkuo/lunchpick/voting"
)

func setupLogging() {
	var handler slog.Handler
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		handler = slog.NewTextHandler(os.Stdout, nil)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}

// issueToken implements `lunchpick token -sub <user id>`
func issueToken(args []string) error {
	cfg, err := cliparse.ParseTokenFlags(args)
	if err != nil {
		return err
	}

	authority, err := auth.NewTokenAuthority(cfg.JWTSecret, cfg.TTL)
	if err != nil {
		return err
	}

	token, err := authority.Issue(auth.Identity{ID: cfg.UserID, DisplayName: cfg.Name})
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}

// setAdmin implements `lunchpick admin -sub <user id> [-revoke]`
func setAdmin(args []string) error {
	cfg, err := cliparse.ParseAdminFlags(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		return err
	}
	defer store.Close()

	profile, err := profiles.NewService(store, schedule.SystemClock{}).SetAdmin(ctx, cfg.UserID, !cfg.Revoke)
	if err != nil {
		return err
	}

	slog.Info("Admin flag updated", "user_id", profile.UserID, "is_admin", profile.IsAdmin)
	return nil
}

func main() {
	var err error

	setupLogging()

	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := issueToken(os.Args[2:]); err != nil {
			slog.Error("Error issuing token", "error", err)
			os.Exit(1)
		}
		return
	}

	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := setAdmin(os.Args[2:]); err != nil {
			slog.Error("Error updating admin flag", "error", err)
			os.Exit(1)
		}
		return
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect and create schema (tables or indexes)
	store, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Database ready", "type", cfg.DatabaseType)

	authority, err := auth.NewTokenAuthority(cfg.JWTSecret, auth.DefaultTokenTTL)
	if err != nil {
		slog.Error("token authority setup failed", "error", err)
		os.Exit(1)
	}

	clock := schedule.SystemClock{}
	people := profiles.NewService(store, clock)
	votes := voting.NewEngine(store, clock, cfg.Window, slog.Default())
	orders := ordering.NewEngine(store, clock, cfg.Window, votes, people, slog.Default())

	// Purge stale candidates at midnight and announce the winner at the deadline
	scheduler := &schedule.Scheduler{
		Clock:  clock,
		Window: cfg.Window,
		OnOpen: func(ctx context.Context, day string) error {
			_, err := votes.PurgeCandidates(ctx, day)
			return err
		},
		OnClose: func(ctx context.Context, day string) error {
			winner, ok, err := votes.WinnerOf(ctx, day)
			if err != nil {
				return err
			}
			if !ok {
				slog.Info("voting closed without votes", "day", day)
				return nil
			}
			slog.Info("voting closed", "day", day, "winner", winner.Name, "votes", winner.Votes)
			return nil
		},
	}
	go scheduler.Run(ctx)

	// Create router
	mux := router.NewRouter(router.Deps{
		Profiles: people,
		Voting:   votes,
		Ordering: orders,
		Tokens:   authority,
	})

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		cancel()
		server.Close()
	}()

	// Start server
	slog.Info("Listening",
		"port", cfg.Port,
		"deadline", fmt.Sprintf("%02d:%02d", cfg.Window.DeadlineHour, cfg.Window.DeadlineMinute),
		"timezone", cfg.Window.Location.String(),
	)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
