package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/spendsense/spendsense/internal/auth"
	"github.com/spendsense/spendsense/internal/config"
	"github.com/spendsense/spendsense/internal/database"
	"github.com/spendsense/spendsense/internal/group"
	groupStore "github.com/spendsense/spendsense/internal/group/store"
	"github.com/spendsense/spendsense/internal/history"
	spendHttp "github.com/spendsense/spendsense/internal/http"
	authHandler "github.com/spendsense/spendsense/internal/http/auth"
	groupHandler "github.com/spendsense/spendsense/internal/http/group"
	historyHandler "github.com/spendsense/spendsense/internal/http/history"
	postHandler "github.com/spendsense/spendsense/internal/http/post"
	savingsHandler "github.com/spendsense/spendsense/internal/http/savings"
	similarityHandler "github.com/spendsense/spendsense/internal/http/similarity"
	"github.com/spendsense/spendsense/internal/images"
	"github.com/spendsense/spendsense/internal/notify"
	"github.com/spendsense/spendsense/internal/post"
	postStore "github.com/spendsense/spendsense/internal/post/store"
	"github.com/spendsense/spendsense/internal/savings"
	savingsStore "github.com/spendsense/spendsense/internal/savings/store"
	"github.com/spendsense/spendsense/internal/user"
	userStore "github.com/spendsense/spendsense/internal/user/store"
)

const sweepInterval = time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	imageStore, err := images.NewStore(cfg.Uploads.Dir)
	if err != nil {
		slog.Error("failed to prepare upload directory", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	var (
		userService    = user.NewService(userStore.New(db))
		groupService   = group.NewService(groupStore.New(db))
		savingsService = savings.NewService(savingsStore.New(db))
		postsRepo      = postStore.New(db)
		notifyService  = notify.NewService(notify.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			AppName:  cfg.App.Name,
		}, groupService, userService)
		postService    = post.NewService(postsRepo, savingsService, notifyService, cfg.Similarity.CreateThreshold)
		historyService = history.NewService(postsRepo)
	)

	var (
		authH       = authHandler.NewHandler(userService, tokens, imageStore)
		groupH      = groupHandler.NewHandler(groupService, imageStore)
		postH       = postHandler.NewHandler(postService, groupService, imageStore)
		savingsH    = savingsHandler.NewHandler(savingsService)
		historyH    = historyHandler.NewHandler(historyService, groupService)
		similarityH = similarityHandler.NewHandler(postService)
	)

	router := spendHttp.New(tokens, authH, groupH, postH, savingsH, historyH, similarityH)

	go sweepDeadlines(postService)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// sweepDeadlines closes overdue posts and records closing-soon notices so
// deadlines fire even when nobody is reading the feed.
func sweepDeadlines(svc *post.Service) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

		if err := svc.SweepDeadlines(ctx, time.Now().UTC()); err != nil {
			slog.Error("deadline sweep failed", "error", err)
		}

		cancel()
	}
}
