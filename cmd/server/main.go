package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/sketchboard/internal/auth"
	"github.com/inamate/sketchboard/internal/board"
	"github.com/inamate/sketchboard/internal/collab"
	"github.com/inamate/sketchboard/internal/config"
	"github.com/inamate/sketchboard/internal/export"
	"github.com/inamate/sketchboard/internal/history"
	mw "github.com/inamate/sketchboard/internal/middleware"
	"github.com/inamate/sketchboard/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots, closeStore, err := openStore(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	authService := auth.NewService(cfg.JWTSecret, cfg.EditorPassphraseHash)
	authHandler := auth.NewHandler(authService)
	if authService.Open() {
		slog.Warn("EDITOR_PASSPHRASE_HASH not set, anyone can edit")
	}

	boards := board.NewService(snapshots, board.WithHistoryLimit(cfg.HistoryLimit))
	hub := collab.NewHub(boards)
	boards.OnChange(func(boardID string, ev history.Event, data []byte) {
		msg, err := collab.NewDocChanged(ev.Kind.String(), ev.Description, data)
		if err != nil {
			slog.Error("build doc.changed", "board", boardID, "error", err)
			return
		}
		hub.Broadcast(boardID, msg, "")
	})
	go hub.Run()
	go boards.Autosave(ctx, cfg.AutosaveInterval)

	boardHandler := board.NewHandler(boards)
	exportHandler := export.NewHandler(boards)

	r := mux.NewRouter()

	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Auth routes (public)
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)
	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	boardHandler.Register(api)
	api.HandleFunc("/boards/{boardId}/export.svg", exportHandler.ExportSVG).Methods("GET")

	r.HandleFunc("/ws/board/{boardId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, boards, authService, cfg.Origins())
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	hub.Stop()
	cancel()

	slog.Info("saving all boards...")
	saveCtx, saveCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer saveCancel()
	if err := boards.SaveAll(saveCtx); err != nil {
		slog.Error("save boards", "error", err)
	}
}

// openStore picks Postgres when databaseURL is set and memory otherwise.
func openStore(ctx context.Context, databaseURL string) (store.Store, func(), error) {
	if databaseURL == "" {
		slog.Warn("DATABASE_URL not set, snapshots are kept in memory")
		return store.NewMemoryStore(), func() {}, nil
	}

	pool, err := store.NewPool(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}
	pg, err := store.NewPGStore(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pg, pool.Close, nil
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, boards *board.Service, authSvc *auth.Service, origins []string) {
	boardID := mux.Vars(r)["boardId"]

	var user auth.User
	if token := r.URL.Query().Get("token"); token != "" {
		var err error
		user, err = authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
	} else if authSvc.Open() {
		user = auth.User{ID: "anon-" + uuid.New().String()[:8], DisplayName: "Anonymous"}
	} else {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	if _, err := boards.Get(r.Context(), boardID); err != nil {
		if errors.Is(err, board.ErrNotFound) {
			http.Error(w, "board not found", http.StatusNotFound)
			return
		}
		slog.Error("load board", "board", boardID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	hub.Serve(w, r, boardID, user.ID, user.DisplayName, originHosts(origins))
}

// originHosts turns allowed origins into the host patterns the websocket
// upgrade matches against.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
		}
	}
	return hosts
}
