package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/gogpu/gg"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/transformer/internal/auth"
	"github.com/inamate/transformer/internal/collab"
	"github.com/inamate/transformer/internal/config"
	"github.com/inamate/transformer/internal/document"
	"github.com/inamate/transformer/internal/editor"
	mw "github.com/inamate/transformer/internal/middleware"
	"github.com/inamate/transformer/internal/project"
	"github.com/inamate/transformer/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	gg.SetLogger(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Without a database, documents live as long as their room.
	var (
		loader    collab.DocumentLoader
		saver     collab.DocumentSaver
		snapshots project.Snapshots
	)
	if cfg.DatabaseURL != "" {
		pool, err := store.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		st := store.New(pool)
		if err := st.Migrate(ctx); err != nil {
			slog.Error("migrate database", "error", err)
			os.Exit(1)
		}
		loader = func(projectID string) (*document.InDocument, error) {
			doc, err := st.LoadDocument(projectID)
			if errors.Is(err, store.ErrNotFound) {
				return nil, nil
			}
			return doc, err
		}
		saver = st.SaveDocument
		snapshots = st
	} else {
		slog.Warn("DATABASE_URL not set, documents are not persisted")
	}

	hub := collab.NewHub(loader, saver, editor.Options{
		CenteredScaling:    cfg.CenteredScaling,
		MinClipSize:        cfg.MinClipSize,
		RotateHandleOffset: cfg.RotateHandleOffset,
		Logger:             logger,
	})
	go hub.Run()

	authService := auth.NewService(cfg.JWTSecret, cfg.AccessKeyHash)
	authHandler := auth.NewHandler(authService)

	projectService := project.NewService(hub, snapshots, cfg.PreviewScale)
	projectHandler := project.NewHandler(projectService)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/auth/token", authHandler.Token).Methods("POST", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/projects", projectHandler.Create).Methods("POST")
	api.HandleFunc("/projects/{projectId}/document", projectHandler.Document).Methods("GET")
	api.HandleFunc("/projects/{projectId}/gizmo", projectHandler.Gizmo).Methods("GET")
	api.HandleFunc("/projects/{projectId}/preview.png", projectHandler.Preview).Methods("GET")
	api.HandleFunc("/projects/{projectId}/snapshots/latest", projectHandler.GetLatestSnapshot).Methods("GET")

	// WebSocket endpoint
	originHosts := cfg.OriginHosts()
	r.HandleFunc("/ws/project/{projectId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, originHosts)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first to save all dirty documents
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "persistent", cfg.DatabaseURL != "")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, originHosts []string) {
	projectID := mux.Vars(r)["projectId"]
	if err := project.ValidateID(projectID); err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	var userID, displayName string

	// Playground project allows anonymous access
	if projectID == project.PlaygroundID {
		userID = "anon-" + uuid.New().String()[:8]
		displayName = "Anonymous"
	} else {
		// Auth via query param for real projects
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		user, err := authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		userID, displayName = user.ID, user.DisplayName
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originHosts,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := collab.NewClient(hub, conn, userID, displayName, projectID, clientID)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
