// Package server exposes the tracker over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/vitalityhub/vitality-helper/internal/chat"
	"github.com/vitalityhub/vitality-helper/internal/config"
	"github.com/vitalityhub/vitality-helper/internal/logger"
	"github.com/vitalityhub/vitality-helper/internal/services"
)

// historyLimit caps history endpoints at the most recent entries.
const historyLimit = 30

// Services groups the service dependencies of the HTTP layer.
type Services struct {
	User       *services.UserService
	Mood       *services.MoodService
	Fitness    *services.FitnessService
	Medication *services.MedicationService
	Friend     *services.FriendService
	Buddy      *services.BuddyService
	AI         *services.AIService
}

type Server struct {
	httpServer  *http.Server
	router      *mux.Router
	svc         Services
	chatHistory chat.HistoryStore
	userID      uint
}

// New builds the router and wires all API routes. userID is the tracked
// account every operation is keyed by.
func New(cfg config.ServerConfig, svc Services, chatHistory chat.HistoryStore, userID uint) *Server {
	s := &Server{
		router:      mux.NewRouter(),
		svc:         svc,
		chatHistory: chatHistory,
		userID:      userID,
	}
	s.routes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // AI calls can be slow
	}
	return s
}

func (s *Server) routes() {
	s.router.Use(requestLogger)

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api.HandleFunc("/user", s.handleGetUser).Methods(http.MethodGet)
	api.HandleFunc("/user/update", s.handleUpdateUser).Methods(http.MethodPost)

	api.HandleFunc("/mood/history", s.handleMoodHistory).Methods(http.MethodGet)
	api.HandleFunc("/mood", s.handleLogMood).Methods(http.MethodPost)

	api.HandleFunc("/fitness/history", s.handleFitnessHistory).Methods(http.MethodGet)
	api.HandleFunc("/fitness", s.handleLogFitness).Methods(http.MethodPost)

	api.HandleFunc("/medications", s.handleListMedications).Methods(http.MethodGet)
	api.HandleFunc("/medications", s.handleAddMedication).Methods(http.MethodPost)
	api.HandleFunc("/medications/take", s.handleTakeMedication).Methods(http.MethodPost)
	api.HandleFunc("/medications/snooze", s.handleSnoozeMedication).Methods(http.MethodPost)
	api.HandleFunc("/medications/{id:[0-9]+}", s.handleUpdateMedication).Methods(http.MethodPut)
	api.HandleFunc("/medications/{id:[0-9]+}", s.handleDeleteMedication).Methods(http.MethodDelete)

	api.HandleFunc("/friends", s.handleListFriends).Methods(http.MethodGet)
	api.HandleFunc("/friends", s.handleAddFriend).Methods(http.MethodPost)
	api.HandleFunc("/friends/{id:[0-9]+}", s.handleDeleteFriend).Methods(http.MethodDelete)

	api.HandleFunc("/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)

	api.HandleFunc("/alerts", s.handleListAlerts).Methods(http.MethodGet)
	api.HandleFunc("/buddy/respond", s.handleBuddyRespond).Methods(http.MethodPost)

	api.HandleFunc("/advice", s.handleAdvice).Methods(http.MethodGet)
	api.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	api.HandleFunc("/advisor/redeem", s.handleRedeemConsultation).Methods(http.MethodPost)
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
