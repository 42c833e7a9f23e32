package gateway

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/triviahub/go/internal/trivia"
)

// Service is the game gateway: WebSocket connections, the message router,
// and event broadcasting over session rooms.
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	router            *Router
}

// NewService wires the router into an existing connection manager. The
// manager is created by the caller first because the engine needs it as its
// broadcaster before the router can exist.
func NewService(cm *ConnectionManager, engine *trivia.Engine) *Service {
	router := NewRouter(engine, cm)
	cm.SetHandler(router)

	return &Service{
		connectionManager: cm,
		wsHandler:         NewWebSocketHandler(cm),
		router:            router,
	}
}

// Start begins the gateway service and blocks until the context ends.
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting game gateway service")

	go s.connectionManager.Start(ctx)

	<-ctx.Done()

	log.Info().Msg("game gateway service shutting down")
	return nil
}

// RegisterRoutes registers the WebSocket HTTP routes.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	log.Info().Msg("game gateway routes registered")
}
