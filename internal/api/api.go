package api

import (
	"fmt"
	"net/http"

	"faq-assist-backend/internal/database"
	"faq-assist-backend/internal/pubsub"
	"faq-assist-backend/internal/queue"
	"faq-assist-backend/internal/service/archive"
	"faq-assist-backend/internal/service/auth"
	"faq-assist-backend/internal/service/session"
	"faq-assist-backend/internal/service/ticket"
	"faq-assist-backend/internal/websocket"

	"github.com/prometheus/client_golang/prometheus"
)

type RouteRegistrar func(mux *http.ServeMux, s *APIServer)

// Services bundles the shared singletons. The session and ticket services
// hold state in memory, so every route must talk to the same instance.
type Services struct {
	Sessions *session.Service
	Tickets  *ticket.Service
	Archives *archive.Service
	Auth     *auth.Service
	Broker   pubsub.Broker
}

type APIServer struct {
	listenAddr          string
	requestQueueManager *queue.RequestQueueManager
	db                  *database.Database
	services            *Services
	routeRegistrars     []RouteRegistrar
	handler             *websocket.Handler
	allowedOrigins      []string
	metrics             *metrics
}

func NewAPIServer(listenAddr string, rqm *queue.RequestQueueManager, db *database.Database, services *Services, handler *websocket.Handler, allowedOrigins []string, registrars ...RouteRegistrar) *APIServer {
	return &APIServer{
		listenAddr:          listenAddr,
		requestQueueManager: rqm,
		db:                  db,
		services:            services,
		handler:             handler,
		allowedOrigins:      allowedOrigins,
		routeRegistrars:     registrars,
		metrics:             newMetrics(prometheus.DefaultRegisterer, listenAddr, rqm),
	}
}

func (s *APIServer) Run() {
	mux := http.NewServeMux()

	for _, reg := range s.routeRegistrars {
		reg(mux, s)
	}

	mux.Handle("/metrics", s.metrics.metricsHandler())

	fmt.Printf("Server listening on http://localhost%s\n", s.listenAddr)

	if err := http.ListenAndServe(s.listenAddr, s.metrics.instrument(mux)); err != nil {
		fmt.Printf("server stopped: %v\n", err)
	}
}

func (s *APIServer) Database() *database.Database {
	return s.db
}

func (s *APIServer) Services() *Services {
	return s.services
}

func (s *APIServer) Handler() *websocket.Handler {
	return s.handler
}
