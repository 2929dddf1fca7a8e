package router

import (
	"net/http"

	"faq-assist-backend/internal/api"
	"faq-assist-backend/internal/api/endpoints"
	"faq-assist-backend/internal/api/middleware"
)

func TicketRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		ticketEndpoints := endpoints.NewTicketEndpoints(s.Services().Tickets, prefix)
		mux.HandleFunc(prefix+"/requests", s.MakeHTTPHandleFunc(ticketEndpoints.Requests, middleware.ValidateAgentJWT))
		mux.HandleFunc(prefix+"/requests/stats", s.MakeHTTPHandleFunc(ticketEndpoints.Stats, middleware.ValidateAgentJWT))
		mux.HandleFunc(prefix+"/requests/", s.MakeHTTPHandleFunc(ticketEndpoints.Request, middleware.ValidateAgentJWT))
	}
}
