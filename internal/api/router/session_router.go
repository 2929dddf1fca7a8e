package router

import (
	"net/http"

	"faq-assist-backend/internal/api"
	"faq-assist-backend/internal/api/endpoints"
	"faq-assist-backend/internal/api/middleware"
)

func SessionRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		sessionEndpoints := endpoints.NewSessionEndpoints(s.Services().Sessions, s.Services().Auth)
		mux.HandleFunc(prefix+"/session", s.MakeHTTPHandleFunc(sessionEndpoints.Session, middleware.ValidateCustomerJWT))
		mux.HandleFunc(prefix+"/session/chat", s.MakeHTTPHandleFunc(sessionEndpoints.Chat, middleware.ValidateCustomerJWT))
		mux.HandleFunc(prefix+"/session/feedback", s.MakeHTTPHandleFunc(sessionEndpoints.Feedback, middleware.ValidateCustomerJWT))
		mux.HandleFunc(prefix+"/session/language", s.MakeHTTPHandleFunc(sessionEndpoints.Language, middleware.ValidateCustomerJWT))
		mux.HandleFunc(prefix+"/session/document", s.MakeHTTPHandleFunc(sessionEndpoints.Document, middleware.ValidateCustomerJWT))
	}
}
