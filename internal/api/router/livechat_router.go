package router

import (
	"net/http"

	"faq-assist-backend/internal/api"
	"faq-assist-backend/internal/api/endpoints"
	"faq-assist-backend/internal/api/middleware"
)

// LiveChatRoutes carries its auth inside the endpoints: websocket clients
// cannot set an Authorization header, so the token travels as a query
// parameter and is validated there.
func LiveChatRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		services := s.Services()
		liveChatEndpoints := endpoints.NewLiveChatEndpoints(s.Handler(), services.Tickets, services.Auth, services.Broker, prefix)
		mux.HandleFunc(prefix+"/ws/chat/", s.MakeWebsocketHandleFunc(liveChatEndpoints.ChatWebsocket))
		mux.HandleFunc(prefix+"/ws/notifications", s.MakeWebsocketHandleFunc(liveChatEndpoints.NotificationsWebsocket))
		mux.HandleFunc(prefix+"/links", s.MakeHTTPHandleFunc(liveChatEndpoints.Links, middleware.ValidateAgentJWT))
	}
}
