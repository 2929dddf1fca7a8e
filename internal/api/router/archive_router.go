package router

import (
	"net/http"

	"faq-assist-backend/internal/api"
	"faq-assist-backend/internal/api/endpoints"
	"faq-assist-backend/internal/api/middleware"
)

func ArchiveRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		archiveEndpoints := endpoints.NewArchiveEndpoints(s.Services().Archives, s.Services().Auth, prefix)
		mux.HandleFunc(prefix+"/archives", s.MakeHTTPHandleFunc(archiveEndpoints.Archives, middleware.ValidateAnyJWT))
		mux.HandleFunc(prefix+"/archives/", s.MakeHTTPHandleFunc(archiveEndpoints.Archive, middleware.ValidateAnyJWT))
	}
}
