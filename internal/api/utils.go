package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"faq-assist-backend/internal/api/middleware"
	"faq-assist-backend/internal/queue"
)

type apiFunc func(http.ResponseWriter, *http.Request) error

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func (s *APIServer) MakeHTTPHandleFunc(f apiFunc, authMiddleware ...middleware.Middleware) http.HandlerFunc {
	baseHandler := func(w http.ResponseWriter, r *http.Request) {
		errc := make(chan error, 1)

		job := queue.Job{
			Fn: func() error {
				err := f(w, r)
				return err
			},
			Errc: errc,
		}

		s.requestQueueManager.EnqueueJob(job)

		writeHandlerError(w, <-errc)
	}

	return s.wrapHandler(baseHandler, authMiddleware)
}

// MakeWebsocketHandleFunc serves f on the request goroutine instead of the
// worker pool. Websocket endpoints live as long as the connection; parking
// them on a worker would let a handful of dashboards starve every other
// request.
func (s *APIServer) MakeWebsocketHandleFunc(f apiFunc, authMiddleware ...middleware.Middleware) http.HandlerFunc {
	baseHandler := func(w http.ResponseWriter, r *http.Request) {
		writeHandlerError(w, f(w, r))
	}

	return s.wrapHandler(baseHandler, authMiddleware)
}

func writeHandlerError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		fmt.Println(httpErr.ErrorLog)
		WriteJSON(w, httpErr.StatusCode, ApiError{Error: httpErr.Message})
	} else {
		WriteJSON(w, http.StatusInternalServerError, ApiError{Error: "Internal server error"})
	}
}

func (s *APIServer) wrapHandler(baseHandler http.HandlerFunc, authMiddleware []middleware.Middleware) http.HandlerFunc {
	corsConfig := middleware.CORSConfig{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "OPTIONS", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "X-Requested-With", "Authorization"},
		AllowCredentials: true,
	}

	middlewares := []middleware.Middleware{
		middleware.CORS(corsConfig),
		middleware.Logging(),
	}

	finalHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		if len(authMiddleware) > 0 {
			authHandler := baseHandler
			for _, m := range authMiddleware {
				authHandler = m(authHandler)
			}
			authHandler(w, r)
		} else {
			baseHandler(w, r)
		}
	}

	return middleware.Chain(finalHandler, middlewares...)
}
