package endpoints

import (
	"net/http"

	"faq-assist-backend/internal/i18n"
)

type UtilsEndpoints interface {
	Health(http.ResponseWriter, *http.Request) error
	Languages(http.ResponseWriter, *http.Request) error
}

type utilsEndpoints struct{}

func NewUtilsEndpoints() UtilsEndpoints {
	return &utilsEndpoints{}
}

func (h *utilsEndpoints) Health(w http.ResponseWriter, r *http.Request) error {
	return WriteJSON(w, http.StatusOK, struct{}{})
}

func (h *utilsEndpoints) Languages(w http.ResponseWriter, r *http.Request) error {
	return WriteJSON(w, http.StatusOK, i18n.Supported())
}
