package handler

import (
	"encoding/json"
	"net/http"

	"github.com/learnza/learnza-api/internal/application/language"
	"github.com/learnza/learnza-api/internal/domain"
)

// LanguageHandler serves the learning-language catalog.
type LanguageHandler struct {
	svc language.Service
}

func NewLanguageHandler(svc language.Service) *LanguageHandler {
	return &LanguageHandler{svc: svc}
}

type languagesEnvelope struct {
	Languages []domain.Language `json:"languages"`
}

func (h *LanguageHandler) List(w http.ResponseWriter, r *http.Request) {
	langs, err := h.svc.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, languagesEnvelope{Languages: langs})
}

func (h *LanguageHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req language.AddLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	l, err := h.svc.Add(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}
