package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"journey-quiz-service/internal/app"
	"journey-quiz-service/internal/domain"
)

// Handler exposes the game use cases over HTTP.
type Handler struct {
	service *app.GameService
	ws      *WSHandler
	logger  *slog.Logger
}

func NewHandler(service *app.GameService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		ws:      NewWSHandler(service, logger),
		logger:  logger,
	}
}

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws/leaderboard", h.ws.ServeLeaderboard)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", h.StartSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.ResetSession)
			r.Post("/answers", h.RecordAnswer)
			r.Post("/finish", h.FinishQuiz)
			r.Post("/verify", h.VerifyCode)
			r.Post("/penance", h.CompletePenance)
			r.Post("/complete", h.CompleteSession)
		})
		r.Get("/leaderboard", h.Leaderboard)
	})
	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type startRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !h.decode(w, r, &req) {
		return
	}
	reg, err := h.service.StartSession(r.Context(), req.Name, req.Location)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: reg})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeSuccess(w, view)
}

func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResetSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeSuccess(w, nil)
}

type answerRequest struct {
	QuestionID     int    `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
	TimeSpent      int    `json:"timeSpent"`
}

func (h *Handler) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.service.RecordAnswer(r.Context(), chi.URLParam(r, "sessionID"), req.QuestionID, req.SelectedAnswer, req.TimeSpent)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeSuccess(w, out)
}

func (h *Handler) FinishQuiz(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.FinishQuiz(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeSuccess(w, view)
}

type verifyRequest struct {
	Code string `json:"code"`
}

func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.service.VerifyCode(r.Context(), chi.URLParam(r, "sessionID"), req.Code)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeSuccess(w, out)
}

type penanceRequest struct {
	Confirmations int `json:"confirmations"`
}

func (h *Handler) CompletePenance(w http.ResponseWriter, r *http.Request) {
	var req penanceRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.service.CompletePenance(r.Context(), chi.URLParam(r, "sessionID"), req.Confirmations)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeSuccess(w, view)
}

// CompleteSession answers 200 even when the save failed; the outcome is in
// data.save so the client can retry.
func (h *Handler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	done, err := h.service.CompleteSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeSuccess(w, done)
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}
	lb, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeSuccess(w, lb)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return false
	}
	return true
}

// fail maps a service error onto a status code. Unknown errors come from
// storage and are not echoed back.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusServiceUnavailable {
		h.logger.Error("request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		h.writeError(w, status, errors.New("service temporarily unavailable"))
		return
	}
	h.writeError(w, status, err)
}

// StatusFor returns the HTTP status for a service error.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrVerificationLocked), errors.Is(err, domain.ErrResultsLocked):
		return http.StatusLocked
	case domain.IsValidationError(err):
		return http.StatusBadRequest
	case domain.IsStateError(err):
		return http.StatusConflict
	}
	return http.StatusServiceUnavailable
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to write response", "error", err)
	}
}

func (h *Handler) writeSuccess(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, APIResponse{Success: false, Error: err.Error()})
}
