package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tunelink/internal/models"
)

// VoteRecorder stores received votes.
type VoteRecorder interface {
	Record(ctx context.Context, vote *models.Vote) error
}

// StatsSource reads search totals.
type StatsSource interface {
	Count(ctx context.Context) (int64, error)
	CountByPlatform(ctx context.Context) (map[string]int64, error)
}

// VotesHandler accepts bot-list vote webhooks on POST /votes.
type VotesHandler struct {
	votes  VoteRecorder
	logger *log.Logger
}

// NewVotesHandler creates a [VotesHandler].
func NewVotesHandler(votes VoteRecorder, logger *log.Logger) *VotesHandler {
	return &VotesHandler{votes: votes, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *VotesHandler) Routes() []string {
	return []string{"POST /votes"}
}

func (h *VotesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var vote models.Vote
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&vote); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	vote.ID = ""

	if err := vote.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := h.votes.Record(r.Context(), &vote); err != nil {
		h.logger.Error("failed to record vote", "user", vote.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to record vote"})
		return
	}

	h.logger.Info("vote received", "user", vote.UserID, "weekend", vote.IsWeekend)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// StatsHandler serves GET /stats with the search counter and per-platform totals.
type StatsHandler struct {
	stats StatsSource
}

// NewStatsHandler creates a [StatsHandler].
func NewStatsHandler(stats StatsSource) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Routes returns the HTTP routes this handler serves.
func (h *StatsHandler) Routes() []string {
	return []string{"GET /stats"}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	total, err := h.stats.Count(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "stats unavailable"})
		return
	}
	platforms, err := h.stats.CountByPlatform(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "stats unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Searches  int64            `json:"searches"`
		Platforms map[string]int64 `json:"platforms"`
	}{total, platforms})
}

// Health answers liveness probes.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NewWebhookRouter wires the public routes: /health and /stats are open, /votes requires secret.
func NewWebhookRouter(secret string, recorder VoteRecorder, stats StatsSource, logger *log.Logger) *BasicRouter {
	r := NewBasicRouter()
	r.Use(Recoverer(logger), RequestLogger(logger))

	r.Handle(http.MethodGet, "/health", http.HandlerFunc(Health))
	r.Handler(NewStatsHandler(stats))

	votes := NewVotesHandler(recorder, logger)
	for _, route := range votes.Routes() {
		r.mux.Handle(route, r.Apply(RequireSecret(secret)(votes)))
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
