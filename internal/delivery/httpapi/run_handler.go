package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/RobinNagpal/defi-alerts/internal/usecase"
	"go.uber.org/zap"
)

// RunHandler is the scheduled trigger: an external scheduler POSTs here once
// per cycle and gets the run summary back synchronously.
type RunHandler struct {
	runner  *usecase.Runner
	timeout time.Duration
	logger  *zap.Logger
}

func NewRunHandler(runner *usecase.Runner, timeout time.Duration, logger *zap.Logger) *RunHandler {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &RunHandler{runner: runner, timeout: timeout, logger: logger}
}

type runResponse struct {
	Success           bool   `json:"success"`
	RunID             string `json:"run_id,omitempty"`
	AlertsEvaluated   int    `json:"alerts_evaluated"`
	RatesCollected    int    `json:"rates_collected"`
	EventsFired       int    `json:"events_fired"`
	EventsSuppressed  int    `json:"events_suppressed"`
	AlertsNotified    int    `json:"alerts_notified"`
	NotificationsSent int    `json:"notifications_sent"`
	ChannelFailures   int    `json:"channel_failures"`
	DurationMS        int64  `json:"duration_ms"`
	Error             string `json:"error,omitempty"`
}

func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, runResponse{Success: false, Error: "method not allowed"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	summary, err := h.runner.Run(ctx)
	if err != nil {
		h.logger.Error("scheduled run failed", zap.String("run_id", summary.RunID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, runResponse{
			Success: false,
			RunID:   summary.RunID,
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, runResponse{
		Success:           true,
		RunID:             summary.RunID,
		AlertsEvaluated:   summary.AlertsEvaluated,
		RatesCollected:    summary.RatesCollected,
		EventsFired:       summary.EventsFired,
		EventsSuppressed:  summary.EventsSuppressed,
		AlertsNotified:    summary.AlertsNotified,
		NotificationsSent: summary.NotificationsSent,
		ChannelFailures:   summary.ChannelFailures,
		DurationMS:        summary.Duration.Milliseconds(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
