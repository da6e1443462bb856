package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"formhook/internal/pkg/errors"
	"formhook/internal/platform/models"
)

const maxSubmissionBytes = 1 << 20

// SubmissionListener is notified of every completed submission.
type SubmissionListener interface {
	OnSubmission(ctx context.Context, event models.SubmissionEvent)
}

// SubmissionHandler is the callback the host form system invokes when a
// submission completes.
type SubmissionHandler struct {
	listener SubmissionListener
}

func NewSubmissionHandler(listener SubmissionListener) *SubmissionHandler {
	return &SubmissionHandler{listener: listener}
}

func (h *SubmissionHandler) Receive(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubmissionBytes)

	var event models.SubmissionEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid submission event", nil)
		return
	}

	// the host's submission must complete regardless of what happens downstream
	h.listener.OnSubmission(r.Context(), event)

	errors.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
