package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"medremind/internal/http/middleware"
	"medremind/internal/reminder"
)

// ActionHandler is the direct user-tap path: the frontend posts the response
// to a shown reminder here, and it enters the same event channel the
// notification buttons use.
type ActionHandler struct {
	Events *reminder.Handler
	Log    *zap.Logger
}

type actionReq struct {
	Action      string `json:"action"`       // taken|skip|snooze
	PlannedTime string `json:"planned_time"` // RFC3339
}

func (h *ActionHandler) Post(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req actionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	planned, err := time.Parse(time.RFC3339, strings.TrimSpace(req.PlannedTime))
	if err != nil {
		http.Error(w, "invalid planned_time (RFC3339)", http.StatusBadRequest)
		return
	}

	var kind reminder.Kind
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "taken":
		kind = reminder.EventTaken
	case "skip", "skipped":
		kind = reminder.EventSkipped
	case "snooze":
		kind = reminder.EventSnooze
	default:
		http.Error(w, "action must be taken, skip or snooze", http.StatusBadRequest)
		return
	}

	ev := reminder.Event{Kind: kind, UserID: uid, ScheduleID: id, PlannedTime: planned}
	if err := h.Events.Handle(r.Context(), ev); err != nil {
		h.Log.Error("action failed",
			zap.String("action", string(kind)),
			zap.Uint64("scheduleID", id),
			zap.Error(err),
		)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
