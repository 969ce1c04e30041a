package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"medremind/internal/adherence"
	"medremind/internal/http/middleware"
)

type AdherenceHandler struct {
	Adherence *adherence.Repo
}

// List returns the user's adherence history, optionally bounded by
// from/to query params (RFC3339, to exclusive).
func (h *AdherenceHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())

	from, to, ok := rangeParams(w, r)
	if !ok {
		return
	}

	var (
		logs []adherence.Log
		err  error
	)
	if !from.IsZero() && !to.IsZero() {
		logs, err = h.Adherence.ListByRange(r.Context(), uid, from, to)
	} else {
		limit := 100
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, perr := strconv.Atoi(raw); perr == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}
		logs, err = h.Adherence.ListByUser(r.Context(), uid, limit)
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(logs)
}

// Occurrence looks up the outcome of one planned dose. 404 means the dose has
// no recorded outcome yet.
func (h *AdherenceHandler) Occurrence(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())

	scheduleID, err := strconv.ParseUint(r.URL.Query().Get("schedule_id"), 10, 64)
	if err != nil || scheduleID == 0 {
		http.Error(w, "invalid schedule_id", http.StatusBadRequest)
		return
	}
	planned, err := time.Parse(time.RFC3339, strings.TrimSpace(r.URL.Query().Get("planned_time")))
	if err != nil {
		http.Error(w, "invalid planned_time (RFC3339)", http.StatusBadRequest)
		return
	}

	l, err := h.Adherence.FindByOccurrence(r.Context(), uid, scheduleID, planned)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if l == nil {
		http.Error(w, "no outcome recorded", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(l)
}

type summaryDTO struct {
	Taken   int64 `json:"taken"`
	Missed  int64 `json:"missed"`
	Skipped int64 `json:"skipped"`
}

// Summary counts outcomes per status in a required from/to range.
func (h *AdherenceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())

	from, to, ok := rangeParams(w, r)
	if !ok {
		return
	}
	if from.IsZero() || to.IsZero() {
		http.Error(w, "from and to required (RFC3339)", http.StatusBadRequest)
		return
	}

	var out summaryDTO
	var err error
	if out.Taken, err = h.Adherence.CountByStatusInRange(r.Context(), uid, adherence.StatusTaken, from, to); err == nil {
		if out.Missed, err = h.Adherence.CountByStatusInRange(r.Context(), uid, adherence.StatusMissed, from, to); err == nil {
			out.Skipped, err = h.Adherence.CountByStatusInRange(r.Context(), uid, adherence.StatusSkipped, from, to)
		}
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func rangeParams(w http.ResponseWriter, r *http.Request) (from, to time.Time, ok bool) {
	rawFrom := strings.TrimSpace(r.URL.Query().Get("from"))
	rawTo := strings.TrimSpace(r.URL.Query().Get("to"))
	if rawFrom == "" && rawTo == "" {
		return time.Time{}, time.Time{}, true
	}
	if rawFrom == "" || rawTo == "" {
		http.Error(w, "from and to go together", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}

	var err error
	if from, err = time.Parse(time.RFC3339, rawFrom); err != nil {
		http.Error(w, "invalid from (RFC3339)", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	if to, err = time.Parse(time.RFC3339, rawTo); err != nil {
		http.Error(w, "invalid to (RFC3339)", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
