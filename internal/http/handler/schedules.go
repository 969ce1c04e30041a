package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"medremind/internal/http/middleware"
	"medremind/internal/reminder"
	"medremind/internal/schedule"
	"medremind/internal/symptom"
)

type ScheduleHandler struct {
	Schedules *schedule.Repo
	Symptoms  *symptom.Repo
	Scheduler *reminder.Scheduler
	Jobs      reminder.DelayedJobPort
	Log       *zap.Logger
}

type scheduleReq struct {
	MedicineName string  `json:"medicine_name"`
	Dosage       string  `json:"dosage"`
	Instructions *string `json:"instructions"`
	TimeOfDay    string  `json:"time_of_day"` // "HH:MM"
	StartDate    string  `json:"start_date"`  // "2006-01-02"
	EndDate      *string `json:"end_date"`    // inclusive, optional
	Active       *bool   `json:"active"`
}

func (req *scheduleReq) apply(s *schedule.Schedule) error {
	req.MedicineName = strings.TrimSpace(req.MedicineName)
	req.Dosage = strings.TrimSpace(req.Dosage)
	if req.MedicineName == "" || req.Dosage == "" {
		return errors.New("medicine_name and dosage required")
	}

	tod, err := parseClock(req.TimeOfDay)
	if err != nil {
		return fmt.Errorf("invalid time_of_day: %w", err)
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return errors.New("invalid start_date (want YYYY-MM-DD)")
	}

	var end *time.Time
	if req.EndDate != nil && strings.TrimSpace(*req.EndDate) != "" {
		t, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return errors.New("invalid end_date (want YYYY-MM-DD)")
		}
		if t.Before(start) {
			return errors.New("end_date before start_date")
		}
		end = &t
	}

	s.MedicineName = req.MedicineName
	s.Dosage = req.Dosage
	s.Instructions = req.Instructions
	s.TimeOfDayM = tod
	s.StartDate = start
	s.EndDate = end
	s.Active = true
	if req.Active != nil {
		s.Active = *req.Active
	}
	return nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New("want HH:MM")
	}
	return t.Hour()*60 + t.Minute(), nil
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())

	var req scheduleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	s := schedule.Schedule{UserID: uid}
	if err := req.apply(&s); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if s.Active {
		taken, err := h.Schedules.HasActiveAtTime(r.Context(), uid, s.TimeOfDayM, 0)
		if err != nil {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		if taken {
			http.Error(w, "an active schedule already exists at this time", http.StatusConflict)
			return
		}
	}

	if err := h.Schedules.Create(r.Context(), &s); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	if err := h.Scheduler.ScheduleNext(&s); err != nil {
		h.Log.Warn("arm after create failed", zap.Uint64("scheduleID", s.ID), zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(s)
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())

	list, err := h.Schedules.ListByUser(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s, err := h.Schedules.GetByID(r.Context(), uid, id)
	if errors.Is(err, schedule.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s)
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req scheduleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	s := schedule.Schedule{ID: id, UserID: uid}
	if err := req.apply(&s); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if s.Active {
		taken, err := h.Schedules.HasActiveAtTime(r.Context(), uid, s.TimeOfDayM, id)
		if err != nil {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		if taken {
			http.Error(w, "an active schedule already exists at this time", http.StatusConflict)
			return
		}
	}

	err := h.Schedules.Update(r.Context(), &s)
	if errors.Is(err, schedule.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.rearmOrCancel(r, &s)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s)
}

type setActiveReq struct {
	Active bool `json:"active"`
}

func (h *ScheduleHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req setActiveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	if req.Active {
		s, err := h.Schedules.GetByID(r.Context(), uid, id)
		if errors.Is(err, schedule.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		taken, err := h.Schedules.HasActiveAtTime(r.Context(), uid, s.TimeOfDayM, id)
		if err != nil {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		if taken {
			http.Error(w, "an active schedule already exists at this time", http.StatusConflict)
			return
		}
	}

	err := h.Schedules.SetActive(r.Context(), uid, id, req.Active)
	if errors.Is(err, schedule.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	s, err := h.Schedules.GetByID(r.Context(), uid, id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	h.rearmOrCancel(r, s)

	w.WriteHeader(http.StatusNoContent)
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := h.Schedules.Delete(r.Context(), uid, id)
	if errors.Is(err, schedule.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.Scheduler.Cancel(uid, id)
	if err := h.Jobs.CancelByTag(r.Context(), reminder.MissedJobTag(uid, id)); err != nil {
		h.Log.Warn("missed-dose jobs cancel failed", zap.Error(err))
	}
	// Symptom notes outlive the schedule; only the link is cleared.
	if err := h.Symptoms.DetachSchedule(r.Context(), uid, id); err != nil {
		h.Log.Warn("symptom note detach failed", zap.Uint64("scheduleID", id), zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}

// rearmOrCancel aligns the alarm and pending jobs with the schedule's state
// after a mutation.
func (h *ScheduleHandler) rearmOrCancel(r *http.Request, s *schedule.Schedule) {
	if err := h.Scheduler.ScheduleNext(s); err != nil {
		h.Log.Warn("re-arm failed", zap.Uint64("scheduleID", s.ID), zap.Error(err))
	}
	if !s.Active {
		if err := h.Jobs.CancelByTag(r.Context(), reminder.MissedJobTag(s.UserID, s.ID)); err != nil {
			h.Log.Warn("missed-dose jobs cancel failed", zap.Error(err))
		}
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
