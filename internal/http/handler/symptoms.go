package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"medremind/internal/http/middleware"
	"medremind/internal/schedule"
	"medremind/internal/symptom"
)

type SymptomHandler struct {
	Notes     *symptom.Repo
	Schedules *schedule.Repo
}

type symptomReq struct {
	ScheduleID  *uint64 `json:"schedule_id"`
	NoteDate    string  `json:"note_date"` // "2006-01-02"
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Severity    *int    `json:"severity"` // optional, 1..5
}

func (req *symptomReq) apply(n *symptom.Note) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" {
		return errors.New("title required")
	}
	if req.Description == "" {
		return errors.New("description required")
	}

	day, err := time.Parse("2006-01-02", req.NoteDate)
	if err != nil {
		return errors.New("invalid note_date (want YYYY-MM-DD)")
	}
	if req.Severity != nil && (*req.Severity < 1 || *req.Severity > 5) {
		return errors.New("severity must be 1..5")
	}

	n.ScheduleID = req.ScheduleID
	n.NoteDate = day
	n.Title = req.Title
	n.Description = req.Description
	n.Severity = req.Severity
	return nil
}

// ownSchedule verifies the optional schedule link points at the caller's own
// schedule before the note is written.
func (h *SymptomHandler) ownSchedule(w http.ResponseWriter, r *http.Request, uid uint64, scheduleID *uint64) bool {
	if scheduleID == nil {
		return true
	}
	_, err := h.Schedules.GetByID(r.Context(), uid, *scheduleID)
	if errors.Is(err, schedule.ErrNotFound) {
		http.Error(w, "linked schedule not found", http.StatusBadRequest)
		return false
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *SymptomHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())

	var req symptomReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	n := symptom.Note{UserID: uid}
	if err := req.apply(&n); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !h.ownSchedule(w, r, uid, n.ScheduleID) {
		return
	}

	if err := h.Notes.Create(r.Context(), &n); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(n)
}

func (h *SymptomHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())

	list, err := h.Notes.ListByUser(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

func (h *SymptomHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	n, err := h.Notes.GetByID(r.Context(), uid, id)
	if errors.Is(err, symptom.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(n)
}

func (h *SymptomHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req symptomReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	n := symptom.Note{ID: id, UserID: uid}
	if err := req.apply(&n); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !h.ownSchedule(w, r, uid, n.ScheduleID) {
		return
	}

	err := h.Notes.Update(r.Context(), &n)
	if errors.Is(err, symptom.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(n)
}

func (h *SymptomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := h.Notes.Delete(r.Context(), uid, id)
	if errors.Is(err, symptom.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
