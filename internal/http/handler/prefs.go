package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"medremind/internal/http/middleware"
	"medremind/internal/prefs"
)

type PrefsHandler struct {
	Prefs *prefs.Repo
}

func (h *PrefsHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())

	p, err := h.Prefs.GetOrDefault(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

type prefsReq struct {
	NotificationsEnabled bool    `json:"notifications_enabled"`
	QuietStart           *string `json:"quiet_start"` // "HH:MM", both or neither
	QuietEnd             *string `json:"quiet_end"`
	AllowVibration       bool    `json:"allow_vibration"`
	RingtoneRef          *string `json:"ringtone_ref"`
}

func (h *PrefsHandler) Put(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserIDFromContext(r.Context())

	var req prefsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	var startM, endM *int
	if req.QuietStart != nil && req.QuietEnd != nil {
		s, err := parseClock(*req.QuietStart)
		if err != nil {
			http.Error(w, "invalid quiet_start: want HH:MM", http.StatusBadRequest)
			return
		}
		e, err := parseClock(*req.QuietEnd)
		if err != nil {
			http.Error(w, "invalid quiet_end: want HH:MM", http.StatusBadRequest)
			return
		}
		startM, endM = &s, &e
	}

	p, err := h.Prefs.GetOrDefault(r.Context(), uid)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	p.NotificationsEnabled = req.NotificationsEnabled
	p.QuietStartM = startM
	p.QuietEndM = endM
	p.AllowVibration = req.AllowVibration
	if req.RingtoneRef != nil && strings.TrimSpace(*req.RingtoneRef) == "" {
		req.RingtoneRef = nil
	}
	p.RingtoneRef = req.RingtoneRef

	if err := h.Prefs.Save(r.Context(), &p); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}
