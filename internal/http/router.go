package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"medremind/internal/adherence"
	"medremind/internal/config"
	"medremind/internal/http/handler"
	mw "medremind/internal/http/middleware"
	"medremind/internal/prefs"
	"medremind/internal/reminder"
	"medremind/internal/schedule"
	"medremind/internal/symptom"
)

type Deps struct {
	Log       *zap.Logger
	Schedules *schedule.Repo
	Adherence *adherence.Repo
	Prefs     *prefs.Repo
	Symptoms  *symptom.Repo
	Scheduler *reminder.Scheduler
	Events    *reminder.Handler
	Jobs      reminder.DelayedJobPort
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		r.Use(mw.CORS(origins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	schedH := &handler.ScheduleHandler{
		Schedules: d.Schedules,
		Symptoms:  d.Symptoms,
		Scheduler: d.Scheduler,
		Jobs:      d.Jobs,
		Log:       d.Log,
	}
	actionH := &handler.ActionHandler{Events: d.Events, Log: d.Log}
	prefsH := &handler.PrefsHandler{Prefs: d.Prefs}
	adherH := &handler.AdherenceHandler{Adherence: d.Adherence}
	sympH := &handler.SymptomHandler{Notes: d.Symptoms, Schedules: d.Schedules}

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireUser)

		r.Route("/schedules", func(r chi.Router) {
			r.Post("/", schedH.Create)
			r.Get("/", schedH.List)
			r.Get("/{id}", schedH.Get)
			r.Put("/{id}", schedH.Update)
			r.Delete("/{id}", schedH.Delete)
			r.Post("/{id}/active", schedH.SetActive)
			r.Post("/{id}/actions", actionH.Post)
		})

		r.Get("/preferences", prefsH.Get)
		r.Put("/preferences", prefsH.Put)

		r.Get("/adherence", adherH.List)
		r.Get("/adherence/occurrence", adherH.Occurrence)
		r.Get("/adherence/summary", adherH.Summary)

		r.Route("/symptoms", func(r chi.Router) {
			r.Post("/", sympH.Create)
			r.Get("/", sympH.List)
			r.Get("/{id}", sympH.Get)
			r.Put("/{id}", sympH.Update)
			r.Delete("/{id}", sympH.Delete)
		})
	})

	return r
}
