package handler

import (
	"testing"
	"time"

	"medremind/internal/symptom"
)

func validSymptomReq() symptomReq {
	return symptomReq{
		NoteDate:    "2025-01-05",
		Title:       "Headache",
		Description: "Dull ache after the morning dose",
	}
}

func TestSymptomReq_ApplyValid(t *testing.T) {
	req := validSymptomReq()
	sev := 3
	schedID := uint64(3)
	req.Severity = &sev
	req.ScheduleID = &schedID

	var n symptom.Note
	if err := req.apply(&n); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if want := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC); !n.NoteDate.Equal(want) {
		t.Fatalf("note date %v, want %v", n.NoteDate, want)
	}
	if n.Title != "Headache" || n.Description != "Dull ache after the morning dose" {
		t.Fatalf("bad fields: %+v", n)
	}
	if n.Severity == nil || *n.Severity != 3 {
		t.Fatalf("severity %v, want 3", n.Severity)
	}
	if n.ScheduleID == nil || *n.ScheduleID != 3 {
		t.Fatalf("schedule link %v, want 3", n.ScheduleID)
	}
}

func TestSymptomReq_SeverityOptional(t *testing.T) {
	req := validSymptomReq()

	var n symptom.Note
	if err := req.apply(&n); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if n.Severity != nil {
		t.Fatal("absent severity must stay unset")
	}
}

func TestSymptomReq_ApplyRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*symptomReq)
	}{
		{"blank title", func(r *symptomReq) { r.Title = "   " }},
		{"blank description", func(r *symptomReq) { r.Description = "" }},
		{"bad date", func(r *symptomReq) { r.NoteDate = "05-01-2025" }},
		{"severity too low", func(r *symptomReq) { v := 0; r.Severity = &v }},
		{"severity too high", func(r *symptomReq) { v := 6; r.Severity = &v }},
	}

	for _, c := range cases {
		req := validSymptomReq()
		c.mutate(&req)

		var n symptom.Note
		if err := req.apply(&n); err == nil {
			t.Fatalf("%s: want validation error", c.name)
		}
	}
}
