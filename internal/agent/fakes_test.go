package agent

import (
	"context"
	"errors"
	"time"

	"wellbridge/internal/llm"
	"wellbridge/pkg"
)

// fakeLLM returns scripted responses in order, or a fixed error.
type fakeLLM struct {
	responses []string
	err       error
	calls     []llm.Request
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("fakeLLM: no scripted response left")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

// fakeStore serves canned records, excerpts and appointments.
type fakeStore struct {
	records      []pkg.Record
	excerpts     []pkg.NoteExcerpt
	appointments []pkg.Appointment
	err          error
}

func (f *fakeStore) RecentRecords(ctx context.Context, tenantID, userID string, limit int) ([]pkg.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func (f *fakeStore) SearchNotes(ctx context.Context, tenantID, userID, query string, limit int) ([]pkg.NoteExcerpt, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.excerpts) > limit {
		return f.excerpts[:limit], nil
	}
	return f.excerpts, nil
}

func (f *fakeStore) UpcomingAppointments(ctx context.Context, tenantID, userID string, limit int) ([]pkg.Appointment, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.appointments) > limit {
		return f.appointments[:limit], nil
	}
	return f.appointments, nil
}

// fakeAudit records violations; err makes every append fail.
type fakeAudit struct {
	violations []Violation
	err        error
}

func (f *fakeAudit) Append(ctx context.Context, v Violation) error {
	if f.err != nil {
		return f.err
	}
	f.violations = append(f.violations, v)
	return nil
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func userTurn(content string) StateRecord {
	return StateRecord{
		TenantID:  "tenant-1",
		UserID:    "user-1",
		Role:      "patient",
		SessionID: "session-1",
		Messages:  []pkg.Message{{Role: pkg.RoleUser, Content: content}},
	}
}
