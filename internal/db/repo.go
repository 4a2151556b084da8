// Package db is the PostgreSQL persistence layer: sessions and transcripts,
// the read-only patient record and appointment views used by the pipeline,
// and the guardrail violation audit log.
package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"wellbridge/internal/agent"
	"wellbridge/pkg"
)

// Repository wraps database operations. Every query that touches patient
// data is scoped by tenant and user; there is no unscoped read path.
type Repository struct {
	DB *sql.DB
}

// NewRepository constructs a Repository from an existing sql.DB. The caller
// owns the connection lifecycle.
func NewRepository(db *sql.DB) *Repository { return &Repository{DB: db} }

// CreateSession opens a new chat session and returns it.
func (r *Repository) CreateSession(ctx context.Context, tenantID, userID, title string) (*pkg.Session, error) {
	var s pkg.Session
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO sessions (id, tenant_id, user_id, title)
         VALUES ($1, $2, $3, $4)
         RETURNING id, tenant_id, user_id, title, created_at, updated_at`,
		uuid.New(), tenantID, userID, title,
	).Scan(&s.ID, &s.TenantID, &s.UserID, &s.Title, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSessions returns the user's sessions, most recently active first.
func (r *Repository) ListSessions(ctx context.Context, tenantID, userID string) ([]pkg.Session, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, tenant_id, user_id, title, created_at, updated_at
         FROM sessions
         WHERE tenant_id = $1 AND user_id = $2
         ORDER BY updated_at DESC`,
		tenantID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sessions []pkg.Session
	for rows.Next() {
		var s pkg.Session
		if err := rows.Scan(&s.ID, &s.TenantID, &s.UserID, &s.Title, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// CountSessions reports how many sessions the user has, used to pick the
// first-time versus returning opening message.
func (r *Repository) CountSessions(ctx context.Context, tenantID, userID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE tenant_id = $1 AND user_id = $2`,
		tenantID, userID,
	).Scan(&count)
	return count, err
}

// SaveMessage appends one message to a session transcript and bumps the
// session's activity timestamp.
func (r *Repository) SaveMessage(ctx context.Context, sessionID string, role pkg.MessageRole, content string) (*pkg.Message, error) {
	var m pkg.Message
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO messages (session_id, role, content)
         VALUES ($1, $2, $3)
         RETURNING id, session_id, role, content, created_at`,
		sessionID, role, content,
	).Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	_, err = r.DB.ExecContext(ctx,
		`UPDATE sessions SET updated_at = NOW() WHERE id = $1`, sessionID)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// OwnsSession reports whether the session exists and belongs to the given
// tenant and user. Handlers check this before any transcript read or write.
func (r *Repository) OwnsSession(ctx context.Context, tenantID, userID, sessionID string) (bool, error) {
	var owns bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (
           SELECT 1 FROM sessions
           WHERE id = $1 AND tenant_id = $2 AND user_id = $3)`,
		sessionID, tenantID, userID,
	).Scan(&owns)
	return owns, err
}

// RecentMessages returns the last n messages of a session in chronological
// order, the shape the pipeline expects its history in. The read joins
// through sessions so a session id alone never reaches another tenant's
// transcript.
func (r *Repository) RecentMessages(ctx context.Context, tenantID, userID, sessionID string, n int) ([]pkg.Message, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, session_id, role, content, created_at
         FROM (SELECT m.id, m.session_id, m.role, m.content, m.created_at
               FROM messages m
               JOIN sessions s ON s.id = m.session_id
               WHERE m.session_id = $1 AND s.tenant_id = $2 AND s.user_id = $3
               ORDER BY m.created_at DESC
               LIMIT $4) t
         ORDER BY created_at ASC`,
		sessionID, tenantID, userID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var messages []pkg.Message
	for rows.Next() {
		var m pkg.Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Transcript returns the full message history of a session in order, scoped
// by tenant and user the same way RecentMessages is.
func (r *Repository) Transcript(ctx context.Context, tenantID, userID, sessionID string) ([]pkg.Message, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT m.id, m.session_id, m.role, m.content, m.created_at
         FROM messages m
         JOIN sessions s ON s.id = m.session_id
         WHERE m.session_id = $1 AND s.tenant_id = $2 AND s.user_id = $3
         ORDER BY m.created_at ASC`,
		sessionID, tenantID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var messages []pkg.Message
	for rows.Next() {
		var m pkg.Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// RecentRecords returns the user's most recent records, newest first.
func (r *Repository) RecentRecords(ctx context.Context, tenantID, userID string, limit int) ([]pkg.Record, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, record_type, provider_name, facility_name, note_date, content
         FROM patient_records
         WHERE tenant_id = $1 AND user_id = $2
         ORDER BY note_date DESC
         LIMIT $3`,
		tenantID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []pkg.Record
	for rows.Next() {
		var rec pkg.Record
		if err := rows.Scan(&rec.ID, &rec.RecordType, &rec.ProviderName,
			&rec.FacilityName, &rec.NoteDate, &rec.Content); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SearchNotes returns short excerpts from the user's records that match the
// query, using postgres full-text search with plainto_tsquery so free-form
// user text never breaks the query syntax.
func (r *Repository) SearchNotes(ctx context.Context, tenantID, userID, query string, limit int) ([]pkg.NoteExcerpt, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT provider_name, note_date,
                ts_headline('english', content, plainto_tsquery('english', $3),
                            'MaxFragments=1, MaxWords=40, MinWords=15') AS excerpt
         FROM patient_records
         WHERE tenant_id = $1 AND user_id = $2
           AND to_tsvector('english', content) @@ plainto_tsquery('english', $3)
         ORDER BY note_date DESC
         LIMIT $4`,
		tenantID, userID, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var excerpts []pkg.NoteExcerpt
	for rows.Next() {
		var ex pkg.NoteExcerpt
		if err := rows.Scan(&ex.ProviderName, &ex.NoteDate, &ex.Excerpt); err != nil {
			return nil, err
		}
		excerpts = append(excerpts, ex)
	}
	return excerpts, rows.Err()
}

// UpcomingAppointments returns appointments from now forward, soonest first.
func (r *Repository) UpcomingAppointments(ctx context.Context, tenantID, userID string, limit int) ([]pkg.Appointment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT provider_name, facility_name, appointment_date, duration_minutes, notes
         FROM appointments
         WHERE tenant_id = $1 AND user_id = $2 AND appointment_date >= NOW()
         ORDER BY appointment_date ASC
         LIMIT $3`,
		tenantID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var appts []pkg.Appointment
	for rows.Next() {
		var a pkg.Appointment
		if err := rows.Scan(&a.ProviderName, &a.FacilityName, &a.AppointmentDate,
			&a.DurationMinutes, &a.Notes); err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

// Append records one guardrail violation for audit review. Implements
// agent.AuditSink.
func (r *Repository) Append(ctx context.Context, v agent.Violation) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO guardrail_violations (tenant_id, user_id, session_id, pattern_name, raw_text)
         VALUES ($1, $2, $3, $4, $5)`,
		v.TenantID, v.UserID, v.SessionID, v.PatternName, v.TruncatedRawText)
	return err
}
