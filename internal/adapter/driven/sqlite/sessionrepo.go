package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/capeksafety/reviewkit/internal/domain/model"
	"github.com/capeksafety/reviewkit/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ReviewStore = (*SessionRepo)(nil)

// SessionRepo is the SQLite implementation of the ReviewStore port. It
// persists sessions with their participants and frozen scope, comment
// ledgers in insertion order, and the approved-version history with
// snapshots serialized as JSON.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a SessionRepo backed by the given DB.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// UpsertSession inserts or updates a session by ID. Participants and
// scope members are rewritten wholesale, since both are small and
// position-ordered.
func (r *SessionRepo) UpsertSession(ctx context.Context, session model.ReviewSession) error {
	const upsert = `
		INSERT INTO review_sessions (id, name, description, kind, due_date, approved, baseline_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			kind = excluded.kind,
			due_date = excluded.due_date,
			approved = excluded.approved,
			baseline_version = excluded.baseline_version
	`

	approved := 0
	if session.Approved {
		approved = 1
	}

	_, err := r.db.Writer.ExecContext(ctx, upsert,
		session.ID, session.Name, session.Description, string(session.Kind),
		formatTime(session.DueDate), approved, session.BaselineVersion,
	)
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", session.ID, err)
	}

	if _, err := r.db.Writer.ExecContext(ctx,
		`DELETE FROM review_participants WHERE session_id = ?`, session.ID); err != nil {
		return fmt.Errorf("clear participants for %s: %w", session.ID, err)
	}
	for i, p := range session.Participants {
		done := 0
		if p.Done {
			done = 1
		}
		_, err := r.db.Writer.ExecContext(ctx,
			`INSERT INTO review_participants (session_id, position, name, email, role, done)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			session.ID, i, p.Name, p.Email, string(p.Role), done,
		)
		if err != nil {
			return fmt.Errorf("insert participant %s for %s: %w", p.Name, session.ID, err)
		}
	}

	if _, err := r.db.Writer.ExecContext(ctx,
		`DELETE FROM review_scope WHERE session_id = ?`, session.ID); err != nil {
		return fmt.Errorf("clear scope for %s: %w", session.ID, err)
	}
	for _, entityID := range session.Scope.IDs() {
		_, err := r.db.Writer.ExecContext(ctx,
			`INSERT INTO review_scope (session_id, entity_id) VALUES (?, ?)`,
			session.ID, entityID,
		)
		if err != nil {
			return fmt.Errorf("insert scope member %s for %s: %w", entityID, session.ID, err)
		}
	}

	return nil
}

// GetSessions returns all sessions in creation order with participants
// and scope populated.
func (r *SessionRepo) GetSessions(ctx context.Context) ([]model.ReviewSession, error) {
	const query = `
		SELECT id, name, description, kind, due_date, approved, baseline_version
		FROM review_sessions
		ORDER BY rowid
	`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.ReviewSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	for i := range sessions {
		if sessions[i].Participants, err = r.participants(ctx, sessions[i].ID); err != nil {
			return nil, err
		}
		if sessions[i].Scope, err = r.scope(ctx, sessions[i].ID); err != nil {
			return nil, err
		}
	}

	return sessions, nil
}

// DeleteSession removes a session; participants, scope, and comments go
// with it via foreign-key cascade.
func (r *SessionRepo) DeleteSession(ctx context.Context, sessionID string) error {
	res, err := r.db.Writer.ExecContext(ctx,
		`DELETE FROM review_sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete session %s: %w", sessionID, driven.ErrSessionNotFound)
	}
	return nil
}

// ReplaceComments rewrites the stored ledger of one session. Slice order
// becomes the persisted position so insertion order survives reload.
func (r *SessionRepo) ReplaceComments(ctx context.Context, sessionID string, comments []model.Comment) error {
	if _, err := r.db.Writer.ExecContext(ctx,
		`DELETE FROM review_comments WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear comments for %s: %w", sessionID, err)
	}

	const insert = `
		INSERT INTO review_comments (
			id, session_id, position, target_id, author, body,
			req_id, field, resolved, resolution, reopened_from_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for i, c := range comments {
		resolved := 0
		if c.Resolved {
			resolved = 1
		}
		_, err := r.db.Writer.ExecContext(ctx, insert,
			c.ID, sessionID, i, c.TargetID, c.Author, c.Text,
			c.ReqID, c.Field, resolved, c.Resolution, c.ReopenedFromID,
			formatTime(c.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert comment %s for %s: %w", c.ID, sessionID, err)
		}
	}

	return nil
}

// GetCommentsBySession returns the session's comments in insertion order.
func (r *SessionRepo) GetCommentsBySession(ctx context.Context, sessionID string) ([]model.Comment, error) {
	const query = `
		SELECT id, target_id, author, body, req_id, field,
		       resolved, resolution, reopened_from_id, created_at
		FROM review_comments
		WHERE session_id = ?
		ORDER BY position
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query comments for %s: %w", sessionID, err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

// ReplaceApprovedVersions rewrites the approved history, oldest first.
func (r *SessionRepo) ReplaceApprovedVersions(ctx context.Context, versions []model.ApprovedVersion) error {
	if _, err := r.db.Writer.ExecContext(ctx, `DELETE FROM approved_versions`); err != nil {
		return fmt.Errorf("clear approved versions: %w", err)
	}

	for i, v := range versions {
		snapshotJSON, err := json.Marshal(v.Snapshot)
		if err != nil {
			return fmt.Errorf("marshal snapshot %s: %w", v.Snapshot.Version, err)
		}
		_, err = r.db.Writer.ExecContext(ctx,
			`INSERT INTO approved_versions (position, session_id, approved_at, snapshot_json)
			 VALUES (?, ?, ?, ?)`,
			i, v.SessionID, formatTime(v.ApprovedAt), string(snapshotJSON),
		)
		if err != nil {
			return fmt.Errorf("insert approved version %d: %w", i, err)
		}
	}

	return nil
}

// GetApprovedVersions returns the approved history, oldest first.
func (r *SessionRepo) GetApprovedVersions(ctx context.Context) ([]model.ApprovedVersion, error) {
	const query = `
		SELECT session_id, approved_at, snapshot_json
		FROM approved_versions
		ORDER BY position
	`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query approved versions: %w", err)
	}
	defer rows.Close()

	var versions []model.ApprovedVersion
	for rows.Next() {
		var v model.ApprovedVersion
		var approvedAt, snapshotJSON string
		if err := rows.Scan(&v.SessionID, &approvedAt, &snapshotJSON); err != nil {
			return nil, fmt.Errorf("scan approved version: %w", err)
		}
		if v.ApprovedAt, err = parseTime(approvedAt); err != nil {
			return nil, fmt.Errorf("parse approved_at: %w", err)
		}
		if err := json.Unmarshal([]byte(snapshotJSON), &v.Snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate approved versions: %w", err)
	}

	return versions, nil
}

func (r *SessionRepo) participants(ctx context.Context, sessionID string) ([]model.Participant, error) {
	const query = `
		SELECT name, email, role, done
		FROM review_participants
		WHERE session_id = ?
		ORDER BY position
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query participants for %s: %w", sessionID, err)
	}
	defer rows.Close()

	var participants []model.Participant
	for rows.Next() {
		var p model.Participant
		var role string
		var done int
		if err := rows.Scan(&p.Name, &p.Email, &role, &done); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		p.Role = model.Role(role)
		p.Done = done != 0
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}

	return participants, nil
}

func (r *SessionRepo) scope(ctx context.Context, sessionID string) (model.ReviewScope, error) {
	const query = `SELECT entity_id FROM review_scope WHERE session_id = ? ORDER BY entity_id`

	rows, err := r.db.Reader.QueryContext(ctx, query, sessionID)
	if err != nil {
		return model.ReviewScope{}, fmt.Errorf("query scope for %s: %w", sessionID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return model.ReviewScope{}, fmt.Errorf("scan scope member: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return model.ReviewScope{}, fmt.Errorf("iterate scope members: %w", err)
	}

	return model.NewReviewScope(ids), nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(s scanner) (*model.ReviewSession, error) {
	var session model.ReviewSession
	var kind, dueDate string
	var approved int

	err := s.Scan(
		&session.ID, &session.Name, &session.Description, &kind,
		&dueDate, &approved, &session.BaselineVersion,
	)
	if err != nil {
		return nil, err
	}

	session.Kind = model.ReviewKind(kind)
	session.Approved = approved != 0

	session.DueDate, err = parseTime(dueDate)
	if err != nil {
		return nil, fmt.Errorf("parse due_date: %w", err)
	}

	return &session, nil
}

func scanComment(s scanner) (*model.Comment, error) {
	var comment model.Comment
	var resolved int
	var createdAt string

	err := s.Scan(
		&comment.ID, &comment.TargetID, &comment.Author, &comment.Text,
		&comment.ReqID, &comment.Field, &resolved, &comment.Resolution,
		&comment.ReopenedFromID, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	comment.Resolved = resolved != 0

	comment.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &comment, nil
}

// formatTime stores timestamps as RFC 3339 with nanoseconds in UTC so
// they reload exactly. The zero time is stored as the empty string.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
