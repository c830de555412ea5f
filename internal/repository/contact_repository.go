package repository

import (
	"context"
	"database/sql"

	"event-booking/internal/model"
)

// ContactRepo manages rows in the 'contact_messages' table.
type ContactRepo struct {
	db *sql.DB
}

// NewContactRepo constructs a ContactRepo with the given DB handle.
func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

// Create inserts a new message with status 'unread' and populates the
// generated ID and submission timestamp.
func (r *ContactRepo) Create(ctx context.Context, m *model.ContactMessage) error {
	const q = `INSERT INTO contact_messages (name, email, message, status) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Name, m.Email, m.Message, model.ContactUnread)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	const sel = `SELECT id, name, email, message, status, submitted_at FROM contact_messages WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, m.ID).Scan(
		&m.ID, &m.Name, &m.Email, &m.Message, &m.Status, &m.SubmittedAt)
}

// List returns all messages, newest first.
func (r *ContactRepo) List(ctx context.Context) ([]model.ContactMessage, error) {
	const q = `SELECT id, name, email, message, status, submitted_at
	           FROM contact_messages ORDER BY submitted_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := make([]model.ContactMessage, 0)
	for rows.Next() {
		var m model.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Status, &m.SubmittedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MarkRead flips a message to 'read'. Marking an already read message
// again is a no-op, not an error.
func (r *ContactRepo) MarkRead(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contact_messages SET status = ? WHERE id = ?`, model.ContactRead, id)
	if err != nil {
		return err
	}
	return r.checkFound(ctx, res, id)
}

// Delete removes a message.
func (r *ContactRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrContactNotFound
	}
	return nil
}

// checkFound distinguishes "row absent" from "update was a no-op"
// after an UPDATE that affected zero rows.
func (r *ContactRepo) checkFound(ctx context.Context, res sql.Result, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists uint64
	err = r.db.QueryRowContext(ctx, `SELECT id FROM contact_messages WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrContactNotFound
	}
	return err
}
