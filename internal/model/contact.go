package model

import "time"

// Contact message statuses stored in contact_messages.status.
const (
	ContactUnread = "unread"
	ContactRead   = "read"
)

// ContactMessage is a visitor submission from the contact form.
type ContactMessage struct {
	ID          uint64    // contact_messages.id
	Name        string    // contact_messages.name
	Email       string    // contact_messages.email
	Message     string    // contact_messages.message
	Status      string    // contact_messages.status (unread or read)
	SubmittedAt time.Time // contact_messages.submitted_at
}
