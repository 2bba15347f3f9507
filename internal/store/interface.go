package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when the requested appointment does not exist.
var ErrNotFound = errors.New("appointment not found")

// Appointment statuses as persisted. Processing moves InProgress -> Completed
// or InProgress -> Error; uploads alone never change status.
const (
	StatusInProgress = "InProgress"
	StatusCompleted  = "Completed"
	StatusError      = "Error"
)

// Appointment is one visit record owned by a user. ProcessedSummary holds
// the schema-versioned structured summary as a free-form map so the record
// round-trips regardless of which schema version wrote it.
type Appointment struct {
	Title              string         `firestore:"title,omitempty"`
	Status             string         `firestore:"status,omitempty"`
	RawTranscript      string         `firestore:"rawTranscript,omitempty"`
	Notes              string         `firestore:"notes,omitempty"`
	RecordingLink      string         `firestore:"recordingLink,omitempty"`
	DocumentLinks      []string       `firestore:"documentLinks,omitempty"`
	ProcessedSummary   map[string]any `firestore:"processedSummary,omitempty"`
	SuggestedQuestions []string       `firestore:"suggestedQuestions,omitempty"`
	ErrorMessage       string         `firestore:"errorMessage,omitempty"`
	LastUpdated        time.Time      `firestore:"lastUpdated,omitempty"`
}

// AppointmentStore persists appointment records per user.
type AppointmentStore interface {
	// Get loads an appointment, or ErrNotFound.
	Get(ctx context.Context, uid, appointmentID string) (*Appointment, error)

	// Update merges the given fields into the record, creating it if
	// needed. Fields not named are left untouched.
	Update(ctx context.Context, uid, appointmentID string, fields map[string]any) error
}
