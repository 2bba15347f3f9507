package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type firestoreStore struct {
	client *firestore.Client
}

// NewFirestore returns an AppointmentStore backed by Firestore. Records
// live at users/<uid>/appointments/<appointmentID>.
func NewFirestore(client *firestore.Client) AppointmentStore {
	return &firestoreStore{client: client}
}

func (s *firestoreStore) doc(uid, appointmentID string) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(uid).Collection("appointments").Doc(appointmentID)
}

func (s *firestoreStore) Get(ctx context.Context, uid, appointmentID string) (*Appointment, error) {
	snap, err := s.doc(uid, appointmentID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment %s: %w", appointmentID, err)
	}

	var appt Appointment
	if err := snap.DataTo(&appt); err != nil {
		return nil, fmt.Errorf("decode appointment %s: %w", appointmentID, err)
	}
	return &appt, nil
}

func (s *firestoreStore) Update(ctx context.Context, uid, appointmentID string, fields map[string]any) error {
	merged := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	merged["lastUpdated"] = time.Now().UTC()

	if _, err := s.doc(uid, appointmentID).Set(ctx, merged, firestore.MergeAll); err != nil {
		return fmt.Errorf("update appointment %s: %w", appointmentID, err)
	}
	return nil
}
