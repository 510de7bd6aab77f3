package store

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/attempt-engine/internal/attempt"
	"github.com/SAP-F-2025/attempt-engine/internal/models"
)

var ErrNotFound = errors.New("attempt record not found")

// Record is one live attempt held by the engine together with its test
// context. The record travels through the service layer; the aggregate inside
// stays single-owner.
type Record struct {
	ID          string
	CandidateID string
	Status      models.AttemptStatus
	Attempt     *attempt.Attempt
	Paper       *models.TestPaper

	CreatedAt   time.Time
	UpdatedAt   time.Time
	SubmittedAt *time.Time
}

// AttemptStore keeps live attempt records. Multi-device conflict resolution
// is the external persistence layer's concern, not the store's.
type AttemptStore interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Record, error)
	Ping(ctx context.Context) error
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
