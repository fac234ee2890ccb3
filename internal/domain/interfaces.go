package domain

import (
	"context"

	"itscare/internal/models"
	"itscare/internal/summary"
)

// Repository owns the canonical booking collection. The computation
// packages never touch it directly; they consume snapshots handed out
// by the service layer.
type Repository interface {
	ListBookings(ctx context.Context) ([]models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	CreateBookings(ctx context.Context, bookings []models.Booking) error
	UpdateBooking(ctx context.Context, booking *models.Booking) error
	SetPaid(ctx context.Context, id string, paid models.PaidStatus) error
	DeleteBooking(ctx context.Context, id string) error
	DeleteAllBookings(ctx context.Context) error
}

// SummaryCache memoizes monthly settlement summaries between state
// changes. A miss returns (nil, nil).
type SummaryCache interface {
	Get(ctx context.Context, month string) (*summary.Monthly, error)
	Set(ctx context.Context, s *summary.Monthly) error
	Invalidate(ctx context.Context) error
}

// EventPublisher fans out domain events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SnapshotWorker schedules background CSV snapshots of the full
// booking collection.
type SnapshotWorker interface {
	EnqueueSnapshot(ctx context.Context) error
}
