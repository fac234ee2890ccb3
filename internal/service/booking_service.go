package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"itscare/internal/csvio"
	"itscare/internal/domain"
	"itscare/internal/events"
	"itscare/internal/finance"
	"itscare/internal/listing"
	"itscare/internal/metrics"
	"itscare/internal/models"
	"itscare/internal/summary"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrMissingFields  = errors.New("customer, phone and booking date are required")
	ErrNoBookings     = errors.New("no bookings to export")
	ErrImportTooShort = errors.New("import needs a header row and at least one data row")
)

// GroupBy selects the aggregation axis for group summaries.
type GroupBy string

const (
	GroupByContractor GroupBy = "contractor"
	GroupByEngineer   GroupBy = "engineer"
)

// BookingService ties the booking repository to the settlement
// computations, keeping the summary cache coherent across mutations.
type BookingService struct {
	repo     domain.Repository
	cache    domain.SummaryCache
	eventBus domain.EventPublisher
	snapshot domain.SnapshotWorker
	policy   finance.CommissionPolicy
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.Repository, cache domain.SummaryCache, eventBus domain.EventPublisher, snapshot domain.SnapshotWorker, policy finance.CommissionPolicy, logger *zerolog.Logger) *BookingService {
	if policy == nil {
		policy = finance.DefaultPolicy()
	}
	return &BookingService{
		repo:     repo,
		cache:    cache,
		eventBus: eventBus,
		snapshot: snapshot,
		policy:   policy,
		logger:   logger,
	}
}

// Policy exposes the commission policy so transports can reuse it for
// per-row financial fields.
func (s *BookingService) Policy() finance.CommissionPolicy {
	return s.policy
}

func validateBooking(b *models.Booking) error {
	if strings.TrimSpace(b.Customer) == "" ||
		strings.TrimSpace(b.Phone) == "" ||
		strings.TrimSpace(b.BookDate) == "" {
		return ErrMissingFields
	}
	return nil
}

func (s *BookingService) CreateBooking(ctx context.Context, b *models.Booking) error {
	if err := validateBooking(b); err != nil {
		return err
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	b.Normalize()

	if err := s.repo.CreateBooking(ctx, b); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	metrics.IncBookingCreated()
	s.afterMutation(ctx, events.EventBookingCreated, b)
	return nil
}

func (s *BookingService) UpdateBooking(ctx context.Context, b *models.Booking) error {
	if err := validateBooking(b); err != nil {
		return err
	}
	b.Normalize()

	if err := s.repo.UpdateBooking(ctx, b); err != nil {
		return err
	}

	s.afterMutation(ctx, events.EventBookingUpdated, b)
	return nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBooking(ctx, id); err != nil {
		return err
	}

	s.afterMutation(ctx, events.EventBookingDeleted, b)
	return nil
}

// TogglePaid flips 완료/미완료 on a single booking and returns the new
// status.
func (s *BookingService) TogglePaid(ctx context.Context, id string) (models.PaidStatus, error) {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return "", err
	}

	next := b.Paid.Toggle()
	if err := s.repo.SetPaid(ctx, id, next); err != nil {
		return "", err
	}

	b.Paid = next
	s.afterMutation(ctx, events.EventBookingPaidToggled, b)
	return next, nil
}

func (s *BookingService) ClearAll(ctx context.Context) error {
	if err := s.repo.DeleteAllBookings(ctx); err != nil {
		return err
	}

	s.invalidateCache(ctx)
	s.publish(events.EventBookingsCleared, events.ImportEventPayload{})
	s.enqueueSnapshot(ctx)
	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

// ListBookings returns the filtered, sorted view of the collection.
func (s *BookingService) ListBookings(ctx context.Context, c listing.Criteria) ([]models.Booking, error) {
	bookings, err := s.repo.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	return listing.Apply(bookings, c, time.Now(), s.policy), nil
}

// Filters returns the distinct engineer and contractor values currently
// present, for populating filter dropdowns.
func (s *BookingService) Filters(ctx context.Context) (engineers, contractors []string, err error) {
	bookings, err := s.repo.ListBookings(ctx)
	if err != nil {
		return nil, nil, err
	}
	return listing.Engineers(bookings), listing.Contractors(bookings), nil
}

// MonthlySummary computes the settlement summary for a YYYY-MM month,
// serving from cache when a fresh copy exists.
func (s *BookingService) MonthlySummary(ctx context.Context, month string) (*summary.Monthly, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, month); err == nil && cached != nil {
			return cached, nil
		} else if err != nil && s.logger != nil {
			s.logger.Warn().Err(err).Str("month", month).Msg("summary cache read failed")
		}
	}

	bookings, err := s.repo.ListBookings(ctx)
	if err != nil {
		return nil, err
	}

	monthly := summary.Summarize(bookings, month, s.policy)
	if s.cache != nil {
		if err := s.cache.Set(ctx, &monthly); err != nil && s.logger != nil {
			s.logger.Warn().Err(err).Str("month", month).Msg("summary cache write failed")
		}
	}
	return &monthly, nil
}

// ImportCSV parses an exported or hand-edited CSV stream and appends
// its valid rows to the collection. Returns the accepted row count.
func (s *BookingService) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	rows, err := csvio.ReadRows(r)
	if err != nil {
		return 0, err
	}
	if len(rows) < 2 {
		return 0, ErrImportTooShort
	}

	bookings := csvio.MapRows(rows, time.Now(), nil)
	if len(bookings) == 0 {
		return 0, nil
	}

	if err := s.repo.CreateBookings(ctx, bookings); err != nil {
		return 0, fmt.Errorf("import bookings: %w", err)
	}

	metrics.AddImportRows(len(bookings))
	s.invalidateCache(ctx)
	s.publish(events.EventBookingsImported, events.ImportEventPayload{Accepted: len(bookings)})
	s.enqueueSnapshot(ctx)
	return len(bookings), nil
}

// ExportCSV writes the full collection as CSV. Refuses to write an
// empty file.
func (s *BookingService) ExportCSV(ctx context.Context, w io.Writer) error {
	bookings, err := s.repo.ListBookings(ctx)
	if err != nil {
		return err
	}
	if len(bookings) == 0 {
		return ErrNoBookings
	}
	return csvio.ExportBookings(w, bookings, s.policy)
}

// ExportGroupSummaryCSV writes a month's per-contractor or per-engineer
// settlement breakdown as CSV.
func (s *BookingService) ExportGroupSummaryCSV(ctx context.Context, w io.Writer, month string, by GroupBy) error {
	monthly, err := s.MonthlySummary(ctx, month)
	if err != nil {
		return err
	}

	label := "도급업체"
	buckets := monthly.ByContractor
	if by == GroupByEngineer {
		label = "담당기사"
		buckets = monthly.ByEngineer
	}
	if len(buckets) == 0 {
		return ErrNoBookings
	}
	return csvio.ExportGroupSummary(w, label, buckets)
}

func (s *BookingService) afterMutation(ctx context.Context, eventType string, b *models.Booking) {
	s.invalidateCache(ctx)
	s.publish(eventType, events.BookingEventPayload{
		BookingID:  b.ID,
		Customer:   b.Customer,
		BookDate:   b.BookDate,
		Engineer:   b.Engineer,
		Contractor: b.Contractor,
		Paid:       b.Paid,
	})
	s.enqueueSnapshot(ctx)
}

func (s *BookingService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil && s.logger != nil {
		s.logger.Warn().Err(err).Msg("summary cache invalidate failed")
	}
}

func (s *BookingService) publish(eventType string, payload interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil && s.logger != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("event publish failed")
	}
}

func (s *BookingService) enqueueSnapshot(ctx context.Context) {
	if s.snapshot == nil {
		return
	}
	if err := s.snapshot.EnqueueSnapshot(ctx); err != nil && s.logger != nil {
		s.logger.Warn().Err(err).Msg("snapshot enqueue failed")
	}
}
