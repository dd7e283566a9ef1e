package services

import (
	"context"
	"errors"
	"time"

	"food-order-desk/apperrors"
	"food-order-desk/models"

	"gorm.io/gorm"
)

// TicketStore is the single authoritative home of ticket state.
type TicketStore interface {
	Create(ctx context.Context, t *models.Ticket) error
	Get(ctx context.Context, id string) (*models.Ticket, error)
	ActiveByContact(ctx context.Context, contact string) (*models.Ticket, error)
	Touch(ctx context.Context, id string, at time.Time) error
	// Close is the only transition to closed. With idleBefore set, a ticket
	// whose last interaction is after it stays open. Closing a closed ticket
	// changes nothing.
	Close(ctx context.Context, id string, at time.Time, idleBefore *time.Time) (CloseOutcome, error)
	ListOpen(ctx context.Context) ([]models.Ticket, error)
}

// CloseOutcome says what a Close call found.
type CloseOutcome int

const (
	CloseNotFound CloseOutcome = iota
	CloseApplied
	CloseAlreadyClosed
	// CloseStillActive means the ticket was touched after the idle cutoff.
	CloseStillActive
)

type GormTicketStore struct {
	db *gorm.DB
}

func NewGormTicketStore(db *gorm.DB) *GormTicketStore {
	return &GormTicketStore{db: db}
}

func (s *GormTicketStore) Create(ctx context.Context, t *models.Ticket) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return apperrors.Internal("create ticket", err)
	}
	return nil
}

func (s *GormTicketStore) Get(ctx context.Context, id string) (*models.Ticket, error) {
	var t models.Ticket
	err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("ticket with id '%s' not found", id)
	}
	if err != nil {
		return nil, apperrors.Internal("load ticket", err)
	}
	return &t, nil
}

func (s *GormTicketStore) ActiveByContact(ctx context.Context, contact string) (*models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.WithContext(ctx).
		Where("contact = ? AND status = ?", contact, models.TicketOpen).
		Order("created_at desc").
		Limit(1).
		Find(&tickets).Error
	if err != nil {
		return nil, apperrors.Internal("load active ticket", err)
	}
	if len(tickets) == 0 {
		return nil, apperrors.NotFound("no active ticket found for contact %s", contact)
	}
	return &tickets[0], nil
}

func (s *GormTicketStore) Touch(ctx context.Context, id string, at time.Time) error {
	err := s.db.WithContext(ctx).Model(&models.Ticket{}).
		Where("id = ? AND status = ?", id, models.TicketOpen).
		Update("last_interaction_at", at).Error
	if err != nil {
		return apperrors.Internal("touch ticket", err)
	}
	return nil
}

// Close relies on times being stored in UTC: on sqlite they are text and the
// cutoff compares lexically.
func (s *GormTicketStore) Close(ctx context.Context, id string, at time.Time, idleBefore *time.Time) (CloseOutcome, error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&models.Ticket{}).Where("id = ? AND status = ?", id, models.TicketOpen)
	if idleBefore != nil {
		q = q.Where("last_interaction_at <= ?", idleBefore.UTC())
	}
	res := q.Updates(map[string]any{
		"status":              models.TicketClosed,
		"closed_at":           at,
		"last_interaction_at": at,
	})
	if res.Error != nil {
		return CloseNotFound, apperrors.Internal("close ticket", res.Error)
	}
	if res.RowsAffected > 0 {
		return CloseApplied, nil
	}

	var tickets []models.Ticket
	if err := db.Where("id = ?", id).Limit(1).Find(&tickets).Error; err != nil {
		return CloseNotFound, apperrors.Internal("close ticket", err)
	}
	switch {
	case len(tickets) == 0:
		return CloseNotFound, nil
	case tickets[0].Status == models.TicketClosed:
		return CloseAlreadyClosed, nil
	default:
		return CloseStillActive, nil
	}
}

func (s *GormTicketStore) ListOpen(ctx context.Context) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.WithContext(ctx).
		Where("status = ?", models.TicketOpen).
		Order("last_interaction_at").
		Find(&tickets).Error
	if err != nil {
		return nil, apperrors.Internal("list open tickets", err)
	}
	return tickets, nil
}
