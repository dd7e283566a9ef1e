package services

import (
	"context"
	"strings"
	"time"

	"food-order-desk/apperrors"
	"food-order-desk/models"
)

// DefaultIdleTimeout is how long an open ticket may go without interaction
// before the sweep closes it.
const DefaultIdleTimeout = 15 * time.Minute

type TicketService struct {
	store       TicketStore
	now         Clock
	idleTimeout time.Duration
}

type TicketOption func(*TicketService)

func WithTicketClock(now Clock) TicketOption {
	return func(s *TicketService) { s.now = now }
}

func WithIdleTimeout(d time.Duration) TicketOption {
	return func(s *TicketService) {
		if d > 0 {
			s.idleTimeout = d
		}
	}
}

func NewTicketService(store TicketStore, opts ...TicketOption) *TicketService {
	s := &TicketService{store: store, now: time.Now, idleTimeout: DefaultIdleTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TicketService) IdleTimeout() time.Duration {
	return s.idleTimeout
}

func (s *TicketService) clock() time.Time {
	return s.now().UTC()
}

// Create always opens a new ticket; it does not look for an existing open one.
func (s *TicketService) Create(ctx context.Context, contact string) (*models.Ticket, error) {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return nil, apperrors.Validation("contact is required")
	}
	now := s.clock()
	t := &models.Ticket{
		Contact:           contact,
		Status:            models.TicketOpen,
		CreatedAt:         now,
		LastInteractionAt: now,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TicketService) Get(ctx context.Context, id string) (*models.Ticket, error) {
	return s.store.Get(ctx, id)
}

// GetActiveByContact returns the newest open ticket for contact.
func (s *TicketService) GetActiveByContact(ctx context.Context, contact string) (*models.Ticket, error) {
	return s.store.ActiveByContact(ctx, strings.TrimSpace(contact))
}

// Touch records an interaction on an open ticket.
func (s *TicketService) Touch(ctx context.Context, id string) error {
	return s.store.Touch(ctx, id, s.clock())
}

// Close is the only path to the closed state, shared by explicit closes and
// the idle sweep.
func (s *TicketService) Close(ctx context.Context, id string) (bool, error) {
	outcome, err := s.store.Close(ctx, id, s.clock(), nil)
	if err != nil {
		return false, err
	}
	return outcome != CloseNotFound, nil
}

// Resolve returns the contact's open ticket after touching it, or opens a new
// one. Callers receiving inbound messages go through here so a contact keeps
// a single open ticket.
func (s *TicketService) Resolve(ctx context.Context, contact string) (*models.Ticket, bool, error) {
	existing, err := s.GetActiveByContact(ctx, contact)
	switch {
	case err == nil:
		if err := s.Touch(ctx, existing.ID); err != nil {
			return nil, false, err
		}
		existing.LastInteractionAt = s.clock()
		return existing, false, nil
	case apperrors.IsNotFound(err):
		t, err := s.Create(ctx, contact)
		return t, err == nil, err
	default:
		return nil, false, err
	}
}

// SweepIdle closes every open ticket idle for at least the idle timeout and
// returns the ids it closed. The cutoff is re-checked at close time, so a
// ticket touched, closed or deleted after the scan is skipped.
func (s *TicketService) SweepIdle(ctx context.Context) ([]string, error) {
	open, err := s.store.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	cutoff := now.Add(-s.idleTimeout)
	var closed []string
	for _, t := range open {
		if t.LastInteractionAt.After(cutoff) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return closed, err
		}
		outcome, err := s.store.Close(ctx, t.ID, now, &cutoff)
		if err != nil {
			return closed, err
		}
		if outcome == CloseApplied {
			closed = append(closed, t.ID)
		}
	}
	return closed, nil
}
