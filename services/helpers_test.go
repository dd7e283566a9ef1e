package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"food-order-desk/apperrors"
	"food-order-desk/models"
	"food-order-desk/testutil"

	"gorm.io/gorm"
)

// monday noon, UTC
var fixtureStart = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db      *gorm.DB
	clock   *testutil.Clock
	menu    *testutil.Menu
	tickets *TicketService
	policy  *PolicyService
	orders  *OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	clock := testutil.NewClock(fixtureStart)
	tickets := NewTicketService(NewGormTicketStore(db), WithTicketClock(clock.Now))
	policy := NewPolicyService(db, WithLocation(time.UTC), WithPolicyClock(clock.Now))
	return &fixture{
		db:      db,
		clock:   clock,
		menu:    testutil.SeedMenu(t, db),
		tickets: tickets,
		policy:  policy,
		orders:  NewOrderService(db, NewGormTicketStore(db), policy, WithOrderClock(clock.Now)),
	}
}

func (f *fixture) seedRestaurant(t *testing.T) *models.RestaurantInfo {
	t.Helper()
	day := models.DaySchedule{Open: "10:00", Close: "22:00"}
	info := &models.RestaurantInfo{
		Name: "Test Kitchen",
		OpeningHours: models.OpeningHours{
			"monday": day, "tuesday": day, "wednesday": day, "thursday": day,
			"friday": day, "saturday": day, "sunday": day,
		},
		DeliveryArea:                 []string{"Centro", "Jardins"},
		DeliveryFee:                  5,
		MinOrderValue:                20,
		EstimatedDeliveryTimeMinutes: 40,
	}
	testutil.MustCreate(t, f.db, info)
	return info
}

func (f *fixture) openTicket(t *testing.T, contact string) *models.Ticket {
	t.Helper()
	ticket, err := f.tickets.Create(context.Background(), contact)
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return ticket
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

func requireKind(t *testing.T, err error, kind apperrors.Kind) *apperrors.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperrors.Error, got %T: %v", err, err)
	}
	if appErr.Kind != kind {
		t.Fatalf("kind = %s, want %s (%v)", appErr.Kind, kind, err)
	}
	return appErr
}
