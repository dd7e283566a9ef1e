package dispatcher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"food-order-desk/apperrors"
	"food-order-desk/models"
	"food-order-desk/services"
	"food-order-desk/testutil"
)

type harness struct {
	d      *Dispatcher
	menu   *testutil.Menu
	ticket *models.Ticket
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	clock := testutil.NewClock(time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC))
	menu := testutil.SeedMenu(t, db)
	day := models.DaySchedule{Open: "00:00", Close: "23:59"}
	testutil.MustCreate(t, db, &models.RestaurantInfo{
		Name:                         "Test Kitchen",
		OpeningHours:                 models.OpeningHours{"monday": day},
		DeliveryArea:                 []string{"Centro"},
		DeliveryFee:                  5,
		MinOrderValue:                10,
		EstimatedDeliveryTimeMinutes: 35,
	})

	store := services.NewGormTicketStore(db)
	tickets := services.NewTicketService(store, services.WithTicketClock(clock.Now))
	policy := services.NewPolicyService(db, services.WithLocation(time.UTC), services.WithPolicyClock(clock.Now))
	orders := services.NewOrderService(db, store, policy, services.WithOrderClock(clock.Now))

	ticket, err := tickets.Create(context.Background(), "+5511999990000")
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return &harness{d: New(tickets, orders, policy), menu: menu, ticket: ticket}
}

// jsonParams decodes like an HTTP body would, so numbers arrive as float64.
func jsonParams(t *testing.T, raw string) map[string]any {
	t.Helper()
	var p map[string]any
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("bad test params: %v", err)
	}
	return p
}

func requireFailure(t *testing.T, res Result, kind apperrors.Kind, message string) {
	t.Helper()
	if res.Success {
		t.Fatalf("expected failure, got %+v", res)
	}
	if res.Kind() != kind {
		t.Errorf("kind = %s, want %s (%s)", res.Kind(), kind, res.Error)
	}
	if message != "" && res.Error != message {
		t.Errorf("error = %q, want %q", res.Error, message)
	}
}

func TestCatalog(t *testing.T) {
	h := newHarness(t)
	want := []string{
		"close_ticket", "create_order", "get_order", "update_order", "cancel_order", "list_orders",
		"get_menu", "search_menu_item", "get_menu_item_details", "get_restaurant_hours",
		"get_delivery_info", "get_promotions",
	}
	tools := h.d.Tools()
	if len(tools) != len(want) {
		t.Fatalf("catalog has %d tools, want %d", len(tools), len(want))
	}
	for i, name := range want {
		if tools[i].Name != name {
			t.Errorf("tools[%d] = %s, want %s", i, tools[i].Name, name)
		}
		if tools[i].Parameters == nil {
			t.Errorf("%s has nil parameters", name)
		}
	}
}

func TestUnknownTool(t *testing.T) {
	h := newHarness(t)
	res := h.d.Execute(context.Background(), "order_pizza", nil)
	requireFailure(t, res, apperrors.KindNotFound, "tool 'order_pizza' not found")
}

func TestParameterShape(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		name    string
		tool    string
		params  string
		message string
	}{
		{"missing required", "close_ticket", `{}`, "ticketId is required and must be a string"},
		{"empty required", "close_ticket", `{"ticketId": ""}`, "ticketId is required and must be a string"},
		{"wrong required type", "get_order", `{"orderId": 42}`, "orderId is required and must be a string"},
		{"items not an array", "create_order", `{"ticketId": "t", "items": "pizza", "deliveryType": "pickup"}`, "items is required and must be an array"},
		{"fractional limit", "list_orders", `{"ticketId": "t", "limit": 1.5}`, "limit must be an integer"},
		{"out of range limit", "list_orders", `{"ticketId": "t", "limit": 1e300}`, "limit must be an integer"},
		{"negative out of range limit", "list_orders", `{"ticketId": "t", "limit": -1e19}`, "limit must be an integer"},
		{"optional wrong type", "get_delivery_info", `{"address": ["Centro"]}`, "address must be a string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := h.d.Execute(context.Background(), tt.tool, jsonParams(t, tt.params))
			requireFailure(t, res, apperrors.KindValidation, tt.message)
		})
	}
}

func TestCloseTicket(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res := h.d.Execute(ctx, "close_ticket", map[string]any{"ticketId": h.ticket.ID})
	if !res.Success {
		t.Fatalf("close_ticket failed: %s", res.Error)
	}
	// closing again is still a success
	if res := h.d.Execute(ctx, "close_ticket", map[string]any{"ticketId": h.ticket.ID}); !res.Success {
		t.Errorf("second close_ticket failed: %s", res.Error)
	}

	res = h.d.Execute(ctx, "close_ticket", map[string]any{"ticketId": "missing"})
	requireFailure(t, res, apperrors.KindNotFound, "ticket with id 'missing' not found")
}

func TestCreateOrderThroughDispatcher(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	raw := `{"ticketId": "` + h.ticket.ID + `", "deliveryType": "delivery", "deliveryAddress": "Rua 1, Centro",
		"items": [{"menuItemId": "` + h.menu.Pizza.ID + `", "quantity": 2, "notes": "well done"}]}`
	res := h.d.Execute(ctx, "create_order", jsonParams(t, raw))
	if !res.Success {
		t.Fatalf("create_order failed: %s", res.Error)
	}
	out := res.Result.(map[string]any)
	if out["total"] != 55.0 || out["status"] != models.StatusPending {
		t.Errorf("result = %+v", out)
	}

	orderID := out["order_id"].(string)
	got := h.d.Execute(ctx, "get_order", map[string]any{"orderId": orderID})
	if !got.Success {
		t.Fatalf("get_order failed: %s", got.Error)
	}
	order := got.Result.(*models.Order)
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Errorf("order items = %+v", order.Items)
	}

	list := h.d.Execute(ctx, "list_orders", jsonParams(t, `{"ticketId": "`+h.ticket.ID+`", "limit": 5}`))
	if !list.Success || list.Result.(map[string]any)["count"] != 1 {
		t.Errorf("list_orders = %+v", list)
	}
}

func TestCreateOrderLineValidation(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		name    string
		items   string
		kind    apperrors.Kind
		message string
	}{
		{"missing menu item id", `[{"quantity": 1}]`, apperrors.KindValidation, "items[0].menuItemId is required"},
		{"string quantity", `[{"menuItemId": "x", "quantity": "two"}]`, apperrors.KindValidation, ""},
		{"empty list", `[]`, apperrors.KindValidation, "items must contain at least one item"},
		{"unknown item", `[{"menuItemId": "ghost", "quantity": 1}]`, apperrors.KindNotFound, "menu item ghost not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"ticketId": "` + h.ticket.ID + `", "deliveryType": "pickup", "items": ` + tt.items + `}`
			res := h.d.Execute(context.Background(), "create_order", jsonParams(t, raw))
			requireFailure(t, res, tt.kind, tt.message)
		})
	}
}

func TestUpdateAndCancelThroughDispatcher(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	raw := `{"ticketId": "` + h.ticket.ID + `", "deliveryType": "pickup",
		"items": [{"menuItemId": "` + h.menu.Pizza.ID + `", "quantity": 1}]}`
	created := h.d.Execute(ctx, "create_order", jsonParams(t, raw))
	if !created.Success {
		t.Fatalf("create_order failed: %s", created.Error)
	}
	orderID := created.Result.(map[string]any)["order_id"].(string)

	res := h.d.Execute(ctx, "update_order", map[string]any{"orderId": orderID})
	requireFailure(t, res, apperrors.KindValidation,
		"at least one of itemsToAdd, itemsToRemove, or itemsToUpdate must be provided")

	res = h.d.Execute(ctx, "update_order", jsonParams(t,
		`{"orderId": "`+orderID+`", "itemsToAdd": [{"menuItemId": "`+h.menu.Soda.ID+`", "quantity": 2}]}`))
	if !res.Success {
		t.Fatalf("update_order failed: %s", res.Error)
	}
	if total := res.Result.(map[string]any)["total"]; total != 43.0 {
		t.Errorf("total = %v, want 43", total)
	}

	res = h.d.Execute(ctx, "cancel_order", map[string]any{"orderId": orderID, "reason": "too slow"})
	if !res.Success {
		t.Fatalf("cancel_order failed: %s", res.Error)
	}
	res = h.d.Execute(ctx, "cancel_order", map[string]any{"orderId": orderID})
	requireFailure(t, res, apperrors.KindBusinessRule, "order is already cancelled")
}

func TestPolicyTools(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	menu := h.d.Execute(ctx, "get_menu", nil)
	if !menu.Success || menu.Result.(map[string]any)["count"] != 2 {
		t.Errorf("get_menu = %+v", menu)
	}

	search := h.d.Execute(ctx, "search_menu_item", map[string]any{"query": "soda"})
	if !search.Success || search.Result.(map[string]any)["count"] != 1 {
		t.Errorf("search_menu_item = %+v", search)
	}

	details := h.d.Execute(ctx, "get_menu_item_details", map[string]any{"menuItemId": h.menu.SoldOut.ID})
	if !details.Success || details.Result.(*models.MenuItem).Category == nil {
		t.Errorf("get_menu_item_details = %+v", details)
	}

	hours := h.d.Execute(ctx, "get_restaurant_hours", nil)
	if !hours.Success || !hours.Result.(*services.RestaurantHours).IsOpen {
		t.Errorf("get_restaurant_hours = %+v", hours)
	}

	info := h.d.Execute(ctx, "get_delivery_info", map[string]any{"address": "Moema"})
	if !info.Success {
		t.Fatalf("get_delivery_info failed: %s", info.Error)
	}
	if in := info.Result.(*services.DeliveryInfo).IsAddressInArea; in == nil || *in {
		t.Errorf("Moema reported in area")
	}

	promos := h.d.Execute(ctx, "get_promotions", nil)
	if !promos.Success || promos.Result.(map[string]any)["count"] != 0 {
		t.Errorf("get_promotions = %+v", promos)
	}
}
