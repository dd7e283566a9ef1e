package dispatcher

import (
	"context"
	"fmt"

	"food-order-desk/apperrors"
	"food-order-desk/models"
	"food-order-desk/services"
)

func (d *Dispatcher) registrations() []registration {
	return []registration{
		{
			tool: Tool{
				Name:        "close_ticket",
				Description: "Close the current support ticket.",
				Parameters: []Param{
					{Name: "ticketId", Type: TypeString, Description: "Ticket to close", Required: true},
				},
			},
			handle: d.closeTicket,
		},
		{
			tool: Tool{
				Name:        "create_order",
				Description: "Place a new order for the ticket's customer.",
				Parameters: []Param{
					{Name: "ticketId", Type: TypeString, Description: "Ticket the order belongs to", Required: true},
					{Name: "items", Type: TypeArray, Description: "Line items: [{menuItemId, quantity, notes?}]", Required: true},
					{Name: "deliveryType", Type: TypeString, Description: `"delivery" or "pickup"`, Required: true},
					{Name: "deliveryAddress", Type: TypeString, Description: "Required for delivery orders"},
				},
			},
			handle: d.createOrder,
		},
		{
			tool: Tool{
				Name:        "get_order",
				Description: "Fetch an order with its items.",
				Parameters: []Param{
					{Name: "orderId", Type: TypeString, Description: "Order id", Required: true},
				},
			},
			handle: d.getOrder,
		},
		{
			tool: Tool{
				Name:        "update_order",
				Description: "Add, remove or change items on an open order.",
				Parameters: []Param{
					{Name: "orderId", Type: TypeString, Description: "Order id", Required: true},
					{Name: "itemsToAdd", Type: TypeArray, Description: "New line items: [{menuItemId, quantity, notes?}]"},
					{Name: "itemsToRemove", Type: TypeArray, Description: "Order item ids to remove"},
					{Name: "itemsToUpdate", Type: TypeArray, Description: "Quantity changes: [{orderItemId, quantity}]; 0 removes the item"},
				},
			},
			handle: d.updateOrder,
		},
		{
			tool: Tool{
				Name:        "cancel_order",
				Description: "Cancel an order that has not been delivered.",
				Parameters: []Param{
					{Name: "orderId", Type: TypeString, Description: "Order id", Required: true},
					{Name: "reason", Type: TypeString, Description: "Why the customer cancelled"},
				},
			},
			handle: d.cancelOrder,
		},
		{
			tool: Tool{
				Name:        "list_orders",
				Description: "List the ticket's orders, newest first.",
				Parameters: []Param{
					{Name: "ticketId", Type: TypeString, Description: "Ticket id", Required: true},
					{Name: "status", Type: TypeString, Description: "Only orders in this status"},
					{Name: "limit", Type: TypeInteger, Description: "Maximum number of orders (default 10)"},
				},
			},
			handle: d.listOrders,
		},
		{
			tool: Tool{
				Name:        "get_menu",
				Description: "List the items currently on sale.",
				Parameters: []Param{
					{Name: "categoryId", Type: TypeString, Description: "Only items in this category"},
				},
			},
			handle: d.getMenu,
		},
		{
			tool: Tool{
				Name:        "search_menu_item",
				Description: "Search items on sale by name or description.",
				Parameters: []Param{
					{Name: "query", Type: TypeString, Description: "Text to look for", Required: true},
					{Name: "categoryId", Type: TypeString, Description: "Only items in this category"},
				},
			},
			handle: d.searchMenuItem,
		},
		{
			tool: Tool{
				Name:        "get_menu_item_details",
				Description: "Full details of one menu item, including its category.",
				Parameters: []Param{
					{Name: "menuItemId", Type: TypeString, Description: "Menu item id", Required: true},
				},
			},
			handle: d.getMenuItemDetails,
		},
		{
			tool: Tool{
				Name:        "get_restaurant_hours",
				Description: "Opening hours and whether the restaurant is open now.",
			},
			handle: d.getRestaurantHours,
		},
		{
			tool: Tool{
				Name:        "get_delivery_info",
				Description: "Delivery area, fee, minimum order and estimated time.",
				Parameters: []Param{
					{Name: "address", Type: TypeString, Description: "Check whether this address is served"},
				},
			},
			handle: d.getDeliveryInfo,
		},
		{
			tool: Tool{
				Name:        "get_promotions",
				Description: "Promotions running right now.",
			},
			handle: d.getPromotions,
		},
	}
}

func (d *Dispatcher) closeTicket(ctx context.Context, p params) (any, error) {
	id := p.str("ticketId")
	closed, err := d.tickets.Close(ctx, id)
	if err != nil {
		return nil, err
	}
	if !closed {
		return nil, apperrors.NotFound("ticket with id '%s' not found", id)
	}
	return map[string]any{
		"message":   fmt.Sprintf("Ticket %s closed successfully", id),
		"ticket_id": id,
	}, nil
}

func (d *Dispatcher) createOrder(ctx context.Context, p params) (any, error) {
	var lines []services.OrderLine
	if err := p.decode("items", &lines); err != nil {
		return nil, err
	}
	if err := checkEach(d.validate, "items", lines); err != nil {
		return nil, err
	}
	order, err := d.orders.Create(ctx, services.CreateOrderInput{
		TicketID:        p.str("ticketId"),
		Items:           lines,
		DeliveryType:    models.DeliveryType(p.str("deliveryType")),
		DeliveryAddress: p.str("deliveryAddress"),
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"order_id":               order.ID,
		"status":                 order.Status,
		"subtotal":               order.Subtotal,
		"delivery_fee":           order.DeliveryFee,
		"total":                  order.Total,
		"estimated_time_minutes": order.EstimatedTimeMinutes,
		"message":                "Order created successfully",
	}, nil
}

func (d *Dispatcher) getOrder(ctx context.Context, p params) (any, error) {
	return d.orders.Get(ctx, p.str("orderId"))
}

func (d *Dispatcher) updateOrder(ctx context.Context, p params) (any, error) {
	var in services.UpdateOrderInput
	if p.has("itemsToAdd") {
		in.ItemsToAdd = []services.OrderLine{}
		if err := p.decode("itemsToAdd", &in.ItemsToAdd); err != nil {
			return nil, err
		}
		if err := checkEach(d.validate, "itemsToAdd", in.ItemsToAdd); err != nil {
			return nil, err
		}
	}
	if p.has("itemsToRemove") {
		in.ItemsToRemove = []string{}
		if err := p.decode("itemsToRemove", &in.ItemsToRemove); err != nil {
			return nil, err
		}
	}
	if p.has("itemsToUpdate") {
		in.ItemsToUpdate = []services.ItemQuantity{}
		if err := p.decode("itemsToUpdate", &in.ItemsToUpdate); err != nil {
			return nil, err
		}
		if err := checkEach(d.validate, "itemsToUpdate", in.ItemsToUpdate); err != nil {
			return nil, err
		}
	}

	order, err := d.orders.Update(ctx, p.str("orderId"), in)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"order_id": order.ID,
		"status":   order.Status,
		"subtotal": order.Subtotal,
		"total":    order.Total,
		"items":    order.Items,
		"message":  "Order updated successfully",
	}, nil
}

func (d *Dispatcher) cancelOrder(ctx context.Context, p params) (any, error) {
	order, err := d.orders.Cancel(ctx, p.str("orderId"), p.str("reason"))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"order_id": order.ID,
		"status":   order.Status,
		"message":  "Order cancelled successfully",
	}, nil
}

func (d *Dispatcher) listOrders(ctx context.Context, p params) (any, error) {
	orders, err := d.orders.ListByTicket(ctx, p.str("ticketId"), models.OrderStatus(p.str("status")), p.int("limit"))
	if err != nil {
		return nil, err
	}
	return map[string]any{"orders": orders, "count": len(orders)}, nil
}

func (d *Dispatcher) getMenu(ctx context.Context, p params) (any, error) {
	items, err := d.policy.Menu(ctx, p.str("categoryId"))
	if err != nil {
		return nil, err
	}
	return map[string]any{"items": items, "count": len(items)}, nil
}

func (d *Dispatcher) searchMenuItem(ctx context.Context, p params) (any, error) {
	items, err := d.policy.SearchMenu(ctx, p.str("query"), p.str("categoryId"))
	if err != nil {
		return nil, err
	}
	return map[string]any{"items": items, "count": len(items)}, nil
}

func (d *Dispatcher) getMenuItemDetails(ctx context.Context, p params) (any, error) {
	return d.policy.MenuItem(ctx, p.str("menuItemId"))
}

func (d *Dispatcher) getRestaurantHours(ctx context.Context, _ params) (any, error) {
	return d.policy.RestaurantHours(ctx)
}

func (d *Dispatcher) getDeliveryInfo(ctx context.Context, p params) (any, error) {
	return d.policy.DeliveryInfo(ctx, p.str("address"))
}

func (d *Dispatcher) getPromotions(ctx context.Context, _ params) (any, error) {
	promos, err := d.policy.ActivePromotions(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"promotions": promos, "count": len(promos)}, nil
}
