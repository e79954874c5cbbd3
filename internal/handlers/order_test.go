package handlers

import "testing"

func TestValidateOrderRequestRejectsEmptyItems(t *testing.T) {
	req := createOrderRequest{
		PaymentMethod: "cash",
		DeliveryType:  "pickup",
	}
	if err := validateOrderRequest(req); err == nil {
		t.Fatal("expected error for empty item list")
	}
}

func TestValidateOrderRequestRejectsZeroQuantity(t *testing.T) {
	req := createOrderRequest{
		Items:         []createOrderItemRequest{{MenuItemID: "abc", Quantity: 0}},
		PaymentMethod: "cash",
		DeliveryType:  "pickup",
	}
	if err := validateOrderRequest(req); err == nil {
		t.Fatal("expected error for zero quantity")
	}
}

func TestValidateOrderRequestPaymentMethods(t *testing.T) {
	for _, method := range []string{"cash", "card", "credits"} {
		req := createOrderRequest{
			Items:         []createOrderItemRequest{{MenuItemID: "abc", Quantity: 1}},
			PaymentMethod: method,
			DeliveryType:  "pickup",
		}
		if err := validateOrderRequest(req); err != nil {
			t.Fatalf("expected %s to be accepted, got %v", method, err)
		}
	}

	req := createOrderRequest{
		Items:         []createOrderItemRequest{{MenuItemID: "abc", Quantity: 1}},
		PaymentMethod: "bitcoin",
		DeliveryType:  "pickup",
	}
	if err := validateOrderRequest(req); err == nil {
		t.Fatal("expected unknown payment method to be rejected")
	}
}

func TestValidateOrderRequestDeliveryNeedsAddress(t *testing.T) {
	req := createOrderRequest{
		Items:         []createOrderItemRequest{{MenuItemID: "abc", Quantity: 1}},
		PaymentMethod: "cash",
		DeliveryType:  "delivery",
	}
	if err := validateOrderRequest(req); err == nil {
		t.Fatal("expected error for delivery without address")
	}

	req.DeliveryAddress = "Dorm 4, Room 12"
	if err := validateOrderRequest(req); err != nil {
		t.Fatalf("expected delivery with address to pass, got %v", err)
	}
}

func TestValidateOrderRequestRejectsUnknownDeliveryType(t *testing.T) {
	req := createOrderRequest{
		Items:         []createOrderItemRequest{{MenuItemID: "abc", Quantity: 1}},
		PaymentMethod: "cash",
		DeliveryType:  "drone",
	}
	if err := validateOrderRequest(req); err == nil {
		t.Fatal("expected unknown delivery type to be rejected")
	}
}
