package service

import (
	"errors"
	"testing"

	"github.com/aurelia-jewelry/internal/constants"
	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/repository"
)

func seedPendingOrder(t *testing.T, repo *repository.GormOrderRepository, sessionID string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:         "ORD20260101" + sessionID,
		StripeSessionID: sessionID,
		CustomerName:    "Ana",
		CustomerEmail:   "ana@example.com",
		TotalAmount:     models.MustMoney("50"),
		Currency:        "usd",
		Status:          constants.OrderStatusPending,
		Items:           []models.OrderItem{{ProductID: 1, Name: "Band", Quantity: 1, UnitPrice: models.MustMoney("50"), TotalPrice: models.MustMoney("50")}},
	}
	if _, err := repo.CreateIfAbsent(order); err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	return order
}

func TestUpdateOrderStatusTransitions(t *testing.T) {
	repo := repository.NewOrderRepository(openServiceTestDB(t))
	mail := &fakeMailQueue{}
	svc := NewOrderService(repo, mail)
	order := seedPendingOrder(t, repo, "S1")

	updated, err := svc.UpdateOrderStatus(order.ID, " Completed ")
	if err != nil {
		t.Fatalf("complete order failed: %v", err)
	}
	if updated.Status != constants.OrderStatusCompleted || updated.CompletedAt == nil {
		t.Fatalf("unexpected order after completion: %+v", updated)
	}
	if len(mail.statuses) != 1 || mail.statuses[0].Status != constants.OrderStatusCompleted {
		t.Fatalf("status email should be enqueued: %+v", mail.statuses)
	}

	for _, target := range []string{constants.OrderStatusCancelled, constants.OrderStatusPending, constants.OrderStatusCompleted} {
		if _, err := svc.UpdateOrderStatus(order.ID, target); !errors.Is(err, ErrOrderStatusInvalid) {
			t.Fatalf("completed -> %s should be rejected, got %v", target, err)
		}
	}
}

func TestUpdateOrderStatusCancelAndMissing(t *testing.T) {
	repo := repository.NewOrderRepository(openServiceTestDB(t))
	svc := NewOrderService(repo, nil)
	order := seedPendingOrder(t, repo, "S2")

	if _, err := svc.UpdateOrderStatus(order.ID, "shipped"); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("unknown target should be rejected, got %v", err)
	}
	cancelled, err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusCancelled)
	if err != nil || cancelled.CancelledAt == nil {
		t.Fatalf("cancel failed: %+v err=%v", cancelled, err)
	}
	if _, err := svc.UpdateOrderStatus(9999, constants.OrderStatusCompleted); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListOrdersForAdminRejectsUnknownStatus(t *testing.T) {
	repo := repository.NewOrderRepository(openServiceTestDB(t))
	svc := NewOrderService(repo, nil)
	seedPendingOrder(t, repo, "S3")

	if _, _, err := svc.ListOrdersForAdmin(repository.OrderListFilter{Status: "paid"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	orders, total, err := svc.ListOrdersForAdmin(repository.OrderListFilter{Status: constants.OrderStatusPending})
	if err != nil || total != 1 || len(orders[0].Items) != 1 {
		t.Fatalf("unexpected list: total=%d err=%v", total, err)
	}
}
