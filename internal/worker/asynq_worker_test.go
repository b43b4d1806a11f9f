package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aurelia-jewelry/internal/constants"
	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/queue"
	"github.com/aurelia-jewelry/internal/repository"
	"github.com/aurelia-jewelry/internal/service"

	"github.com/hibiken/asynq"
)

type fakeOrderRepo struct {
	orders map[uint]*models.Order
	err    error
}

func (r *fakeOrderRepo) CreateIfAbsent(*models.Order) (bool, error) { return false, nil }

func (r *fakeOrderRepo) GetByID(id uint) (*models.Order, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.orders[id], nil
}

func (r *fakeOrderRepo) GetBySessionID(string) (*models.Order, error) { return nil, nil }

func (r *fakeOrderRepo) List(repository.OrderListFilter) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (r *fakeOrderRepo) TransitionStatus(uint, string, string, time.Time) (bool, error) {
	return false, nil
}

type fakeMailer struct {
	confirmations []string
	statuses      []string
	err           error
}

func (m *fakeMailer) SendOrderConfirmation(order *models.Order) error {
	m.confirmations = append(m.confirmations, order.OrderNo)
	return m.err
}

func (m *fakeMailer) SendOrderStatusEmail(order *models.Order, status string) error {
	m.statuses = append(m.statuses, order.OrderNo+":"+status)
	return m.err
}

func newTestConsumer(mailer *fakeMailer, repoErr error) *Consumer {
	repo := &fakeOrderRepo{
		err: repoErr,
		orders: map[uint]*models.Order{
			1: {ID: 1, OrderNo: "ORD20260314AAAAAA", CustomerEmail: "ana@example.com", Status: constants.OrderStatusPending},
			2: {ID: 2, OrderNo: "ORD20260314BBBBBB", Status: constants.OrderStatusPending},
		},
	}
	return newConsumer(repo, mailer, nil)
}

func TestHandleOrderConfirmationEmailSends(t *testing.T) {
	mailer := &fakeMailer{}
	consumer := newTestConsumer(mailer, nil)
	task, err := queue.NewOrderConfirmationEmailTask(queue.OrderConfirmationEmailPayload{OrderID: 1})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleOrderConfirmationEmail(context.Background(), task); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if len(mailer.confirmations) != 1 || mailer.confirmations[0] != "ORD20260314AAAAAA" {
		t.Fatalf("unexpected confirmations: %v", mailer.confirmations)
	}
}

func TestHandleOrderConfirmationEmailSkips(t *testing.T) {
	mailer := &fakeMailer{}
	consumer := newTestConsumer(mailer, nil)
	for _, orderID := range []uint{0, 2, 99} {
		task, _ := queue.NewOrderConfirmationEmailTask(queue.OrderConfirmationEmailPayload{OrderID: orderID})
		if err := consumer.handleOrderConfirmationEmail(context.Background(), task); err != nil {
			t.Fatalf("order %d: expected skip, got %v", orderID, err)
		}
	}
	if len(mailer.confirmations) != 0 {
		t.Fatalf("no email expected, got %v", mailer.confirmations)
	}

	bad := asynq.NewTask(queue.TaskOrderConfirmationEmail, []byte("{"))
	if err := consumer.handleOrderConfirmationEmail(context.Background(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("malformed payload should skip retry, got %v", err)
	}
}

func TestHandleOrderConfirmationEmailRetryPolicy(t *testing.T) {
	mailer := &fakeMailer{err: service.ErrEmailRecipientRejected}
	consumer := newTestConsumer(mailer, nil)
	task, _ := queue.NewOrderConfirmationEmailTask(queue.OrderConfirmationEmailPayload{OrderID: 1})
	if err := consumer.handleOrderConfirmationEmail(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("rejected recipient should skip retry, got %v", err)
	}

	mailer.err = errors.New("dial tcp timeout")
	err := consumer.handleOrderConfirmationEmail(context.Background(), task)
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("transient failure should be retried, got %v", err)
	}

	failing := newTestConsumer(&fakeMailer{}, errors.New("db down"))
	if err := failing.handleOrderConfirmationEmail(context.Background(), task); err == nil {
		t.Fatalf("repository failure should be returned for retry")
	}
}

func TestHandleOrderStatusEmailFallsBackToOrderStatus(t *testing.T) {
	mailer := &fakeMailer{}
	consumer := newTestConsumer(mailer, nil)
	task, _ := queue.NewOrderStatusEmailTask(queue.OrderStatusEmailPayload{OrderID: 1, Status: constants.OrderStatusCompleted})
	if err := consumer.handleOrderStatusEmail(context.Background(), task); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	task, _ = queue.NewOrderStatusEmailTask(queue.OrderStatusEmailPayload{OrderID: 1})
	if err := consumer.handleOrderStatusEmail(context.Background(), task); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	want := []string{"ORD20260314AAAAAA:completed", "ORD20260314AAAAAA:pending"}
	if len(mailer.statuses) != 2 || mailer.statuses[0] != want[0] || mailer.statuses[1] != want[1] {
		t.Fatalf("unexpected statuses: %v", mailer.statuses)
	}
}

func TestRegisterHandlesBothTasks(t *testing.T) {
	mux := asynq.NewServeMux()
	newTestConsumer(&fakeMailer{}, nil).Register(mux)
	for _, typename := range []string{queue.TaskOrderConfirmationEmail, queue.TaskOrderStatusEmail} {
		if _, pattern := mux.Handler(asynq.NewTask(typename, nil)); pattern != typename {
			t.Fatalf("task %s not registered, pattern %q", typename, pattern)
		}
	}
}
