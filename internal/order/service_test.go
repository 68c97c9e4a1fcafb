package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/grillpoint/grillpoint-bot/internal/model"
)

type stubCatalog map[string]model.MenuItem

func (s stubCatalog) ItemByID(id string) (model.MenuItem, bool) {
	item, ok := s[id]
	return item, ok
}

type stubRepo struct {
	saved []*model.Order
	err   error
}

func (r *stubRepo) SaveOrder(_ context.Context, o *model.Order) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, o)
	return nil
}

type stubNotifier struct {
	notified []*model.Order
	err      error
}

func (n *stubNotifier) NotifyOrder(_ context.Context, o *model.Order) error {
	if n.err != nil {
		return n.err
	}
	n.notified = append(n.notified, o)
	return nil
}

func testCatalog() stubCatalog {
	return stubCatalog{
		"lula":     {ID: "lula", Name: "Люля-кебаб", PriceKopecks: 20000, WeightGrams: 250},
		"shawarma": {ID: "shawarma", Name: "Шаурма", PriceKopecks: 25000},
	}
}

func testSession() *model.Session {
	s := model.NewSession(42)
	s.UserNick = "Иван"
	s.State = model.StateConfirm
	s.Cart.StartOrIncrement("lula")
	s.Cart.Adjust("shawarma", 2)
	s.Comment = "без лука"
	s.Draft = model.DeliveryDraft{
		Method:         model.MethodDelivery,
		AddressDisplay: "Красное Село, Советский переулок, 3",
		Phone:          "+79991234567",
		PhoneDisplay:   "+7 999 123-45-67",
	}
	return s
}

func TestFinalize(t *testing.T) {
	repo := &stubRepo{}
	notifier := &stubNotifier{}
	svc := NewService(testCatalog(), repo, notifier, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC) }

	sess := testSession()
	order, err := svc.Finalize(context.Background(), sess)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if order.ID == "" {
		t.Error("order has no id")
	}
	if order.Total() != 70000 {
		t.Errorf("total = %d, want 70000", order.Total())
	}
	if len(order.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(order.Lines))
	}
	if order.Lines[0].ItemName != "Люля-кебаб" || order.Lines[1].Quantity != 2 {
		t.Errorf("lines = %+v", order.Lines)
	}
	if order.Status != model.OrderStatusCreated {
		t.Errorf("status = %s", order.Status)
	}
	if order.UserName != "Иван" || order.Comment != "без лука" {
		t.Errorf("order = %+v", order)
	}

	if len(repo.saved) != 1 || len(notifier.notified) != 1 {
		t.Errorf("saved=%d notified=%d, want 1/1", len(repo.saved), len(notifier.notified))
	}

	// Финализация сбрасывает сессию.
	if sess.State != model.StateIdle || !sess.Cart.IsEmpty() || sess.Comment != "" {
		t.Errorf("session not reset: state=%s", sess.State)
	}
}

func TestFinalizeEmptyCart(t *testing.T) {
	svc := NewService(testCatalog(), &stubRepo{}, &stubNotifier{}, zap.NewNop())

	_, err := svc.Finalize(context.Background(), model.NewSession(42))
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
}

func TestFinalizeDropsUnknownItems(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(testCatalog(), repo, &stubNotifier{}, zap.NewNop())

	sess := testSession()
	sess.Cart.StartOrIncrement("ghost")

	order, err := svc.Finalize(context.Background(), sess)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	for _, l := range order.Lines {
		if l.ItemID == "ghost" {
			t.Error("unknown item survived finalization")
		}
	}
}

func TestFinalizeAllItemsGone(t *testing.T) {
	svc := NewService(stubCatalog{}, &stubRepo{}, &stubNotifier{}, zap.NewNop())

	sess := testSession()
	if _, err := svc.Finalize(context.Background(), sess); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
	// Неудачная финализация не трогает сессию.
	if sess.State != model.StateConfirm || sess.Cart.IsEmpty() {
		t.Error("failed finalization mutated the session")
	}
}

func TestFinalizeSaveError(t *testing.T) {
	repoErr := errors.New("db down")
	notifier := &stubNotifier{}
	svc := NewService(testCatalog(), &stubRepo{err: repoErr}, notifier, zap.NewNop())

	sess := testSession()
	if _, err := svc.Finalize(context.Background(), sess); !errors.Is(err, repoErr) {
		t.Fatalf("err = %v, want wrapped repo error", err)
	}
	if len(notifier.notified) != 0 {
		t.Error("operator notified despite save failure")
	}
	if sess.State != model.StateConfirm {
		t.Error("failed finalization reset the session")
	}
}

func TestFinalizeNotifyErrorDoesNotFail(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(testCatalog(), repo, &stubNotifier{err: errors.New("tg down")}, zap.NewNop())

	sess := testSession()
	if _, err := svc.Finalize(context.Background(), sess); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(repo.saved) != 1 {
		t.Error("order was not saved")
	}
}
