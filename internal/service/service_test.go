package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/zoyabites/zoyabites-system/internal/model"
	"github.com/zoyabites/zoyabites-system/internal/razorpay"
	"github.com/zoyabites/zoyabites-system/internal/repository"
)

type stubRepo struct {
	Repository

	order    *model.Order
	orderErr error

	setRzpID    string
	setRzpErr   error
	setRzpCalls int

	markPaidCalls     int
	markPaidOrderID   string
	markPaidPaymentID string
	markPaidAlready   bool
	markPaidErr       error

	staleOrders []model.Order

	cancelCalls  int
	cancelResult bool

	accessCode    *model.AccessCode
	accessCodeErr error

	createdOrder *model.Order

	user    *model.User
	userErr error
}

func (s *stubRepo) Close() error { return nil }

func (s *stubRepo) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	return s.order, s.orderErr
}

func (s *stubRepo) SetRazorpayOrderID(ctx context.Context, id, razorpayOrderID string) error {
	s.setRzpCalls++
	s.setRzpID = razorpayOrderID
	return s.setRzpErr
}

func (s *stubRepo) MarkOrderPaid(ctx context.Context, id, razorpayPaymentID string) (bool, error) {
	s.markPaidCalls++
	s.markPaidOrderID = id
	s.markPaidPaymentID = razorpayPaymentID
	return s.markPaidAlready, s.markPaidErr
}

func (s *stubRepo) GetStalePendingOrders(ctx context.Context, before time.Time, limit int) ([]model.Order, error) {
	return s.staleOrders, nil
}

func (s *stubRepo) CancelPendingOrder(ctx context.Context, id string) (bool, error) {
	s.cancelCalls++
	return s.cancelResult, nil
}

func (s *stubRepo) FindUsableAccessCode(ctx context.Context, code string, now time.Time) (*model.AccessCode, error) {
	return s.accessCode, s.accessCodeErr
}

func (s *stubRepo) CreateOrder(ctx context.Context, userID string, items []model.LineItem, totalPaise int64, deliveryAddress, notes string) (*model.Order, error) {
	return s.createdOrder, nil
}

func (s *stubRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.user, s.userErr
}

type stubGateway struct {
	configured bool
	keyID      string

	createResult *razorpay.GatewayOrder
	createErr    error
	createAmount int64

	getResult *razorpay.GatewayOrder
	getErr    error

	verifyResult bool
}

func (g *stubGateway) Configured() bool { return g.configured }
func (g *stubGateway) KeyID() string    { return g.keyID }

func (g *stubGateway) CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*razorpay.GatewayOrder, error) {
	g.createAmount = amountPaise
	return g.createResult, g.createErr
}

func (g *stubGateway) GetOrder(ctx context.Context, gatewayOrderID string) (*razorpay.GatewayOrder, error) {
	return g.getResult, g.getErr
}

func (g *stubGateway) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return g.verifyResult
}

func newTestService(repo *stubRepo, gw *stubGateway) *Service {
	return NewService(repo, gw, nil, zap.NewNop(), "owner-master-code", 30*time.Minute)
}

func TestInitiateCheckout_ConvertsToMinorUnits(t *testing.T) {
	repo := &stubRepo{
		order: &model.Order{ID: "order-1", Status: model.OrderStatusPending},
	}
	gw := &stubGateway{
		configured:   true,
		keyID:        "key_id",
		createResult: &razorpay.GatewayOrder{ID: "order_rzp123"},
	}
	svc := newTestService(repo, gw)

	session, err := svc.InitiateCheckout(context.Background(), "order-1", 440)
	if err != nil {
		t.Fatalf("InitiateCheckout: %v", err)
	}

	if gw.createAmount != 44000 {
		t.Fatalf("gateway amount = %d, want 44000", gw.createAmount)
	}
	if session.AmountPaise != 44000 {
		t.Fatalf("session amount = %d, want 44000", session.AmountPaise)
	}
	if session.RazorpayOrderID != "order_rzp123" {
		t.Fatalf("session order = %s, want order_rzp123", session.RazorpayOrderID)
	}
	if repo.setRzpID != "order_rzp123" {
		t.Fatalf("persisted gateway ref = %s, want order_rzp123", repo.setRzpID)
	}
}

func TestInitiateCheckout_PersistFailureFailsCall(t *testing.T) {
	repo := &stubRepo{
		order:     &model.Order{ID: "order-1"},
		setRzpErr: errors.New("db down"),
	}
	gw := &stubGateway{
		configured:   true,
		createResult: &razorpay.GatewayOrder{ID: "order_rzp123"},
	}
	svc := newTestService(repo, gw)

	_, err := svc.InitiateCheckout(context.Background(), "order-1", 100)
	if err == nil {
		t.Fatalf("expected error when gateway ref cannot be persisted")
	}
}

func TestInitiateCheckout_NotConfigured(t *testing.T) {
	svc := newTestService(&stubRepo{}, &stubGateway{configured: false})

	_, err := svc.InitiateCheckout(context.Background(), "order-1", 100)
	if !errors.Is(err, razorpay.ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestInitiateCheckout_OrderNotFound(t *testing.T) {
	repo := &stubRepo{orderErr: repository.ErrOrderNotFound}
	svc := newTestService(repo, &stubGateway{configured: true})

	_, err := svc.InitiateCheckout(context.Background(), "missing", 100)
	if !errors.Is(err, repository.ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}

func TestVerifyPayment_SignatureMismatchDoesNotMutate(t *testing.T) {
	repo := &stubRepo{}
	gw := &stubGateway{configured: true, verifyResult: false}
	svc := newTestService(repo, gw)

	err := svc.VerifyPayment(context.Background(), "order_abc", "pay_xyz", "bad-signature", "order-1")
	if !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("err = %v, want ErrVerificationFailed", err)
	}
	if repo.markPaidCalls != 0 {
		t.Fatalf("order must not be mutated on signature mismatch")
	}
}

func TestVerifyPayment_CommitsPaidState(t *testing.T) {
	repo := &stubRepo{order: &model.Order{ID: "order-1", RazorpayOrderID: "order_abc"}}
	gw := &stubGateway{configured: true, verifyResult: true}
	svc := newTestService(repo, gw)

	err := svc.VerifyPayment(context.Background(), "order_abc", "pay_xyz", "sig", "order-1")
	if err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}
	if repo.markPaidCalls != 1 {
		t.Fatalf("markPaidCalls = %d, want 1", repo.markPaidCalls)
	}
	if repo.markPaidOrderID != "order-1" || repo.markPaidPaymentID != "pay_xyz" {
		t.Fatalf("paid with order=%s payment=%s", repo.markPaidOrderID, repo.markPaidPaymentID)
	}
}

func TestVerifyPayment_Idempotent(t *testing.T) {
	repo := &stubRepo{order: &model.Order{ID: "order-1", RazorpayOrderID: "order_abc"}}
	gw := &stubGateway{configured: true, verifyResult: true}
	svc := newTestService(repo, gw)

	if err := svc.VerifyPayment(context.Background(), "order_abc", "pay_xyz", "sig", "order-1"); err != nil {
		t.Fatalf("first verify: %v", err)
	}

	// Повторная проверка перезаписывает те же терминальные значения.
	repo.markPaidAlready = true
	if err := svc.VerifyPayment(context.Background(), "order_abc", "pay_xyz", "sig", "order-1"); err != nil {
		t.Fatalf("second verify: %v", err)
	}

	if repo.markPaidCalls != 2 {
		t.Fatalf("markPaidCalls = %d, want 2", repo.markPaidCalls)
	}
	if repo.markPaidPaymentID != "pay_xyz" {
		t.Fatalf("payment id changed on repeat: %s", repo.markPaidPaymentID)
	}
}

func TestVerifyPayment_GatewayOrderMismatch(t *testing.T) {
	// Подпись действительна, но выдана для другой платёжной сессии.
	repo := &stubRepo{order: &model.Order{ID: "order-1", RazorpayOrderID: "order_cheap"}}
	gw := &stubGateway{configured: true, verifyResult: true}
	svc := newTestService(repo, gw)

	err := svc.VerifyPayment(context.Background(), "order_abc", "pay_xyz", "sig", "order-1")
	if !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("err = %v, want ErrVerificationFailed", err)
	}
	if repo.markPaidCalls != 0 {
		t.Fatalf("order must not be mutated when gateway reference does not match")
	}
}

func TestVerifyPayment_MissingParameters(t *testing.T) {
	svc := newTestService(&stubRepo{}, &stubGateway{configured: true, verifyResult: true})

	err := svc.VerifyPayment(context.Background(), "", "pay_xyz", "sig", "order-1")
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("err = %v, want ErrInvalidPayload", err)
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	svc := newTestService(&stubRepo{createdOrder: &model.Order{ID: "order-1"}}, nil)

	tests := []struct {
		name  string
		items []model.LineItem
		total int64
	}{
		{"no items", nil, 1000},
		{"zero quantity", []model.LineItem{{ProductID: "p1", Name: "Biryani", Quantity: 0, PricePaise: 20000}}, 1000},
		{"negative price", []model.LineItem{{ProductID: "p1", Name: "Biryani", Quantity: 1, PricePaise: -1}}, 1000},
		{"zero total", []model.LineItem{{ProductID: "p1", Name: "Biryani", Quantity: 1, PricePaise: 20000}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateOrder(context.Background(), "user-1", tt.items, tt.total, "", "")
			if !errors.Is(err, ErrInvalidPayload) {
				t.Fatalf("err = %v, want ErrInvalidPayload", err)
			}
		})
	}
}

func TestCreateOrder_SnapshotsItems(t *testing.T) {
	repo := &stubRepo{createdOrder: &model.Order{ID: "order-1"}}
	svc := newTestService(repo, nil)

	items := []model.LineItem{{ProductID: "p1", Name: "Biryani", Quantity: 2, PricePaise: 20000}}
	o, err := svc.CreateOrder(context.Background(), "user-1", items, 44000, "addr", "")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if o.ID != "order-1" {
		t.Fatalf("order id = %s, want order-1", o.ID)
	}
}

func TestSetOrderStatus_UnknownStatus(t *testing.T) {
	svc := newTestService(&stubRepo{}, nil)

	err := svc.SetOrderStatus(context.Background(), "order-1", "shipped", false)
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("err = %v, want ErrInvalidPayload", err)
	}
}

func TestVerifyAccessCode_Master(t *testing.T) {
	svc := newTestService(&stubRepo{}, nil)

	kind, err := svc.VerifyAccessCode(context.Background(), "owner-master-code")
	if err != nil {
		t.Fatalf("VerifyAccessCode: %v", err)
	}
	if kind != GrantMaster {
		t.Fatalf("kind = %s, want master", kind)
	}
}

func TestVerifyAccessCode_ExpiredRejected(t *testing.T) {
	// Репозиторий не возвращает истёкшие коды даже при is_active.
	repo := &stubRepo{accessCodeErr: repository.ErrAccessCodeNotFound}
	svc := newTestService(repo, nil)

	_, err := svc.VerifyAccessCode(context.Background(), "rahul123")
	if !errors.Is(err, ErrInvalidAccessCode) {
		t.Fatalf("err = %v, want ErrInvalidAccessCode", err)
	}
}

func TestVerifyAccessCode_ValidCode(t *testing.T) {
	repo := &stubRepo{
		accessCode: &model.AccessCode{
			Label:     "delivery partner",
			Code:      "rahul123",
			IsActive:  true,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	svc := newTestService(repo, nil)

	kind, err := svc.VerifyAccessCode(context.Background(), "rahul123")
	if err != nil {
		t.Fatalf("VerifyAccessCode: %v", err)
	}
	if kind != GrantCode {
		t.Fatalf("kind = %s, want code", kind)
	}
}

func TestSweep_CancelsAbandonedOrder(t *testing.T) {
	repo := &stubRepo{
		staleOrders:  []model.Order{{ID: "order-1"}},
		cancelResult: true,
	}
	svc := newTestService(repo, &stubGateway{configured: true})

	svc.sweepPendingOrders(context.Background())

	if repo.cancelCalls != 1 {
		t.Fatalf("cancelCalls = %d, want 1", repo.cancelCalls)
	}
	if repo.markPaidCalls != 0 {
		t.Fatalf("order without gateway session must not be marked paid")
	}
}

func TestSweep_ConfirmsPaidOrderInsteadOfCancelling(t *testing.T) {
	repo := &stubRepo{
		staleOrders: []model.Order{{ID: "order-1", RazorpayOrderID: "order_rzp123"}},
	}
	gw := &stubGateway{
		configured: true,
		getResult:  &razorpay.GatewayOrder{ID: "order_rzp123", Status: "paid"},
	}
	svc := newTestService(repo, gw)

	svc.sweepPendingOrders(context.Background())

	if repo.markPaidCalls != 1 {
		t.Fatalf("markPaidCalls = %d, want 1", repo.markPaidCalls)
	}
	if repo.cancelCalls != 0 {
		t.Fatalf("paid order must not be cancelled")
	}
}

func TestSweep_GatewayErrorSkipsOrder(t *testing.T) {
	repo := &stubRepo{
		staleOrders: []model.Order{{ID: "order-1", RazorpayOrderID: "order_rzp123"}},
	}
	gw := &stubGateway{configured: true, getErr: errors.New("timeout")}
	svc := newTestService(repo, gw)

	svc.sweepPendingOrders(context.Background())

	if repo.cancelCalls != 0 || repo.markPaidCalls != 0 {
		t.Fatalf("order must be left untouched when gateway state is unknown")
	}
}

func TestAuthenticateUser_WrongPassword(t *testing.T) {
	svc := newTestService(&stubRepo{userErr: repository.ErrUserNotFound}, nil)

	_, err := svc.AuthenticateUser(context.Background(), "a@b.c", "pass")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}
