package usecase

import (
	"context"
	"regexp"
	"testing"

	"bookstore/internal/domain/model"
	"bookstore/internal/infra/payment"
	repo "bookstore/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var transactionCodePattern = regexp.MustCompile(`^PAY-\d{8}-\d{3}$`)

type GatewayMock struct {
	mock.Mock
	name string
}

func (m *GatewayMock) Provider() string { return m.name }

func (m *GatewayMock) Initiate(ctx context.Context, req payment.InitiateRequest) (payment.InitiateResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(payment.InitiateResult)
	return res, args.Error(1)
}

func (m *GatewayMock) VerifyCallback(params map[string]string) (payment.CallbackResult, error) {
	args := m.Called(params)
	res, _ := args.Get(0).(payment.CallbackResult)
	return res, args.Error(1)
}

func vnpayOrder() model.Order {
	return model.Order{
		ID: 100, UserID: 9, OrderCode: "ORD-20250315-0001",
		TotalPrice:    220000,
		PaymentMethod: model.PaymentMethodVNPay,
		PaymentStatus: model.PaymentStatusPending,
		Status:        model.OrderStatusPending,
	}
}

func newPaymentUC(payments *PaymentRepoMock, orders *OrderRepoMock, gw *GatewayMock) *PaymentUsecase {
	uc := NewPaymentUsecase(payments, orders, []payment.Gateway{gw}, testMetrics(), testLogger())
	uc.now = fixedNow
	return uc
}

func TestInitiatePayment_Success(t *testing.T) {
	payments := &PaymentRepoMock{}
	orders := &OrderRepoMock{}
	gw := &GatewayMock{name: "vnpay"}
	uc := newPaymentUC(payments, orders, gw)

	orders.On("FindByID", mock.Anything, int64(100)).Return(vnpayOrder(), nil)
	payments.On("FindLatestByOrderID", mock.Anything, int64(100)).Return(model.Payment{}, repo.ErrNotFound)
	payments.On("CountCreatedOn", mock.Anything, fixedNow()).Return(int64(4), nil)
	payments.On("Create", mock.Anything, mock.MatchedBy(func(p model.Payment) bool {
		return p.OrderID == 100 && p.Amount == 220000 &&
			p.Status == model.PaymentStatusPending &&
			transactionCodePattern.MatchString(p.TransactionCode)
	})).Return(int64(30), nil)
	gw.On("Initiate", mock.Anything, mock.MatchedBy(func(req payment.InitiateRequest) bool {
		return req.Amount == 220000 && req.TransactionCode == "PAY-20250315-005"
	})).Return(payment.InitiateResult{PaymentURL: "https://pay.example/redirect"}, nil)
	payments.On("SetPaymentURL", mock.Anything, int64(30), "https://pay.example/redirect").Return(nil)

	out, err := uc.InitiatePayment(context.Background(), 9, InitiatePaymentInput{OrderID: 100})

	assert.NoError(t, err)
	assert.Equal(t, "https://pay.example/redirect", out.PaymentURL)
	assert.Equal(t, "PAY-20250315-005", out.TransactionCode)
}

func TestInitiatePayment_ReusesOpenRedirect(t *testing.T) {
	payments := &PaymentRepoMock{}
	orders := &OrderRepoMock{}
	uc := newPaymentUC(payments, orders, &GatewayMock{name: "vnpay"})

	orders.On("FindByID", mock.Anything, int64(100)).Return(vnpayOrder(), nil)
	payments.On("FindLatestByOrderID", mock.Anything, int64(100)).Return(model.Payment{
		ID: 30, OrderID: 100, Status: model.PaymentStatusPending,
		TransactionCode: "PAY-20250315-005", PaymentURL: "https://pay.example/open",
	}, nil)

	out, err := uc.InitiatePayment(context.Background(), 9, InitiatePaymentInput{OrderID: 100})

	assert.NoError(t, err)
	assert.Equal(t, "https://pay.example/open", out.PaymentURL)
	assert.Equal(t, "PAY-20250315-005", out.TransactionCode)
	payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInitiatePayment_AmountMustMatchOrderTotal(t *testing.T) {
	payments := &PaymentRepoMock{}
	orders := &OrderRepoMock{}
	uc := newPaymentUC(payments, orders, &GatewayMock{name: "vnpay"})

	orders.On("FindByID", mock.Anything, int64(100)).Return(vnpayOrder(), nil)

	_, err := uc.InitiatePayment(context.Background(), 9, InitiatePaymentInput{OrderID: 100, Amount: 99})

	assert.True(t, HasCode(err, CodeInvalidRequest))
	payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInitiatePayment_NotOwner(t *testing.T) {
	payments := &PaymentRepoMock{}
	orders := &OrderRepoMock{}
	uc := newPaymentUC(payments, orders, &GatewayMock{name: "vnpay"})

	orders.On("FindByID", mock.Anything, int64(100)).Return(vnpayOrder(), nil)

	_, err := uc.InitiatePayment(context.Background(), 777, InitiatePaymentInput{OrderID: 100})

	assert.True(t, HasCode(err, CodeForbidden))
}

func TestInitiatePayment_AlreadyPaid(t *testing.T) {
	payments := &PaymentRepoMock{}
	orders := &OrderRepoMock{}
	uc := newPaymentUC(payments, orders, &GatewayMock{name: "vnpay"})

	o := vnpayOrder()
	o.PaymentStatus = model.PaymentStatusCompleted
	orders.On("FindByID", mock.Anything, int64(100)).Return(o, nil)

	_, err := uc.InitiatePayment(context.Background(), 9, InitiatePaymentInput{OrderID: 100})

	assert.True(t, HasCode(err, CodeInvalidRequest))
}

func TestInitiatePayment_NoGatewayForMethod(t *testing.T) {
	payments := &PaymentRepoMock{}
	orders := &OrderRepoMock{}
	uc := newPaymentUC(payments, orders, &GatewayMock{name: "vnpay"})

	o := vnpayOrder()
	o.PaymentMethod = model.PaymentMethodCOD
	orders.On("FindByID", mock.Anything, int64(100)).Return(o, nil)

	_, err := uc.InitiatePayment(context.Background(), 9, InitiatePaymentInput{OrderID: 100})

	assert.True(t, HasCode(err, CodeInvalidRequest))
}

func TestInitiatePayment_UpstreamFailureMarksPaymentFailed(t *testing.T) {
	payments := &PaymentRepoMock{}
	orders := &OrderRepoMock{}
	gw := &GatewayMock{name: "vnpay"}
	uc := newPaymentUC(payments, orders, gw)

	orders.On("FindByID", mock.Anything, int64(100)).Return(vnpayOrder(), nil)
	payments.On("FindLatestByOrderID", mock.Anything, int64(100)).Return(model.Payment{}, repo.ErrNotFound)
	payments.On("CountCreatedOn", mock.Anything, fixedNow()).Return(int64(0), nil)
	payments.On("Create", mock.Anything, mock.Anything).Return(int64(30), nil)
	gw.On("Initiate", mock.Anything, mock.Anything).Return(payment.InitiateResult{}, payment.ErrUpstream)
	payments.On("MarkResult", mock.Anything, int64(30), model.PaymentStatusFailed, "", mock.Anything).Return(nil)

	_, err := uc.InitiatePayment(context.Background(), 9, InitiatePaymentInput{OrderID: 100})

	assert.True(t, HasCode(err, CodeUpstreamFailure))
	payments.AssertCalled(t, "MarkResult", mock.Anything, int64(30), model.PaymentStatusFailed, "", mock.Anything)
}

func TestHandleCallback_Success(t *testing.T) {
	payments := &PaymentRepoMock{}
	orders := &OrderRepoMock{}
	gw := &GatewayMock{name: "vnpay"}
	uc := newPaymentUC(payments, orders, gw)

	params := map[string]string{"vnp_TxnRef": "PAY-20250315-005"}
	gw.On("VerifyCallback", params).Return(payment.CallbackResult{
		Success: true, TransactionCode: "PAY-20250315-005",
		TransactionID: "VNP123", Amount: 220000, Code: "00",
	}, nil)
	payments.On("FindByTransactionCode", mock.Anything, "PAY-20250315-005").Return(model.Payment{
		ID: 30, OrderID: 100, Amount: 220000, Status: model.PaymentStatusPending,
	}, nil)
	payments.On("MarkResult", mock.Anything, int64(30), model.PaymentStatusCompleted, "VNP123", mock.Anything).Return(nil)

	out, err := uc.HandleCallback(context.Background(), "vnpay", params)

	assert.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, int64(100), out.OrderID)
	assert.Equal(t, "VNP123", out.TransactionID)
}

func TestHandleCallback_TamperedSignature(t *testing.T) {
	payments := &PaymentRepoMock{}
	orders := &OrderRepoMock{}
	gw := &GatewayMock{name: "vnpay"}
	uc := newPaymentUC(payments, orders, gw)

	params := map[string]string{"vnp_TxnRef": "PAY-20250315-005"}
	gw.On("VerifyCallback", params).Return(payment.CallbackResult{}, payment.ErrInvalidSignature)

	_, err := uc.HandleCallback(context.Background(), "vnpay", params)

	assert.True(t, HasCode(err, CodeInvalidSignature))
	// Nothing is looked up or written on a bad signature.
	payments.AssertNotCalled(t, "FindByTransactionCode", mock.Anything, mock.Anything)
	payments.AssertNotCalled(t, "MarkResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleCallback_AmountMismatch(t *testing.T) {
	payments := &PaymentRepoMock{}
	orders := &OrderRepoMock{}
	gw := &GatewayMock{name: "vnpay"}
	uc := newPaymentUC(payments, orders, gw)

	params := map[string]string{"vnp_TxnRef": "PAY-20250315-005"}
	gw.On("VerifyCallback", params).Return(payment.CallbackResult{
		Success: true, TransactionCode: "PAY-20250315-005", Amount: 1,
	}, nil)
	payments.On("FindByTransactionCode", mock.Anything, "PAY-20250315-005").Return(model.Payment{
		ID: 30, OrderID: 100, Amount: 220000, Status: model.PaymentStatusPending,
	}, nil)

	_, err := uc.HandleCallback(context.Background(), "vnpay", params)

	assert.True(t, HasCode(err, CodeInvalidRequest))
	payments.AssertNotCalled(t, "MarkResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleCallback_ReplayOfTerminalPayment(t *testing.T) {
	payments := &PaymentRepoMock{}
	orders := &OrderRepoMock{}
	gw := &GatewayMock{name: "vnpay"}
	uc := newPaymentUC(payments, orders, gw)

	params := map[string]string{"vnp_TxnRef": "PAY-20250315-005"}
	gw.On("VerifyCallback", params).Return(payment.CallbackResult{
		Success: true, TransactionCode: "PAY-20250315-005",
		TransactionID: "VNP123", Amount: 220000,
	}, nil)
	payments.On("FindByTransactionCode", mock.Anything, "PAY-20250315-005").Return(model.Payment{
		ID: 30, OrderID: 100, Amount: 220000,
		Status: model.PaymentStatusCompleted, TransactionID: "VNP123",
	}, nil)

	out, err := uc.HandleCallback(context.Background(), "vnpay", params)

	assert.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "already processed", out.Message)
	payments.AssertNotCalled(t, "MarkResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleCallback_UnknownProvider(t *testing.T) {
	uc := newPaymentUC(&PaymentRepoMock{}, &OrderRepoMock{}, &GatewayMock{name: "vnpay"})

	_, err := uc.HandleCallback(context.Background(), "zalopay", map[string]string{})

	assert.True(t, HasCode(err, CodeNotFound))
}

func TestHandleCallback_UnknownTransactionCode(t *testing.T) {
	payments := &PaymentRepoMock{}
	gw := &GatewayMock{name: "vnpay"}
	uc := newPaymentUC(payments, &OrderRepoMock{}, gw)

	params := map[string]string{"vnp_TxnRef": "PAY-20250315-999"}
	gw.On("VerifyCallback", params).Return(payment.CallbackResult{
		Success: true, TransactionCode: "PAY-20250315-999",
	}, nil)
	payments.On("FindByTransactionCode", mock.Anything, "PAY-20250315-999").Return(model.Payment{}, repo.ErrNotFound)

	_, err := uc.HandleCallback(context.Background(), "vnpay", params)

	assert.True(t, HasCode(err, CodeNotFound))
}
