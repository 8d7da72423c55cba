package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pixelpick/pixelpick-backend/internal/apperr"
	"github.com/pixelpick/pixelpick-backend/internal/models"
	"github.com/pixelpick/pixelpick-backend/internal/paymentprovider"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateTransaction(ctx context.Context, tx models.Transaction) (int, error) {
	args := m.Called(ctx, tx)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) GetTransactionByIntentID(ctx context.Context, intentID string) (*models.Transaction, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}
func (m *RepoMock) MarkTransactionFailed(ctx context.Context, intentID string, now time.Time) (bool, error) {
	args := m.Called(ctx, intentID, now)
	return args.Bool(0), args.Error(1)
}
func (m *RepoMock) CompletePaymentAndExtendSubscription(ctx context.Context, intentID, planType string, periodStart, periodEnd time.Time) (bool, error) {
	args := m.Called(ctx, intentID, planType, periodStart, periodEnd)
	return args.Bool(0), args.Error(1)
}
func (m *RepoMock) GetActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}
func (m *RepoMock) CreateFreeSubscriptionIfAbsent(ctx context.Context, userUID, planType, currency string) (*models.Subscription, bool, error) {
	args := m.Called(ctx, userUID, planType, currency)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Subscription), args.Bool(1), args.Error(2)
}
func (m *RepoMock) CancelSubscription(ctx context.Context, userUID string, atPeriodEnd bool) (int, error) {
	args := m.Called(ctx, userUID, atPeriodEnd)
	return args.Int(0), args.Error(1)
}

type ProviderMock struct{ mock.Mock }

func (m *ProviderMock) CreateIntent(req paymentprovider.CreateIntentRequest) (*paymentprovider.CreateIntentResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.CreateIntentResponse), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newService(repo *RepoMock, provider *ProviderMock) *Service {
	return New(repo, provider, newNoopLogger(), 9900, "MXN")
}

const userUID = "11111111-2222-3333-4444-555555555555"

func TestService_CreateIntent(t *testing.T) {
	t.Run("creates provider intent and pending transaction", func(t *testing.T) {
		repo := new(RepoMock)
		provider := new(ProviderMock)

		provider.On("CreateIntent", mock.MatchedBy(func(req paymentprovider.CreateIntentRequest) bool {
			return req.Amount == 9900 && req.Currency == "MXN" &&
				req.Metadata["user_uid"] == userUID &&
				req.Metadata["plan_type"] == models.PlanPixelie
		})).Return(&paymentprovider.CreateIntentResponse{
			ID: "pi_123", ClientSecret: "secret", Status: "requires_payment_method",
			Amount: 9900, Currency: "MXN",
		}, nil).Once()

		repo.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(tx models.Transaction) bool {
			return tx.PaymentIntentID == "pi_123" &&
				tx.Status == models.TxStatusPending &&
				tx.Amount == 99.0 &&
				tx.UserUID == userUID
		})).Return(1, nil).Once()

		resp, err := newService(repo, provider).CreateIntent(context.Background(), userUID)

		assert.NoError(t, err)
		assert.Equal(t, "pi_123", resp.ID)
		repo.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("provider error maps to processor error without local transaction", func(t *testing.T) {
		repo := new(RepoMock)
		provider := new(ProviderMock)
		provider.On("CreateIntent", mock.Anything).Return(nil, errors.New("stripe unavailable")).Once()

		_, err := newService(repo, provider).CreateIntent(context.Background(), userUID)

		var procErr *apperr.ProcessorError
		assert.ErrorAs(t, err, &procErr)
		repo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
	})
}

func TestService_Reconcile(t *testing.T) {
	succeeded := func(intentID string) *paymentprovider.WebhookEvent {
		ev := &paymentprovider.WebhookEvent{Type: paymentprovider.EventPaymentSucceeded}
		ev.Data.Object.ID = intentID
		return ev
	}

	t.Run("succeeded event completes payment and extends subscription", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetTransactionByIntentID", mock.Anything, "pi_123").Return(&models.Transaction{
			UserUID: userUID, PaymentIntentID: "pi_123", Status: models.TxStatusPending,
		}, nil).Once()
		repo.On("CompletePaymentAndExtendSubscription", mock.Anything, "pi_123", models.PlanPixelie,
			mock.Anything, mock.Anything).Return(true, nil).Once()

		err := newService(repo, new(ProviderMock)).Reconcile(context.Background(), succeeded("pi_123"))

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate delivery of succeeded event is a no-op", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetTransactionByIntentID", mock.Anything, "pi_123").Return(&models.Transaction{
			UserUID: userUID, PaymentIntentID: "pi_123", Status: models.TxStatusCompleted,
		}, nil).Once()
		repo.On("CompletePaymentAndExtendSubscription", mock.Anything, "pi_123", models.PlanPixelie,
			mock.Anything, mock.Anything).Return(false, nil).Once()

		err := newService(repo, new(ProviderMock)).Reconcile(context.Background(), succeeded("pi_123"))

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("missing transaction is logged and ignored", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetTransactionByIntentID", mock.Anything, "pi_unknown").Return(nil, nil).Once()

		err := newService(repo, new(ProviderMock)).Reconcile(context.Background(), succeeded("pi_unknown"))

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "CompletePaymentAndExtendSubscription",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed event marks pending transaction failed", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("MarkTransactionFailed", mock.Anything, "pi_123", mock.Anything).Return(true, nil).Once()

		ev := &paymentprovider.WebhookEvent{Type: paymentprovider.EventPaymentFailed}
		ev.Data.Object.ID = "pi_123"

		err := newService(repo, new(ProviderMock)).Reconcile(context.Background(), ev)

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("unknown event type is accepted and ignored", func(t *testing.T) {
		repo := new(RepoMock)

		ev := &paymentprovider.WebhookEvent{Type: "customer.created"}
		ev.Data.Object.ID = "pi_123"

		err := newService(repo, new(ProviderMock)).Reconcile(context.Background(), ev)

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "GetTransactionByIntentID", mock.Anything, mock.Anything)
	})
}

func TestService_ActivateFreePlan(t *testing.T) {
	freeSub := &models.Subscription{
		UserUID:  userUID,
		PlanType: models.PlanFree,
		Amount:   0,
		Currency: "MXN",
		Status:   models.SubStatusActive,
	}

	t.Run("activates free plan once", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CreateFreeSubscriptionIfAbsent", mock.Anything, userUID, models.PlanFree, "MXN").
			Return(freeSub, true, nil).Once()

		sub, err := newService(repo, new(ProviderMock)).ActivateFreePlan(context.Background(), userUID)

		assert.NoError(t, err)
		assert.Equal(t, models.PlanFree, sub.PlanType)
		assert.Zero(t, sub.Amount)
		repo.AssertExpectations(t)
	})

	t.Run("repeat activation returns existing subscription", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CreateFreeSubscriptionIfAbsent", mock.Anything, userUID, models.PlanFree, "MXN").
			Return(freeSub, false, nil).Once()

		sub, err := newService(repo, new(ProviderMock)).ActivateFreePlan(context.Background(), userUID)

		assert.NoError(t, err)
		assert.Equal(t, models.SubStatusActive, sub.Status)
		repo.AssertExpectations(t)
	})
}

func TestService_SubscriptionStatus(t *testing.T) {
	t.Run("no active subscription maps to not found", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetActiveSubscription", mock.Anything, userUID).Return(nil, nil).Once()

		_, err := newService(repo, new(ProviderMock)).SubscriptionStatus(context.Background(), userUID)

		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestService_Cancel(t *testing.T) {
	t.Run("cancel without subscription maps to not found", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CancelSubscription", mock.Anything, userUID, false).Return(0, nil).Once()

		err := newService(repo, new(ProviderMock)).Cancel(context.Background(), userUID, false)

		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("cancel at period end", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CancelSubscription", mock.Anything, userUID, true).Return(1, nil).Once()

		err := newService(repo, new(ProviderMock)).Cancel(context.Background(), userUID, true)

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
