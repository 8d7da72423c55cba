// Package payment реализует оркестрацию платежей: создание payment intent,
// сверку webhook-событий провайдера и управление подписками.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixelpick/pixelpick-backend/internal/apperr"
	"github.com/pixelpick/pixelpick-backend/internal/models"
	"github.com/pixelpick/pixelpick-backend/internal/paymentprovider"
)

// Repository определяет методы хранилища для транзакций и подписок.
type Repository interface {
	CreateTransaction(ctx context.Context, tx models.Transaction) (int, error)
	GetTransactionByIntentID(ctx context.Context, intentID string) (*models.Transaction, error)
	MarkTransactionFailed(ctx context.Context, intentID string, now time.Time) (bool, error)
	CompletePaymentAndExtendSubscription(ctx context.Context, intentID, planType string, periodStart, periodEnd time.Time) (bool, error)
	GetActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	CreateFreeSubscriptionIfAbsent(ctx context.Context, userUID, planType, currency string) (*models.Subscription, bool, error)
	CancelSubscription(ctx context.Context, userUID string, atPeriodEnd bool) (int, error)
}

// ProviderClient определяет интерфейс платёжного провайдера.
type ProviderClient interface {
	CreateIntent(reqParams paymentprovider.CreateIntentRequest) (*paymentprovider.CreateIntentResponse, error)
}

// Оплаченный период подписки.
const subscriptionPeriodDays = 365

// Service — оркестратор платежей.
type Service struct {
	repo         Repository
	provider     ProviderClient
	log          *slog.Logger
	planAmount   int // Цена плана в минимальных единицах валюты
	planCurrency string
}

// New создает новый экземпляр Service.
func New(repo Repository, provider ProviderClient, log *slog.Logger, planAmount int, planCurrency string) *Service {
	return &Service{
		repo:         repo,
		provider:     provider,
		log:          log,
		planAmount:   planAmount,
		planCurrency: planCurrency,
	}
}

// CreateIntent создаёт payment intent у провайдера и сохраняет pending
// транзакцию под его идентификатором. При ошибке провайдера локальная
// транзакция не создаётся.
func (s *Service) CreateIntent(ctx context.Context, userUID string) (*paymentprovider.CreateIntentResponse, error) {
	resp, err := s.provider.CreateIntent(paymentprovider.CreateIntentRequest{
		Amount:   s.planAmount,
		Currency: s.planCurrency,
		Metadata: map[string]string{
			"user_uid":  userUID,
			"plan_type": models.PlanPixelie,
		},
	})
	if err != nil {
		return nil, &apperr.ProcessorError{Message: err.Error()}
	}

	tx := models.Transaction{
		UserUID:         userUID,
		TransactionType: "subscription",
		Amount:          float64(s.planAmount) / 100,
		Currency:        s.planCurrency,
		PaymentMethod:   "stripe",
		PaymentIntentID: resp.ID,
		Status:          models.TxStatusPending,
	}
	if _, err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to persist pending transaction: %w", err)
	}

	s.log.Info("payment intent created",
		slog.String("user_uid", userUID), slog.String("intent_id", resp.ID))
	return resp, nil
}

// Reconcile применяет webhook-событие провайдера к локальному состоянию.
// Событие может доставляться повторно: транзакция в терминальном статусе
// означает no-op, неизвестные типы событий принимаются и игнорируются.
func (s *Service) Reconcile(ctx context.Context, event *paymentprovider.WebhookEvent) error {
	intentID := event.Data.Object.ID

	switch event.Type {
	case paymentprovider.EventPaymentSucceeded:
		tx, err := s.repo.GetTransactionByIntentID(ctx, intentID)
		if err != nil {
			return fmt.Errorf("failed to look up transaction: %w", err)
		}
		if tx == nil {
			// Провайдер повторил событие после удаления локального
			// состояния: потеря допустима, событие игнорируется.
			s.log.Info("transaction not found for webhook event, ignored",
				slog.String("intent_id", intentID))
			return nil
		}

		now := time.Now().UTC()
		periodEnd := now.AddDate(0, 0, subscriptionPeriodDays)
		applied, err := s.repo.CompletePaymentAndExtendSubscription(ctx, intentID, models.PlanPixelie, now, periodEnd)
		if err != nil {
			return fmt.Errorf("failed to reconcile succeeded payment: %w", err)
		}
		if !applied {
			s.log.Info("transaction already terminal, duplicate event ignored",
				slog.String("intent_id", intentID))
			return nil
		}
		s.log.Info("payment completed, subscription extended",
			slog.String("intent_id", intentID), slog.String("user_uid", tx.UserUID))
		return nil

	case paymentprovider.EventPaymentFailed:
		applied, err := s.repo.MarkTransactionFailed(ctx, intentID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to mark transaction failed: %w", err)
		}
		if !applied {
			s.log.Info("failed event not applied (transaction absent or terminal)",
				slog.String("intent_id", intentID))
		}
		return nil

	default:
		s.log.Info("ignored webhook event", slog.String("event", event.Type))
		return nil
	}
}

// ActivateFreePlan активирует бесплатный план идемпотентно: повторный
// вызов возвращает существующую активную подписку без изменений.
func (s *Service) ActivateFreePlan(ctx context.Context, userUID string) (*models.Subscription, error) {
	sub, created, err := s.repo.CreateFreeSubscriptionIfAbsent(ctx, userUID, models.PlanFree, s.planCurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to activate free plan: %w", err)
	}
	if created {
		s.log.Info("free plan activated", slog.String("user_uid", userUID))
	}
	return sub, nil
}

// SubscriptionStatus возвращает активную подписку пользователя.
func (s *Service) SubscriptionStatus(ctx context.Context, userUID string) (*models.Subscription, error) {
	sub, err := s.repo.GetActiveSubscription(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, apperr.ErrNotFound
	}
	return sub, nil
}

// PaymentStatus возвращает транзакцию по идентификатору payment intent.
func (s *Service) PaymentStatus(ctx context.Context, intentID string) (*models.Transaction, error) {
	tx, err := s.repo.GetTransactionByIntentID(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if tx == nil {
		return nil, apperr.ErrNotFound
	}
	return tx, nil
}

// Cancel отменяет активную подписку пользователя.
func (s *Service) Cancel(ctx context.Context, userUID string, atPeriodEnd bool) error {
	count, err := s.repo.CancelSubscription(ctx, userUID, atPeriodEnd)
	if err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	if count == 0 {
		return apperr.ErrNotFound
	}
	s.log.Info("subscription cancelled", slog.String("user_uid", userUID),
		slog.Bool("at_period_end", atPeriodEnd))
	return nil
}
