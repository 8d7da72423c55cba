package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pixelpick/pixelpick-backend/internal/models"
)

const subscriptionColumns = `id, user_uid, plan_type, amount, currency, status,
			      subscription_id, current_period_start, current_period_end,
			      cancel_at_period_end, created_at, updated_at`

func scanSubscription(scanner interface{ Scan(...any) error }) (*models.Subscription, error) {
	var sub models.Subscription
	var extID sql.NullString
	var periodStart, periodEnd sql.NullTime
	if err := scanner.Scan(&sub.ID, &sub.UserUID, &sub.PlanType, &sub.Amount, &sub.Currency,
		&sub.Status, &extID, &periodStart, &periodEnd,
		&sub.CancelAtPeriodEnd, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	if extID.Valid {
		sub.SubscriptionID = &extID.String
	}
	if periodStart.Valid {
		sub.CurrentPeriodStart = &periodStart.Time
	}
	if periodEnd.Valid {
		sub.CurrentPeriodEnd = &periodEnd.Time
	}
	return &sub, nil
}

// GetActiveSubscription возвращает активную подписку пользователя
// или (nil, nil), если её нет. При нескольких активных строках платная
// подписка с датой окончания периода имеет приоритет над бессрочной
// бесплатной (у той current_period_end равен NULL).
func (s *Storage) GetActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetActiveSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_uid = $1 AND status = $2
			  ORDER BY current_period_end DESC NULLS LAST, id
			  LIMIT 1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, userUID, models.SubStatusActive))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// CreateFreeSubscriptionIfAbsent активирует бесплатный план идемпотентно:
// существующая активная подписка возвращается без изменений (created=false),
// иначе в той же транзакции создаётся бессрочная подписка с нулевой суммой
// и NULL вместо идентификатора провайдера.
func (s *Storage) CreateFreeSubscriptionIfAbsent(ctx context.Context, userUID, planType, currency string) (*models.Subscription, bool, error) {
	const op = "storage.CreateFreeSubscriptionIfAbsent"
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var result *models.Subscription
	var created bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query := `SELECT ` + subscriptionColumns + `
				  FROM subscriptions
				  WHERE user_uid = $1 AND status = $2
				  ORDER BY id
				  LIMIT 1
				  FOR UPDATE`
		sub, err := scanSubscription(tx.QueryRowContext(ctx, query, userUID, models.SubStatusActive))
		if err == nil {
			result = sub
			return nil
		}
		if err != sql.ErrNoRows {
			return err
		}

		insert := `INSERT INTO subscriptions
				  (user_uid, plan_type, amount, currency, status, subscription_id,
				   current_period_start, current_period_end)
				  VALUES ($1, $2, 0, $3, $4, NULL, NOW(), NULL)
				  RETURNING ` + subscriptionColumns
		sub, err = scanSubscription(tx.QueryRowContext(ctx, insert, userUID, planType, currency, models.SubStatusActive))
		if err != nil {
			return err
		}
		result = sub
		created = true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return result, created, nil
}

// CancelSubscription переводит активную подписку пользователя в статус
// cancelled. Возвращает количество изменённых строк.
func (s *Storage) CancelSubscription(ctx context.Context, userUID string, atPeriodEnd bool) (int, error) {
	const op = "storage.CancelSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var result sql.Result
	var err error
	if atPeriodEnd {
		result, err = s.DB.ExecContext(ctx, `UPDATE subscriptions
				  SET cancel_at_period_end = TRUE, updated_at = NOW()
				  WHERE user_uid = $1 AND status = $2`, userUID, models.SubStatusActive)
	} else {
		result, err = s.DB.ExecContext(ctx, `UPDATE subscriptions
				  SET status = $1, updated_at = NOW()
				  WHERE user_uid = $2 AND status = $3`, models.SubStatusCancelled, userUID, models.SubStatusActive)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// CountActiveSubscriptions возвращает число активных подписок пользователя.
// Используется в тестах инварианта "не более одной активной подписки".
func (s *Storage) CountActiveSubscriptions(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountActiveSubscriptions"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM subscriptions WHERE user_uid = $1 AND status = $2`
	if err := s.DB.QueryRowContext(ctx, query, userUID, models.SubStatusActive).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
