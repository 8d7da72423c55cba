package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pixelpick/pixelpick-backend/internal/models"
)

// CreateTransaction сохраняет транзакцию в статусе pending и возвращает её ID.
func (s *Storage) CreateTransaction(ctx context.Context, tx models.Transaction) (int, error) {
	const op = "storage.CreateTransaction"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO transactions (user_uid, transaction_type, amount, currency,
			      payment_method, payment_intent_id, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID int
	if err := s.DB.QueryRowContext(ctx, query,
		tx.UserUID, tx.TransactionType, tx.Amount, tx.Currency,
		tx.PaymentMethod, tx.PaymentIntentID, tx.Status).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

const transactionColumns = `id, user_uid, transaction_type, amount, currency,
			      payment_method, payment_intent_id, status, created_at, updated_at, completed_at`

func scanTransaction(scanner interface{ Scan(...any) error }) (*models.Transaction, error) {
	var t models.Transaction
	var completedAt sql.NullTime
	if err := scanner.Scan(&t.ID, &t.UserUID, &t.TransactionType, &t.Amount, &t.Currency,
		&t.PaymentMethod, &t.PaymentIntentID, &t.Status, &t.CreatedAt, &t.UpdatedAt, &completedAt); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return &t, nil
}

// GetTransactionByIntentID возвращает транзакцию по идентификатору
// payment intent или (nil, nil), если такой транзакции нет.
func (s *Storage) GetTransactionByIntentID(ctx context.Context, intentID string) (*models.Transaction, error) {
	const op = "storage.GetTransactionByIntentID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE payment_intent_id = $1`
	t, err := scanTransaction(s.DB.QueryRowContext(ctx, query, intentID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// MarkTransactionFailed переводит транзакцию в статус failed, если она ещё
// не терминальна. Возвращает true, если переход был применён.
func (s *Storage) MarkTransactionFailed(ctx context.Context, intentID string, now time.Time) (bool, error) {
	const op = "storage.MarkTransactionFailed"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE transactions
			  SET status = $1, updated_at = $2
			  WHERE payment_intent_id = $3 AND status = $4`
	result, err := s.DB.ExecContext(ctx, query, models.TxStatusFailed, now, intentID, models.TxStatusPending)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected > 0, nil
}

// CompletePaymentAndExtendSubscription применяет событие успешной оплаты
// одной транзакцией БД: переводит платёж в completed и создаёт либо
// продлевает на месте подписку (пользователь, план). Блокировка строк
// через FOR UPDATE выдерживает конкурентную доставку дубликатов события:
// если платёж уже терминален, ничего не меняется и applied=false.
func (s *Storage) CompletePaymentAndExtendSubscription(ctx context.Context, intentID, planType string,
	periodStart, periodEnd time.Time) (applied bool, err error) {
	const op = "storage.CompletePaymentAndExtendSubscription"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		query := `SELECT ` + transactionColumns + `
				  FROM transactions WHERE payment_intent_id = $1 FOR UPDATE`
		t, err := scanTransaction(tx.QueryRowContext(ctx, query, intentID))
		if err != nil {
			if err == sql.ErrNoRows {
				// Локальная запись отсутствует: провайдер прислал событие
				// для уже удалённого состояния, событие игнорируется.
				return nil
			}
			return err
		}
		if models.TerminalTxStatus(t.Status) {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `UPDATE transactions
				  SET status = $1, completed_at = $2, updated_at = $2
				  WHERE id = $3`, models.TxStatusCompleted, periodStart, t.ID); err != nil {
			return err
		}

		var subID int
		err = tx.QueryRowContext(ctx, `SELECT id FROM subscriptions
				  WHERE user_uid = $1 AND plan_type = $2 AND status = $3
				  FOR UPDATE`, t.UserUID, planType, models.SubStatusActive).Scan(&subID)
		switch {
		case err == sql.ErrNoRows:
			if _, err := tx.ExecContext(ctx, `INSERT INTO subscriptions
					  (user_uid, plan_type, amount, currency, status, subscription_id,
					   current_period_start, current_period_end)
					  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				t.UserUID, planType, t.Amount, t.Currency, models.SubStatusActive,
				intentID, periodStart, periodEnd); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			// Продление на месте: одно событие провайдера изменяет не более
			// одной строки подписки и никогда не создаёт дополнительную.
			if _, err := tx.ExecContext(ctx, `UPDATE subscriptions
					  SET status = $1, amount = $2, currency = $3, subscription_id = $4,
					      current_period_start = $5, current_period_end = $6, updated_at = NOW()
					  WHERE id = $7`,
				models.SubStatusActive, t.Amount, t.Currency, intentID,
				periodStart, periodEnd, subID); err != nil {
				return err
			}
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return applied, nil
}
