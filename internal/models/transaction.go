package models

import "time"

// Статусы транзакции. Терминальные статусы финальны: дальнейшие переходы
// не принимаются, повторная доставка webhook-события — no-op.
const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusFailed    = "failed"
	TxStatusRefunded  = "refunded"
)

// TerminalTxStatus сообщает, является ли статус транзакции финальным.
func TerminalTxStatus(status string) bool {
	switch status {
	case TxStatusCompleted, TxStatusFailed, TxStatusRefunded:
		return true
	default:
		return false
	}
}

// Transaction представляет одну попытку списания средств,
// привязанную к payment intent внешнего провайдера.
type Transaction struct {
	ID              int
	UserUID         string
	TransactionType string // purchase или subscription
	Amount          float64
	Currency        string
	PaymentMethod   string // stripe
	PaymentIntentID string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
}
