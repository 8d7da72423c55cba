package paymentprovider

// CreateIntentRequest — параметры создания payment intent.
// Сумма передаётся в минимальных единицах валюты (центах),
// metadata возвращается провайдером в webhook-событиях без изменений.
type CreateIntentRequest struct {
	Amount   int               `json:"amount" validate:"required,gt=0"`
	Currency string            `json:"currency" validate:"required"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CreateIntentResponse — ответ провайдера при создании payment intent.
// ClientSecret передаётся фронтенду для подтверждения оплаты.
type CreateIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int    `json:"amount"`
	Currency     string `json:"currency"`
}

// WebhookEvent — асинхронное уведомление провайдера об изменении
// состояния платежа. Доставка может дублироваться.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"` // payment intent ID
			Status   string            `json:"status"`
			Amount   int               `json:"amount"`
			Currency string            `json:"currency"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// Типы событий, которые обрабатывает reconciliation.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)
