package models

import "time"

// Статусы подписки.
const (
	SubStatusActive    = "active"
	SubStatusCancelled = "cancelled"
	SubStatusExpired   = "expired"
)

// Планы подписки: платный pixelie_plan и бесплатная активация.
const (
	PlanPixelie = "pixelie_plan"
	PlanFree    = "free_plan"
)

// Subscription представляет оплаченный (или бесплатный) период доступа.
// Для пары (пользователь, план) существует не более одной активной
// подписки — инвариант обеспечивается оркестратором платежей, повторные
// успешные оплаты продлевают период на месте, не создавая новых строк.
// SubscriptionID равен nil для бесплатных активаций, что отличает их
// от оплаченных при аудите.
type Subscription struct {
	ID                 int
	UserUID            string
	PlanType           string
	Amount             float64
	Currency           string
	Status             string
	SubscriptionID     *string // Идентификатор подписки у провайдера
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time // nil — бессрочная (бесплатный план)
	CancelAtPeriodEnd  bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Виды почтовых заданий.
const (
	EmailKindVerification = "verification"
	EmailKindResend       = "resend"
)

// EmailJob описывает задание на отправку письма, публикуемое в очередь
// уведомлений и потребляемое сервисом-отправителем.
type EmailJob struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	Kind      string `json:"kind"` // verification или resend
	VerifyURL string `json:"verify_url"`
}
