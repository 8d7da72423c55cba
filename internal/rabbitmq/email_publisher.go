package rabbitmq

import (
	"github.com/streadway/amqp"

	librabbitmq "github.com/pixelpick/pixelpick-backend/internal/lib/rabbitmq"
	"github.com/pixelpick/pixelpick-backend/internal/models"
)

// EmailPublisher публикует задания на отправку писем в очередь уведомлений.
type EmailPublisher struct {
	ch *amqp.Channel
}

// NewEmailPublisher создает новый экземпляр EmailPublisher.
func NewEmailPublisher(ch *amqp.Channel) *EmailPublisher {
	return &EmailPublisher{ch: ch}
}

// PublishEmailJob отправляет задание в exchange уведомлений.
func (p *EmailPublisher) PublishEmailJob(job models.EmailJob) error {
	return librabbitmq.PublishMessage(p.ch, ExchangeName, VerificationQueue.RoutingKey, job)
}
