package notify

import (
	"context"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/example/tienda/pkg/models"
	"go.uber.org/zap"
)

// NotificationActor renders and sends order emails one at a time.
type NotificationActor struct {
	mailer  Mailer
	timeout time.Duration
	logger  *zap.Logger
	sent    int
}

func (a *NotificationActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *SendStatusEmail:
		a.logger.Info("Sending notification",
			zap.String("recipient", msg.To),
			zap.Int("order_id", msg.Order.ID),
			zap.String("status", msg.Order.Status))

		ctx.Respond(a.send(msg))

	case *actor.Started:
		a.logger.Info("Notification actor started")

	case *actor.Stopping:
		a.logger.Info("Notification actor stopping", zap.Int("sent", a.sent))
	}
}

func (a *NotificationActor) send(msg *SendStatusEmail) *NotificationResponse {
	email, err := StatusEmail(msg.To, msg.Order)
	if err != nil {
		return &NotificationResponse{Error: err.Error()}
	}

	sendCtx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.mailer.Send(sendCtx, email); err != nil {
		a.logger.Error("Notification failed", zap.String("recipient", msg.To), zap.Error(err))
		return &NotificationResponse{Error: err.Error()}
	}

	a.sent++
	return &NotificationResponse{Success: true}
}

// Messages
type SendStatusEmail struct {
	To    string
	Order *models.Order
}

type NotificationResponse struct {
	Success bool
	Error   string
}
