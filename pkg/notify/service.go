// Package notify emails customers when their order status changes. Sends go
// through a single NotificationActor so the relay sees one request at a time.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/example/tienda/pkg/models"
	"go.uber.org/zap"
)

type Service struct {
	system  *actor.ActorSystem
	pid     *actor.PID
	timeout time.Duration
	logger  *zap.Logger
}

func NewService(mailer Mailer, timeout time.Duration, logger *zap.Logger) (*Service, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return &NotificationActor{
			mailer:  mailer,
			timeout: timeout,
			logger:  logger.Named("notification-actor"),
		}
	})
	pid, err := system.Root.SpawnNamed(props, "notification-actor")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn notification actor: %w", err)
	}

	return &Service{
		system:  system,
		pid:     pid,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// NotifyStatusChange blocks until the actor reports the send result or the
// wait expires. The wait is bounded by ctx's deadline when it is sooner.
func (s *Service) NotifyStatusChange(ctx context.Context, to string, order *models.Order) error {
	// Queued sends also wait behind earlier ones, so allow a little slack.
	wait := s.timeout + time.Second
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < wait {
			wait = left
		}
	}
	if wait <= 0 {
		return ctx.Err()
	}

	future := s.system.Root.RequestFuture(s.pid, &SendStatusEmail{To: to, Order: order}, wait)
	result, err := future.Result()
	if err != nil {
		return fmt.Errorf("failed to get notification result: %w", err)
	}

	resp, ok := result.(*NotificationResponse)
	if !ok {
		return fmt.Errorf("unexpected notification response %T", result)
	}
	if !resp.Success {
		return errors.New(resp.Error)
	}
	return nil
}

func (s *Service) Shutdown() {
	if err := s.system.Root.StopFuture(s.pid).Wait(); err != nil {
		s.logger.Warn("Notification actor did not stop cleanly", zap.Error(err))
	}
}
