package push

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/medeiros-dev/notification-dispatch/configs"
	"github.com/medeiros-dev/notification-dispatch/internal/app/registry"
	"github.com/medeiros-dev/notification-dispatch/internal/domain"
	"github.com/medeiros-dev/notification-dispatch/internal/domain/port/broker"
	"github.com/medeiros-dev/notification-dispatch/internal/domain/port/channel"
	"github.com/medeiros-dev/notification-dispatch/internal/infrastructure/channel/outbound"
	"github.com/medeiros-dev/notification-dispatch/pkg/logger"
)

const ChannelName = "push"

// PushChannel implements channel.Channel for mobile push. The recipient is a
// device token.
type PushChannel struct {
	conf       configs.PushConf
	dispatcher *outbound.Dispatcher
}

var _ channel.Channel = (*PushChannel)(nil)

func NewPushChannel(conf configs.PushConf, transmitter outbound.Transmitter, timeout time.Duration) *PushChannel {
	return &PushChannel{
		conf:       conf,
		dispatcher: outbound.NewDispatcher(ChannelName, transmitter, timeout),
	}
}

func NewPushChannelFactory(cfg *configs.Config, publisher broker.OutboundPublisher) (channel.Channel, error) {
	driver := cfg.DriverFor(ChannelName)
	transmitter, err := outbound.NewTransmitter(driver, publisher, cfg.SimulatedLatency)
	if err != nil {
		return nil, fmt.Errorf("push channel: %w", err)
	}

	logger.L().Info("Initializing Push Channel",
		zap.String("driver", driver),
		zap.String("projectID", cfg.Push.ProjectID),
	)
	return NewPushChannel(cfg.Push, transmitter, cfg.SendTimeout), nil
}

func init() {
	if err := registry.RegisterChannelFactory(ChannelName, NewPushChannelFactory); err != nil {
		panic(fmt.Sprintf("Failed to register channel factory '%s': %v", ChannelName, err))
	}
}

func (c *PushChannel) Name() string {
	return ChannelName
}

func (c *PushChannel) ValidateMessage(msg domain.Message) bool {
	return outbound.Valid(msg)
}

// Send delivers msg once. The subject becomes the notification title.
func (c *PushChannel) Send(ctx context.Context, msg domain.Message) bool {
	if !c.ValidateMessage(msg) {
		return c.dispatcher.Reject(ctx, msg)
	}

	md := map[string]string{
		"credentialsConfigured": strconv.FormatBool(c.conf.PrivateKey != ""),
	}
	if c.conf.ProjectID != "" {
		md["projectID"] = c.conf.ProjectID
	}

	var title string
	if msg.HasSubject() {
		title = msg.Subject
	}
	return c.dispatcher.Attempt(ctx, c.dispatcher.Outbound(msg, title, md))
}
