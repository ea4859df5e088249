package email

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

const ChannelName = "email"

// EmailChannel implements channel.Channel for email. It keeps its own copy of
// the email settings taken at construction.
type EmailChannel struct {
	conf       configs.EmailConf
	dispatcher *outbound.Dispatcher
}

var _ channel.Channel = (*EmailChannel)(nil)

func NewEmailChannel(conf configs.EmailConf, transmitter outbound.Transmitter, timeout time.Duration) *EmailChannel {
	return &EmailChannel{
		conf:       conf,
		dispatcher: outbound.NewDispatcher(ChannelName, transmitter, timeout),
	}
}

// NewEmailChannelFactory builds an EmailChannel with the transmitter chosen by
// EMAIL_DRIVER.
func NewEmailChannelFactory(cfg *configs.Config, publisher broker.OutboundPublisher) (channel.Channel, error) {
	driver := cfg.DriverFor(ChannelName)
	transmitter, err := outbound.NewTransmitter(driver, publisher, cfg.SimulatedLatency)
	if err != nil {
		return nil, fmt.Errorf("email channel: %w", err)
	}

	logger.L().Info("Initializing Email Channel",
		zap.String("driver", driver),
		zap.String("host", cfg.Email.Host),
		zap.Int("port", cfg.Email.Port),
		zap.Bool("authEnabled", cfg.Email.User != ""),
	)
	return NewEmailChannel(cfg.Email, transmitter, cfg.SendTimeout), nil
}

func init() {
	if err := registry.RegisterChannelFactory(ChannelName, NewEmailChannelFactory); err != nil {
		panic(fmt.Sprintf("Failed to register channel factory '%s': %v", ChannelName, err))
	}
}

func (c *EmailChannel) Name() string {
	return ChannelName
}

func (c *EmailChannel) ValidateMessage(msg domain.Message) bool {
	return outbound.Valid(msg)
}

// Send delivers msg once. The subject travels with the message when present.
func (c *EmailChannel) Send(ctx context.Context, msg domain.Message) bool {
	if !c.ValidateMessage(msg) {
		return c.dispatcher.Reject(ctx, msg)
	}
	var subject string
	if msg.HasSubject() {
		subject = msg.Subject
	}
	return c.dispatcher.Attempt(ctx, c.dispatcher.Outbound(msg, subject, c.metadata()))
}

// metadata never carries the password.
func (c *EmailChannel) metadata() map[string]string {
	md := map[string]string{
		"host":        c.conf.Host,
		"port":        strconv.Itoa(c.conf.Port),
		"authEnabled": strconv.FormatBool(c.conf.User != ""),
	}
	if c.conf.FromAddress != "" {
		md["from"] = c.conf.FromAddress
	}
	return md
}
