package sms

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

const ChannelName = "sms"

// SMSChannel implements channel.Channel for text messages.
type SMSChannel struct {
	conf       configs.SMSConf
	dispatcher *outbound.Dispatcher
}

var _ channel.Channel = (*SMSChannel)(nil)

func NewSMSChannel(conf configs.SMSConf, transmitter outbound.Transmitter, timeout time.Duration) *SMSChannel {
	return &SMSChannel{
		conf:       conf,
		dispatcher: outbound.NewDispatcher(ChannelName, transmitter, timeout),
	}
}

func NewSMSChannelFactory(cfg *configs.Config, publisher broker.OutboundPublisher) (channel.Channel, error) {
	driver := cfg.DriverFor(ChannelName)
	transmitter, err := outbound.NewTransmitter(driver, publisher, cfg.SimulatedLatency)
	if err != nil {
		return nil, fmt.Errorf("sms channel: %w", err)
	}

	logger.L().Info("Initializing SMS Channel",
		zap.String("driver", driver),
		zap.Bool("apiKeyConfigured", cfg.SMS.APIKey != ""),
	)
	return NewSMSChannel(cfg.SMS, transmitter, cfg.SendTimeout), nil
}

func init() {
	if err := registry.RegisterChannelFactory(ChannelName, NewSMSChannelFactory); err != nil {
		panic(fmt.Sprintf("Failed to register channel factory '%s': %v", ChannelName, err))
	}
}

func (c *SMSChannel) Name() string {
	return ChannelName
}

func (c *SMSChannel) ValidateMessage(msg domain.Message) bool {
	return outbound.Valid(msg)
}

// Send delivers msg once. SMS has no subject line, so any subject is dropped.
func (c *SMSChannel) Send(ctx context.Context, msg domain.Message) bool {
	if !c.ValidateMessage(msg) {
		return c.dispatcher.Reject(ctx, msg)
	}

	md := map[string]string{
		"apiKeyConfigured": strconv.FormatBool(c.conf.APIKey != ""),
	}
	if c.conf.SenderID != "" {
		md["senderID"] = c.conf.SenderID
	}
	return c.dispatcher.Attempt(ctx, c.dispatcher.Outbound(msg, "", md))
}
