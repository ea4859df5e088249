package registry

import (
	"go.uber.org/zap"

	"github.com/medeiros-dev/notification-dispatch/configs"
	"github.com/medeiros-dev/notification-dispatch/internal/domain/port/broker"
	"github.com/medeiros-dev/notification-dispatch/internal/domain/port/channel"
	"github.com/medeiros-dev/notification-dispatch/pkg/logger"
)

// BuildChannels instantiates every enabled channel through its registered
// factory. Channels without a factory, or whose factory fails, are skipped
// with a warning.
func BuildChannels(cfg *configs.Config, publisher broker.OutboundPublisher) []channel.Channel {
	channels := make([]channel.Channel, 0, len(cfg.EnabledChannels))
	logger.L().Info("Initializing enabled channels based on configuration", zap.Strings("channels", cfg.EnabledChannels))

	for _, channelName := range cfg.EnabledChannels {
		factory, err := GetChannelFactory(channelName)
		if err != nil {
			logger.L().Warn("No factory registered for channel, skipping.",
				zap.String("channelName", channelName),
				zap.Strings("registeredChannels", RegisteredChannels()),
				zap.Error(err),
			)
			continue
		}

		instance, err := factory(cfg, publisher)
		if err != nil {
			logger.L().Warn("Failed to create channel instance, skipping.",
				zap.String("channelName", channelName),
				zap.Error(err),
			)
			continue
		}

		channels = append(channels, instance)
		logger.L().Info("Channel initialized", zap.String("channelName", channelName))
	}
	return channels
}
