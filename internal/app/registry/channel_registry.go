package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/medeiros-dev/notification-dispatch/configs"
	"github.com/medeiros-dev/notification-dispatch/internal/domain/port/broker"
	"github.com/medeiros-dev/notification-dispatch/internal/domain/port/channel"
)

// ChannelFactory builds a channel.Channel from the shared configuration.
// publisher is nil unless some channel is configured with the kafka driver.
type ChannelFactory func(cfg *configs.Config, publisher broker.OutboundPublisher) (channel.Channel, error)

var (
	channelRegistry = make(map[string]ChannelFactory)
	registryMutex   sync.RWMutex
)

// RegisterChannelFactory registers a new channel factory.
// It should be called from an init() block of the channel package.
func RegisterChannelFactory(name string, factory ChannelFactory) error {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if factory == nil {
		return fmt.Errorf("channel factory for %s cannot be nil", name)
	}
	if _, exists := channelRegistry[name]; exists {
		return fmt.Errorf("channel factory already registered: %s", name)
	}
	channelRegistry[name] = factory
	return nil
}

// GetChannelFactory retrieves a channel factory by name.
func GetChannelFactory(name string) (ChannelFactory, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	factory, exists := channelRegistry[name]
	if !exists {
		return nil, fmt.Errorf("no channel factory registered for name: %s", name)
	}
	return factory, nil
}

// RegisteredChannels returns the registered names in sorted order.
func RegisteredChannels() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	names := make([]string, 0, len(channelRegistry))
	for name := range channelRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
