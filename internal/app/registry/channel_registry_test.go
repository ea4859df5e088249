package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medeiros-dev/notification-dispatch/configs"
	"github.com/medeiros-dev/notification-dispatch/internal/domain"
	"github.com/medeiros-dev/notification-dispatch/internal/domain/port/broker"
	"github.com/medeiros-dev/notification-dispatch/internal/domain/port/channel"
)

type MockChannel struct{}

func (m *MockChannel) Name() string { return "mock" }

func (m *MockChannel) ValidateMessage(msg domain.Message) bool { return true }

func (m *MockChannel) Send(ctx context.Context, msg domain.Message) bool { return true }

func mockFactory(cfg *configs.Config, publisher broker.OutboundPublisher) (channel.Channel, error) {
	return &MockChannel{}, nil
}

func resetRegistry() {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	channelRegistry = make(map[string]ChannelFactory)
}

func TestRegisterChannelFactory(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	t.Run("Register New Factory", func(t *testing.T) {
		err := RegisterChannelFactory("test-channel", mockFactory)
		assert.NoError(t, err)

		registryMutex.RLock()
		_, exists := channelRegistry["test-channel"]
		registryMutex.RUnlock()
		assert.True(t, exists)
	})

	t.Run("Register Duplicate Factory", func(t *testing.T) {
		_ = RegisterChannelFactory("duplicate-channel", mockFactory)

		err := RegisterChannelFactory("duplicate-channel", mockFactory)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("Register Nil Factory", func(t *testing.T) {
		err := RegisterChannelFactory("nil-channel", nil)
		assert.ErrorContains(t, err, "cannot be nil")
	})
}

func TestGetChannelFactory(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	t.Run("Get Existing Factory", func(t *testing.T) {
		err := RegisterChannelFactory("get-channel", mockFactory)
		require.NoError(t, err)

		factory, err := GetChannelFactory("get-channel")
		assert.NoError(t, err)
		require.NotNil(t, factory)

		instance, err := factory(configs.Load(nil), nil)
		assert.NoError(t, err)
		assert.IsType(t, &MockChannel{}, instance)
	})

	t.Run("Get Non-Existent Factory", func(t *testing.T) {
		_, err := GetChannelFactory("non-existent-channel")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no channel factory registered")
	})
}

func TestRegisteredChannels(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	assert.Empty(t, RegisteredChannels())

	require.NoError(t, RegisterChannelFactory("sms", mockFactory))
	require.NoError(t, RegisterChannelFactory("email", mockFactory))

	assert.Equal(t, []string{"email", "sms"}, RegisteredChannels())
}
