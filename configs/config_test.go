package configs

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load(nil)

	assert.Equal(t, EmailConf{
		Host: DefaultEmailHost,
		Port: DefaultEmailPort,
	}, cfg.Email)
	assert.Equal(t, SMSConf{}, cfg.SMS)
	assert.Equal(t, PushConf{}, cfg.Push)
	assert.Equal(t, []string{"email", "sms", "push"}, cfg.EnabledChannels)
	assert.Equal(t, map[string]string{"email": DefaultDriver, "sms": DefaultDriver, "push": DefaultDriver}, cfg.Drivers)
	assert.Empty(t, cfg.LogLevel)
	assert.Empty(t, cfg.LogFile)
	assert.Equal(t, time.Duration(0), cfg.SendTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, DefaultKafkaTopic, cfg.KafkaTopic)
	assert.Equal(t, DefaultHTTPServerAddress, cfg.HTTPServerAddress)
	assert.Equal(t, DefaultMetricsServerAddress, cfg.MetricsServerAddress)
	assert.Equal(t, DefaultOtelServiceName, cfg.OtelServiceName)
	assert.False(t, cfg.OtelInsecure)
}

func TestLoad_OverrideWinsFieldByField(t *testing.T) {
	cfg := Load(map[string]any{KeyEmailPort: 2525})
	defaults := Load(nil)

	assert.Equal(t, 2525, cfg.Email.Port)

	expected := *defaults
	expected.Email.Port = 2525
	assert.Equal(t, expected, *cfg)
}

func TestLoad_Overrides(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		check     func(t *testing.T, cfg *Config)
	}{
		{
			name:      "Port As String",
			overrides: map[string]any{KeyEmailPort: "2525"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 2525, cfg.Email.Port)
			},
		},
		{
			name:      "Non Numeric Port Falls Back",
			overrides: map[string]any{KeyEmailPort: "not-a-port"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultEmailPort, cfg.Email.Port)
			},
		},
		{
			name:      "Out Of Range Port Falls Back",
			overrides: map[string]any{KeyEmailPort: 70000},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultEmailPort, cfg.Email.Port)
			},
		},
		{
			name: "SMS Credentials",
			overrides: map[string]any{
				KeySMSAPIKey:    "key",
				KeySMSAPISecret: "secret",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "key", cfg.SMS.APIKey)
				assert.Equal(t, "secret", cfg.SMS.APISecret)
				assert.Equal(t, DefaultEmailHost, cfg.Email.Host)
			},
		},
		{
			name:      "Enabled Channels Comma List",
			overrides: map[string]any{KeyEnabledChannels: " email , sms ,"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"email", "sms"}, cfg.EnabledChannels)
				assert.NotContains(t, cfg.Drivers, "push")
			},
		},
		{
			name:      "Kafka Brokers Slice",
			overrides: map[string]any{KeyKafkaBrokers: []string{"k1:9092", "k2:9092"}},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
			},
		},
		{
			name: "Timeouts In Milliseconds",
			overrides: map[string]any{
				KeySendTimeoutMs:      "250",
				KeySimulatedLatencyMs: -5,
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 250*time.Millisecond, cfg.SendTimeout)
				assert.Equal(t, time.Duration(0), cfg.SimulatedLatency)
			},
		},
		{
			name: "Timeout Too Large For Duration Falls Back",
			overrides: map[string]any{
				KeySendTimeoutMs:      int64(math.MaxInt64 / 1000),
				KeySimulatedLatencyMs: "9223372036854775807",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, time.Duration(0), cfg.SendTimeout)
				assert.Equal(t, time.Duration(0), cfg.SimulatedLatency)
			},
		},
		{
			name:      "Largest Representable Timeout Kept",
			overrides: map[string]any{KeySendTimeoutMs: int64(math.MaxInt64 / int64(time.Millisecond))},
			check: func(t *testing.T, cfg *Config) {
				assert.Greater(t, cfg.SendTimeout, time.Duration(0))
			},
		},
		{
			name: "Drivers Normalized",
			overrides: map[string]any{
				KeyEmailDriver: "KAFKA",
				KeySMSDriver:   "  ",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultDriver, cfg.DriverFor("sms"))
				assert.True(t, cfg.UsesDriver("kafka"))
				assert.Equal(t, "kafka", cfg.DriverFor("email"))
				assert.Equal(t, DefaultDriver, cfg.DriverFor("unknown"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Load(tt.overrides))
		})
	}
}

func TestLoad_DriverForAnyEnabledChannel(t *testing.T) {
	cfg := Load(map[string]any{
		KeyEnabledChannels: "email,slack",
		DriverKey("slack"): "Kafka",
	})

	assert.Equal(t, "SLACK_DRIVER", DriverKey("slack"))
	assert.Equal(t, KeyEmailDriver, DriverKey("email"))
	assert.Equal(t, "kafka", cfg.DriverFor("slack"))
	assert.Equal(t, DefaultDriver, cfg.DriverFor("email"))
	assert.True(t, cfg.UsesDriver("kafka"))
}

func TestLoad_DisabledChannelDriverIgnoredByUsesDriver(t *testing.T) {
	cfg := Load(map[string]any{
		KeyEnabledChannels: "email",
		KeySMSDriver:       "kafka",
	})

	assert.False(t, cfg.UsesDriver("kafka"))
}

func TestLoad_DoesNotReadEnvironment(t *testing.T) {
	t.Setenv(KeyEmailHost, "env.example.org")

	cfg := Load(nil)
	assert.Equal(t, DefaultEmailHost, cfg.Email.Host)
}

func TestNewConfig_Precedence(t *testing.T) {
	t.Setenv(KeyEmailHost, "env.example.org")
	t.Setenv(KeyEmailPort, "abc")
	t.Setenv(KeySMSAPIKey, "env-key")

	cfg, err := NewConfig(".", map[string]any{KeySMSAPIKey: "override-key"})
	require.NoError(t, err)

	assert.Equal(t, "env.example.org", cfg.Email.Host)
	assert.Equal(t, DefaultEmailPort, cfg.Email.Port)
	assert.Equal(t, "override-key", cfg.SMS.APIKey)
}

func TestGetBasePath(t *testing.T) {
	path, err := GetBasePath("configs")
	require.NoError(t, err)
	assert.Contains(t, path, "configs")
}

func TestNewConfig_ReadsDotEnv(t *testing.T) {
	for _, key := range []string{KeyLogLevel, KeyLogFile, KeyEmailPort, KeyPushDriver} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	dir := t.TempDir()
	dotEnv := "LOG_LEVEL=debug\nLOG_FILE=/var/log/dispatch.log\nEMAIL_PORT=2525\nPUSH_DRIVER=kafka\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotEnv), 0o600))

	root, err := GetBasePath("")
	require.NoError(t, err)
	rel, err := filepath.Rel(root, dir)
	require.NoError(t, err)

	cfg, err := NewConfig(rel, nil)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/var/log/dispatch.log", cfg.LogFile)
	assert.Equal(t, 2525, cfg.Email.Port)
	assert.Equal(t, "kafka", cfg.DriverFor("push"))
}
