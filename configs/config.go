package configs

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment keys understood by the loader.
const (
	KeyEmailHost            = "EMAIL_HOST"
	KeyEmailPort            = "EMAIL_PORT"
	KeyEmailUser            = "EMAIL_USER"
	KeyEmailPass            = "EMAIL_PASS"
	KeyEmailFromAddress     = "EMAIL_FROM_ADDRESS"
	KeyEmailDriver          = "EMAIL_DRIVER"
	KeySMSAPIKey            = "SMS_API_KEY"
	KeySMSAPISecret         = "SMS_API_SECRET"
	KeySMSSenderID          = "SMS_SENDER_ID"
	KeySMSDriver            = "SMS_DRIVER"
	KeyPushProjectID        = "PUSH_PROJECT_ID"
	KeyPushPrivateKey       = "PUSH_PRIVATE_KEY"
	KeyPushDriver           = "PUSH_DRIVER"
	KeyEnabledChannels      = "ENABLED_CHANNELS"
	KeySendTimeoutMs        = "SEND_TIMEOUT_MS"
	KeySimulatedLatencyMs   = "SIMULATED_LATENCY_MS"
	KeyKafkaBrokers         = "KAFKA_BROKERS"
	KeyKafkaTopic           = "KAFKA_TOPIC"
	KeyHTTPServerAddress    = "HTTP_SERVER_ADDRESS"
	KeyMetricsServerAddress = "METRICS_SERVER_ADDRESS"
	KeyOtelEndpoint         = "OTEL_EXPORTER_OTLP_ENDPOINT"
	KeyOtelServiceName      = "OTEL_SERVICE_NAME"
	KeyOtelInsecure         = "OTEL_EXPORTER_OTLP_INSECURE"
	KeyLogDevelopment       = "LOG_DEVELOPMENT"
	KeyLogLevel             = "LOG_LEVEL"
	KeyLogFile              = "LOG_FILE"

	driverKeySuffix = "_DRIVER"
)

// Documented defaults.
const (
	DefaultEmailHost            = "smtp.example.com"
	DefaultEmailPort            = 587
	DefaultDriver               = "log"
	DefaultEnabledChannels      = "email,sms,push"
	DefaultKafkaTopic           = "notifications.outbound"
	DefaultHTTPServerAddress    = ":8080"
	DefaultMetricsServerAddress = ":9090"
	DefaultOtelServiceName      = "notification-dispatch"
)

type EmailConf struct {
	Host        string
	Port        int
	User        string
	Password    string
	FromAddress string
}

type SMSConf struct {
	APIKey    string
	APISecret string
	SenderID  string
}

type PushConf struct {
	ProjectID  string
	PrivateKey string
}

// Config is the channel configuration snapshot. It is built once at startup
// and shared by pointer; nothing writes to it after Load or NewConfig returns.
type Config struct {
	Email EmailConf
	SMS   SMSConf
	Push  PushConf

	EnabledChannels []string
	// Drivers maps each enabled channel to the value of its <NAME>_DRIVER key.
	Drivers map[string]string

	SendTimeout      time.Duration
	SimulatedLatency time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	HTTPServerAddress    string
	MetricsServerAddress string

	OtelEndpoint    string
	OtelServiceName string
	OtelInsecure    bool

	LogDevelopment bool
	LogLevel       string
	LogFile        string
}

// Defaults returns the documented default values keyed by environment name.
func Defaults() map[string]any {
	return map[string]any{
		KeyEmailHost:            DefaultEmailHost,
		KeyEmailPort:            DefaultEmailPort,
		KeyEmailUser:            "",
		KeyEmailPass:            "",
		KeyEmailFromAddress:     "",
		KeyEmailDriver:          DefaultDriver,
		KeySMSAPIKey:            "",
		KeySMSAPISecret:         "",
		KeySMSSenderID:          "",
		KeySMSDriver:            DefaultDriver,
		KeyPushProjectID:        "",
		KeyPushPrivateKey:       "",
		KeyPushDriver:           DefaultDriver,
		KeyEnabledChannels:      DefaultEnabledChannels,
		KeySendTimeoutMs:        0,
		KeySimulatedLatencyMs:   0,
		KeyKafkaBrokers:         "",
		KeyKafkaTopic:           DefaultKafkaTopic,
		KeyHTTPServerAddress:    DefaultHTTPServerAddress,
		KeyMetricsServerAddress: DefaultMetricsServerAddress,
		KeyOtelEndpoint:         "",
		KeyOtelServiceName:      DefaultOtelServiceName,
		KeyOtelInsecure:         false,
		KeyLogDevelopment:       false,
		KeyLogLevel:             "",
		KeyLogFile:              "",
	}
}

// Load merges overrides over the defaults, key by key, without looking at the
// environment. Malformed values fall back to their default.
func Load(overrides map[string]any) *Config {
	vip := newViper()
	applyOverrides(vip, overrides)
	return build(vip)
}

// NewConfig is the process-start loader. Precedence, highest first: overrides,
// process environment, the optional .env file under path, defaults.
func NewConfig(path string, overrides map[string]any) (*Config, error) {
	vip := newViper()

	if basePath, err := GetBasePath(path); err == nil {
		vip.SetConfigType("env")
		vip.SetConfigName(".env")
		vip.AddConfigPath(basePath)

		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	vip.AutomaticEnv()
	for key := range Defaults() {
		if err := vip.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding env %s: %w", key, err)
		}
	}

	applyOverrides(vip, overrides)
	return build(vip), nil
}

// GetBasePath walks up from the working directory to the module root and
// joins path onto it.
func GetBasePath(path string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(cwd, "go.mod")); err == nil {
			return filepath.Join(cwd, path), nil
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			return "", errors.New("go.mod not found")
		}
		cwd = parent
	}
}

// DriverKey is the configuration key selecting the transmitter of a channel.
func DriverKey(channelName string) string {
	return strings.ToUpper(channelName) + driverKeySuffix
}

// DriverFor returns the transmitter driver configured for a channel name.
func (c *Config) DriverFor(channelName string) string {
	if driver, ok := c.Drivers[channelName]; ok {
		return driver
	}
	return DefaultDriver
}

// UsesDriver reports whether any enabled channel is configured with driver.
func (c *Config) UsesDriver(driver string) bool {
	for _, name := range c.EnabledChannels {
		if c.DriverFor(name) == driver {
			return true
		}
	}
	return false
}

func newViper() *viper.Viper {
	vip := viper.New()
	for key, value := range Defaults() {
		vip.SetDefault(key, value)
	}
	return vip
}

func applyOverrides(vip *viper.Viper, overrides map[string]any) {
	for key, value := range overrides {
		vip.Set(key, value)
	}
}

func build(vip *viper.Viper) *Config {
	enabled := listValue(vip, KeyEnabledChannels)
	drivers := make(map[string]string, len(enabled))
	for _, name := range enabled {
		drivers[name] = driverValue(vip, DriverKey(name))
	}

	return &Config{
		Email: EmailConf{
			Host:        stringValue(vip, KeyEmailHost, DefaultEmailHost),
			Port:        portValue(vip, KeyEmailPort, DefaultEmailPort),
			User:        vip.GetString(KeyEmailUser),
			Password:    vip.GetString(KeyEmailPass),
			FromAddress: vip.GetString(KeyEmailFromAddress),
		},
		SMS: SMSConf{
			APIKey:    vip.GetString(KeySMSAPIKey),
			APISecret: vip.GetString(KeySMSAPISecret),
			SenderID:  vip.GetString(KeySMSSenderID),
		},
		Push: PushConf{
			ProjectID:  vip.GetString(KeyPushProjectID),
			PrivateKey: vip.GetString(KeyPushPrivateKey),
		},
		EnabledChannels:      enabled,
		Drivers:              drivers,
		SendTimeout:          millisValue(vip, KeySendTimeoutMs),
		SimulatedLatency:     millisValue(vip, KeySimulatedLatencyMs),
		KafkaBrokers:         listValue(vip, KeyKafkaBrokers),
		KafkaTopic:           stringValue(vip, KeyKafkaTopic, DefaultKafkaTopic),
		HTTPServerAddress:    stringValue(vip, KeyHTTPServerAddress, DefaultHTTPServerAddress),
		MetricsServerAddress: stringValue(vip, KeyMetricsServerAddress, DefaultMetricsServerAddress),
		OtelEndpoint:         vip.GetString(KeyOtelEndpoint),
		OtelServiceName:      stringValue(vip, KeyOtelServiceName, DefaultOtelServiceName),
		OtelInsecure:         vip.GetBool(KeyOtelInsecure),
		LogDevelopment:       vip.GetBool(KeyLogDevelopment),
		LogLevel:             strings.TrimSpace(vip.GetString(KeyLogLevel)),
		LogFile:              strings.TrimSpace(vip.GetString(KeyLogFile)),
	}
}

func stringValue(vip *viper.Viper, key, fallback string) string {
	if v := strings.TrimSpace(vip.GetString(key)); v != "" {
		return v
	}
	return fallback
}

func driverValue(vip *viper.Viper, key string) string {
	return strings.ToLower(stringValue(vip, key, DefaultDriver))
}

// portValue treats anything that is not a valid TCP port as absent.
func portValue(vip *viper.Viper, key string, fallback int) int {
	port := vip.GetInt(key)
	if port <= 0 || port > 65535 {
		return fallback
	}
	return port
}

// millisValue treats non-positive values, and values too large for a
// time.Duration, as absent.
func millisValue(vip *viper.Viper, key string) time.Duration {
	ms := vip.GetInt64(key)
	if ms <= 0 || ms > math.MaxInt64/int64(time.Millisecond) {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// listValue accepts either a comma-separated string or a slice.
func listValue(vip *viper.Viper, key string) []string {
	var items []string
	if raw, ok := vip.Get(key).(string); ok {
		items = strings.Split(raw, ",")
	} else {
		items = vip.GetStringSlice(key)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
