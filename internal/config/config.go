package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type DispatchdConfig struct {
	DBDSN       string `envconfig:"DB_DSN" required:"true"`
	Port        string `envconfig:"PORT" default:"8080"`
	MetricsPort string `envconfig:"METRICS_PORT" default:"9090"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DefaultCountryCode       string        `envconfig:"DEFAULT_COUNTRY_CODE" default:"91"`
	FallbackOnPartialFailure bool          `envconfig:"FALLBACK_ON_PARTIAL_FAILURE" default:"false"`
	ProviderCallTimeout      time.Duration `envconfig:"PROVIDER_CALL_TIMEOUT" default:"30s"`

	// Gupshup (primary WhatsApp + SMS aggregator)
	GupshupAPIKey  string `envconfig:"GUPSHUP_API_KEY" required:"true"`
	GupshupSource  string `envconfig:"GUPSHUP_SOURCE" required:"true"`
	GupshupAppName string `envconfig:"GUPSHUP_APP_NAME"`
	GupshupBaseURL string `envconfig:"GUPSHUP_BASE_URL" default:"https://api.gupshup.io"`

	WhatsAppBatchSize    int           `envconfig:"WHATSAPP_BATCH_SIZE" default:"10"`
	WhatsAppBatchDelay   time.Duration `envconfig:"WHATSAPP_BATCH_DELAY" default:"1s"`
	WhatsAppMaxPerSecond int           `envconfig:"WHATSAPP_MAX_PER_SECOND" default:"5"`
	WhatsAppMaxPerDay    int           `envconfig:"WHATSAPP_MAX_PER_DAY" default:"10000"`
	WhatsAppFlatCost     float64       `envconfig:"WHATSAPP_FLAT_COST" default:"0"`

	SMSBatchSize    int           `envconfig:"SMS_BATCH_SIZE" default:"50"`
	SMSBatchDelay   time.Duration `envconfig:"SMS_BATCH_DELAY" default:"500ms"`
	SMSMaxPerSecond int           `envconfig:"SMS_MAX_PER_SECOND" default:"10"`
	SMSMaxPerDay    int           `envconfig:"SMS_MAX_PER_DAY" default:"50000"`
	SMSSegmentCost  float64       `envconfig:"SMS_SEGMENT_COST" default:"0.25"`

	// Twilio (secondary SMS; enabled when the SID is set)
	TwilioAccountSID   string  `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken    string  `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber   string  `envconfig:"TWILIO_FROM_NUMBER"`
	TwilioBaseURL      string  `envconfig:"TWILIO_BASE_URL" default:"https://api.twilio.com"`
	TwilioMaxPerSecond int     `envconfig:"TWILIO_MAX_PER_SECOND" default:"5"`
	TwilioMaxPerDay    int     `envconfig:"TWILIO_MAX_PER_DAY" default:"10000"`
	TwilioSegmentCost  float64 `envconfig:"TWILIO_SEGMENT_COST" default:"0.35"`

	// SendGrid (primary email)
	SendGridAPIKey    string        `envconfig:"SENDGRID_API_KEY" required:"true"`
	SendGridFromEmail string        `envconfig:"SENDGRID_FROM_EMAIL" required:"true"`
	SendGridFromName  string        `envconfig:"SENDGRID_FROM_NAME"`
	SendGridBaseURL   string        `envconfig:"SENDGRID_BASE_URL" default:"https://api.sendgrid.com"`
	EmailBatchSize    int           `envconfig:"EMAIL_BATCH_SIZE" default:"25"`
	EmailBatchDelay   time.Duration `envconfig:"EMAIL_BATCH_DELAY" default:"200ms"`
	EmailMaxPerSecond int           `envconfig:"EMAIL_MAX_PER_SECOND" default:"20"`
	EmailMaxPerMinute int           `envconfig:"EMAIL_MAX_PER_MINUTE" default:"600"`
	EmailFlatCost     float64       `envconfig:"EMAIL_FLAT_COST" default:"0.01"`

	// Mailgun (secondary email; enabled when the API key is set)
	MailgunAPIKey  string `envconfig:"MAILGUN_API_KEY"`
	MailgunDomain  string `envconfig:"MAILGUN_DOMAIN"`
	MailgunFrom    string `envconfig:"MAILGUN_FROM"`
	MailgunBaseURL string `envconfig:"MAILGUN_BASE_URL" default:"https://api.mailgun.net"`

	// DB pool
	DBMaxConns int32 `envconfig:"DB_POOL_MAX_CONNS" default:"10"`
	DBMinConns int32 `envconfig:"DB_POOL_MIN_CONNS" default:"0"`
}

type MockGatewayConfig struct {
	Port        string  `envconfig:"PORT" default:"8081"`
	LogFormat   string  `envconfig:"LOG_FORMAT" default:"json"`
	SuccessRate float64 `envconfig:"MOCK_SUCCESS_RATE" default:"0.95"`
	DelayMs     int     `envconfig:"MOCK_DELAY_MS" default:"100"`
	JitterMs    int     `envconfig:"MOCK_JITTER_MS" default:"100"`
}

func LoadDispatchd() DispatchdConfig {
	var cfg DispatchdConfig
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func LoadMockGateway() MockGatewayConfig {
	var cfg MockGatewayConfig
	if err := envconfig.Process("", &cfg); err != nil {
		panic(err)
	}
	return cfg
}
