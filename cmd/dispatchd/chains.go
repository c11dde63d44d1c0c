package main

import (
	"net/http"
	"time"

	"campusnotify/internal/config"
	"campusnotify/internal/dispatch"
	"campusnotify/internal/domain"
	"campusnotify/internal/provider"
	"campusnotify/internal/provider/gupshup"
	"campusnotify/internal/provider/mailgun"
	"campusnotify/internal/provider/sendgrid"
	"campusnotify/internal/provider/twilio"
	"campusnotify/internal/ratelimit"
)

// buildChains wires the configured providers into per-channel fallback
// chains. Primary providers are required; secondaries join a chain only
// when their credentials are present.
func buildChains(cfg config.DispatchdConfig) map[domain.Channel]*dispatch.Chain {
	httpClient := &http.Client{Timeout: cfg.ProviderCallTimeout}

	waSender := provider.NewWhatsApp(provider.WhatsAppConfig{
		Config: provider.Config{
			Name: "gupshup-whatsapp",
			Transport: &gupshup.Client{
				APIKey:  cfg.GupshupAPIKey,
				Source:  cfg.GupshupSource,
				AppName: cfg.GupshupAppName,
				Channel: "whatsapp",
				BaseURL: cfg.GupshupBaseURL,
				HTTP:    httpClient,
			},
			Limiter: ratelimit.New(ratelimit.Config{
				Provider:     "gupshup-whatsapp",
				MaxPerSecond: cfg.WhatsAppMaxPerSecond,
				LongLimit:    cfg.WhatsAppMaxPerDay,
				LongWindow:   24 * time.Hour,
			}),
			BatchSize:       cfg.WhatsAppBatchSize,
			InterBatchDelay: cfg.WhatsAppBatchDelay,
			CallTimeout:     cfg.ProviderCallTimeout,
		},
		FlatCost:           cfg.WhatsAppFlatCost,
		DefaultCountryCode: cfg.DefaultCountryCode,
	})

	smsProviders := []provider.Provider{
		provider.NewSMS(provider.SMSConfig{
			Config: provider.Config{
				Name: "gupshup-sms",
				Transport: &gupshup.Client{
					APIKey:  cfg.GupshupAPIKey,
					Source:  cfg.GupshupSource,
					Channel: "sms",
					BaseURL: cfg.GupshupBaseURL,
					HTTP:    httpClient,
				},
				Limiter: ratelimit.New(ratelimit.Config{
					Provider:     "gupshup-sms",
					MaxPerSecond: cfg.SMSMaxPerSecond,
					LongLimit:    cfg.SMSMaxPerDay,
					LongWindow:   24 * time.Hour,
				}),
				BatchSize:       cfg.SMSBatchSize,
				InterBatchDelay: cfg.SMSBatchDelay,
				CallTimeout:     cfg.ProviderCallTimeout,
			},
			SegmentCost:        cfg.SMSSegmentCost,
			DefaultCountryCode: cfg.DefaultCountryCode,
		}),
	}
	if cfg.TwilioAccountSID != "" {
		smsProviders = append(smsProviders, provider.NewSMS(provider.SMSConfig{
			Config: provider.Config{
				Name: "twilio-sms",
				Transport: &twilio.Client{
					AccountSID: cfg.TwilioAccountSID,
					AuthToken:  cfg.TwilioAuthToken,
					FromNumber: cfg.TwilioFromNumber,
					BaseURL:    cfg.TwilioBaseURL,
					HTTP:       httpClient,
				},
				Limiter: ratelimit.New(ratelimit.Config{
					Provider:     "twilio-sms",
					MaxPerSecond: cfg.TwilioMaxPerSecond,
					LongLimit:    cfg.TwilioMaxPerDay,
					LongWindow:   24 * time.Hour,
				}),
				BatchSize:       cfg.SMSBatchSize,
				InterBatchDelay: cfg.SMSBatchDelay,
				CallTimeout:     cfg.ProviderCallTimeout,
			},
			SegmentCost:        cfg.TwilioSegmentCost,
			DefaultCountryCode: cfg.DefaultCountryCode,
		}))
	}

	emailProviders := []provider.Provider{
		provider.NewEmail(provider.EmailConfig{
			Config: provider.Config{
				Name: "sendgrid",
				Transport: &sendgrid.Client{
					APIKey:    cfg.SendGridAPIKey,
					FromEmail: cfg.SendGridFromEmail,
					FromName:  cfg.SendGridFromName,
					BaseURL:   cfg.SendGridBaseURL,
					HTTP:      httpClient,
				},
				// Email aggregators meter per minute; blocking briefly at
				// the ceiling is acceptable back-pressure.
				Limiter: ratelimit.New(ratelimit.Config{
					Provider:     "sendgrid",
					MaxPerSecond: cfg.EmailMaxPerSecond,
					LongLimit:    cfg.EmailMaxPerMinute,
					LongWindow:   time.Minute,
					BlockOnLong:  true,
				}),
				BatchSize:       cfg.EmailBatchSize,
				InterBatchDelay: cfg.EmailBatchDelay,
				CallTimeout:     cfg.ProviderCallTimeout,
			},
			FlatCost: cfg.EmailFlatCost,
		}),
	}
	if cfg.MailgunAPIKey != "" {
		emailProviders = append(emailProviders, provider.NewEmail(provider.EmailConfig{
			Config: provider.Config{
				Name: "mailgun",
				Transport: &mailgun.Client{
					APIKey:  cfg.MailgunAPIKey,
					Domain:  cfg.MailgunDomain,
					From:    cfg.MailgunFrom,
					BaseURL: cfg.MailgunBaseURL,
					HTTP:    httpClient,
				},
				Limiter: ratelimit.New(ratelimit.Config{
					Provider:     "mailgun",
					MaxPerSecond: cfg.EmailMaxPerSecond,
					LongLimit:    cfg.EmailMaxPerMinute,
					LongWindow:   time.Minute,
					BlockOnLong:  true,
				}),
				BatchSize:       cfg.EmailBatchSize,
				InterBatchDelay: cfg.EmailBatchDelay,
				CallTimeout:     cfg.ProviderCallTimeout,
			},
			FlatCost: cfg.EmailFlatCost,
		}))
	}

	return map[domain.Channel]*dispatch.Chain{
		domain.ChannelWhatsApp: {
			Channel:                  domain.ChannelWhatsApp,
			Providers:                []provider.Provider{waSender},
			FallbackOnPartialFailure: cfg.FallbackOnPartialFailure,
		},
		domain.ChannelSMS: {
			Channel:                  domain.ChannelSMS,
			Providers:                smsProviders,
			FallbackOnPartialFailure: cfg.FallbackOnPartialFailure,
		},
		domain.ChannelEmail: {
			Channel:                  domain.ChannelEmail,
			Providers:                emailProviders,
			FallbackOnPartialFailure: cfg.FallbackOnPartialFailure,
		},
	}
}
