package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/orcavozapp/orcavoz/internal/config"
)

type envConfig struct {
	Env                        string `env:"ENV" envDefault:"production"`
	HTTPPort                   int    `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL                string `env:"DATABASE_URL,required"`
	GoogleCloudProjectID       string `env:"GOOGLE_CLOUD_PROJECT_ID,required"`
	GoogleCloudCredentialsJSON string `env:"GOOGLE_CLOUD_CREDENTIALS_JSON,required"`
	GoogleCloudSpeechLocation  string `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"southamerica-east1"`
	GoogleCloudSpeechModel     string `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"chirp_3"`
	SpeechLanguage             string `env:"SPEECH_LANGUAGE" envDefault:"pt-BR"`
	SilenceTimeoutSeconds      int    `env:"SILENCE_TIMEOUT_SECONDS" envDefault:"8"`
	GeminiAPIKey               string `env:"GEMINI_API_KEY"`
	GeminiModel                string `env:"GEMINI_MODEL" envDefault:"gemini-3-flash-preview"`
	GeminiEndpoint             string `env:"GEMINI_ENDPOINT" envDefault:"https://generativelanguage.googleapis.com"`
	RendererWebhookURL         string `env:"RENDERER_WEBHOOK_URL"`
	DefaultPaymentMethod       string `env:"DEFAULT_PAYMENT_METHOD" envDefault:"PIX"`
	BudgetValidity             string `env:"BUDGET_VALIDITY" envDefault:"7 dias"`
	ServiceWarranty            string `env:"SERVICE_WARRANTY" envDefault:"90 dias"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                        raw.Env,
		HTTPPort:                   raw.HTTPPort,
		DatabaseURL:                raw.DatabaseURL,
		GoogleCloudProjectID:       raw.GoogleCloudProjectID,
		GoogleCloudCredentialsJSON: raw.GoogleCloudCredentialsJSON,
		GoogleCloudSpeechLocation:  raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:     raw.GoogleCloudSpeechModel,
		SpeechLanguage:             raw.SpeechLanguage,
		SilenceTimeoutSeconds:      raw.SilenceTimeoutSeconds,
		GeminiAPIKey:               raw.GeminiAPIKey,
		GeminiModel:                raw.GeminiModel,
		GeminiEndpoint:             raw.GeminiEndpoint,
		RendererWebhookURL:         raw.RendererWebhookURL,
		DefaultPaymentMethod:       raw.DefaultPaymentMethod,
		BudgetValidity:             raw.BudgetValidity,
		ServiceWarranty:            raw.ServiceWarranty,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
