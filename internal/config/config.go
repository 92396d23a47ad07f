package config

import "fmt"

type Config struct {
	Env                        string
	HTTPPort                   int
	DatabaseURL                string
	GoogleCloudProjectID       string
	GoogleCloudCredentialsJSON string
	GoogleCloudSpeechLocation  string
	GoogleCloudSpeechModel     string
	SpeechLanguage             string
	SilenceTimeoutSeconds      int
	GeminiAPIKey               string
	GeminiModel                string
	GeminiEndpoint             string
	RendererWebhookURL         string
	DefaultPaymentMethod       string
	BudgetValidity             string
	ServiceWarranty            string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be a valid port, got %d", c.HTTPPort)
	}
	if c.SilenceTimeoutSeconds <= 0 {
		return fmt.Errorf("SILENCE_TIMEOUT_SECONDS must be positive, got %d", c.SilenceTimeoutSeconds)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "GOOGLE_CLOUD_PROJECT_ID", value: c.GoogleCloudProjectID},
		{name: "GOOGLE_CLOUD_CREDENTIALS_JSON", value: c.GoogleCloudCredentialsJSON},
		{name: "SPEECH_LANGUAGE", value: c.SpeechLanguage},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
