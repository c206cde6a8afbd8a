package llm

import (
	"github.com/caarlos0/env/v11"
	"github.com/huandu/go-clone"
	"github.com/pkg/errors"
)

// Settings configures the OpenAI client. The defaults favor reproducible
// answers: temperature 0 and a fixed seed.
type Settings struct {
	APIKey        string  `yaml:"api_key,omitempty" env:"OPENAI_API_KEY"`
	BaseURL       string  `yaml:"base_url,omitempty" env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	Model         string  `yaml:"model" env:"QALOG_MODEL" envDefault:"gpt-3.5-turbo"`
	MaxTokens     int     `yaml:"max_tokens" env:"QALOG_MAX_TOKENS" envDefault:"1000"`
	Temperature   float32 `yaml:"temperature" env:"QALOG_TEMPERATURE" envDefault:"0"`
	TopP          float32 `yaml:"top_p" env:"QALOG_TOP_P" envDefault:"1"`
	Seed          int     `yaml:"seed" env:"QALOG_SEED" envDefault:"42"`
	SystemMessage string  `yaml:"system_message,omitempty" env:"QALOG_SYSTEM_MESSAGE"`
}

var ErrMissingAPIKey = errors.New("OpenAI API key is required, set OPENAI_API_KEY")

// LoadSettings reads the settings from the environment.
func LoadSettings() (*Settings, error) {
	s := &Settings{}
	if err := env.Parse(s); err != nil {
		return nil, errors.Wrap(err, "could not parse LLM settings from environment")
	}
	return s, nil
}

func (s *Settings) Clone() *Settings {
	return clone.Clone(s).(*Settings)
}

func (s *Settings) Validate() error {
	if s.APIKey == "" {
		return ErrMissingAPIKey
	}
	if s.Model == "" {
		return errors.New("no model configured")
	}
	return nil
}
