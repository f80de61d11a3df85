package boot

import (
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	assert := assert.New(t)

	config, err := LoadWith(envconfig.MapLookuper(map[string]string{}))
	assert.Nil(err)
	if config == nil {
		t.Fatalf("expected a config")
	}

	assert.True(config.IsDevelopment())
	assert.Equal("app.db", config.DatabaseURL())
	assert.Equal("8080", config.Server.Port)
	assert.Equal("8081", config.Server.MetricsPort)
	assert.Equal("", config.WebhookSecret())
	assert.Equal([]string{"*"}, config.AllowedOrigins())
	assert.Equal(log.INFO, config.LogLvl())
}

func TestLoadOverrides(t *testing.T) {
	assert := assert.New(t)

	config, err := LoadWith(envconfig.MapLookuper(map[string]string{
		"ENV":             "prod",
		"LOG_LEVEL":       "DEBUG",
		"DATABASE_URL":    "/data/messages.db",
		"WEBHOOK_SECRET":  "testsecret",
		"ALLOWED_ORIGINS": "https://a.example.com, https://b.example.com,",
	}))
	assert.Nil(err)
	if config == nil {
		t.Fatalf("expected a config")
	}

	assert.True(config.IsProduction())
	assert.Equal("/data/messages.db", config.DatabaseURL())
	assert.Equal("testsecret", config.WebhookSecret())
	assert.Equal([]string{"https://a.example.com", "https://b.example.com"}, config.AllowedOrigins())
	assert.Equal(log.DEBUG, config.LogLvl())
}
