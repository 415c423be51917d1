package config_test

import (
	"testing"

	"github.com/relaymesh/switchboard/internal/config"
	"github.com/relaymesh/switchboard/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_MatchesSpecDefaults(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, config.ClassifierBuiltin, cfg.Classifier)
	assert.Equal(t, 0.7, cfg.ConfidenceThreshold)
	assert.Equal(t, "gateway", cfg.Graph.Source)
	assert.Equal(t, 1000, cfg.Graph.Cache.MaxSize)
	assert.Equal(t, 300_000, cfg.Graph.Cache.TTLMs)
	assert.Equal(t, 2, cfg.External.MaxRetries)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RejectsBlankServiceID(t *testing.T) {
	cfg := config.Default()
	cfg.Services = []config.ServiceConfig{{ID: "", DisplayName: "x"}}
	err := cfg.Validate()
	var configErr *models.ConfigurationError
	require.ErrorAs(t, err, &configErr)
}

func TestValidate_RejectsBlankKeyword(t *testing.T) {
	cfg := config.Default()
	cfg.Services = []config.ServiceConfig{{ID: "auth", Keywords: []string{""}}}
	err := cfg.Validate()
	require.Error(t, err)
}

func TestValidate_RequiresGraphSourceWhenEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.Graph.Enabled = true
	cfg.Graph.Source = ""
	err := cfg.Validate()
	require.Error(t, err)
}

func TestValidate_RequiresAPIKeyForExternalClassifier(t *testing.T) {
	cfg := config.Default()
	cfg.Classifier = config.ClassifierExternal
	err := cfg.Validate()
	require.Error(t, err)

	cfg.External.APIKey = "sk-test"
	assert.NoError(t, cfg.Validate())
}
