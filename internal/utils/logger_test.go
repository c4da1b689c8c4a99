package utils

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureLogger_JSONCarriesService(t *testing.T) {
	t.Cleanup(func() { configureLogger("", "", "", bytes.NewBuffer(nil)) })

	var buf bytes.Buffer
	configureLogger("stores-api", "debug", "json", &buf)
	assert.Equal(t, logrus.DebugLevel, Logger.GetLevel())

	Logger.WithField("user_id", 7).Debug("User registered")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "stores-api", line["service"])
	assert.Equal(t, "User registered", line["msg"])
	assert.EqualValues(t, 7, line["user_id"])
}

func TestConfigureLogger_ExplicitServiceFieldWins(t *testing.T) {
	t.Cleanup(func() { configureLogger("", "", "", bytes.NewBuffer(nil)) })

	var buf bytes.Buffer
	configureLogger("stores-api", "", "json", &buf)
	Logger.WithField("service", "cron").Info("Blocklist cleanup finished")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "cron", line["service"])
}

func TestConfigureLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	t.Cleanup(func() { configureLogger("", "", "", bytes.NewBuffer(nil)) })

	var buf bytes.Buffer
	configureLogger("stores-api", "chatty", "", &buf)

	assert.Equal(t, logrus.InfoLevel, Logger.GetLevel())
	assert.Contains(t, buf.String(), "chatty")
	assert.Contains(t, buf.String(), "service=stores-api")
}
