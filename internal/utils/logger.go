package utils

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

// serviceHook stamps every entry with the emitting binary so the API and the
// migrate tool can share a log sink.
type serviceHook struct {
	service string
}

func (h serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h serviceHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["service"]; !ok {
		entry.Data["service"] = h.service
	}
	return nil
}

// InitLogger configures Logger from LOG_LEVEL and LOG_FORMAT ("text" or
// "json").
func InitLogger(service string) {
	configureLogger(service, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Stdout)
}

func configureLogger(service, levelName, format string, out io.Writer) {
	Logger.SetOutput(out)
	Logger.ReplaceHooks(make(logrus.LevelHooks))
	if service != "" {
		Logger.AddHook(serviceHook{service: service})
	}

	if strings.EqualFold(format, "json") {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	Logger.SetLevel(logrus.InfoLevel)
	if levelName == "" {
		return
	}
	level, err := logrus.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		Logger.Warnf("Unknown LOG_LEVEL %q, using info", levelName)
		return
	}
	Logger.SetLevel(level)
}

// SilenceLogger discards all log output. Used by tests.
func SilenceLogger() {
	Logger.SetOutput(io.Discard)
}
