package logging

import (
	"os"

	"github.com/pickup-archive/pickups-api/internal/config"

	"github.com/sirupsen/logrus"
)

// New creates a new structured logger
func New(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warn("Invalid log level, defaulting to info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "ts",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "msg",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z",
		})
	}

	logger.SetOutput(os.Stdout)
	logger.AddHook(defaultFieldsHook{fields: logrus.Fields{
		"service":     "pickups-api",
		"version":     Version(),
		"environment": cfg.Server.Environment,
	}})

	return logger
}

// Version returns the build version, set through APP_VERSION at deploy time.
func Version() string {
	if version := os.Getenv("APP_VERSION"); version != "" {
		return version
	}
	return "dev"
}

// WithRequestID adds the request id to the logger context
func WithRequestID(logger *logrus.Logger, requestID string) *logrus.Entry {
	return logger.WithField("request_id", requestID)
}

// WithAdminID adds the authenticated admin to the logger context
func WithAdminID(logger *logrus.Logger, adminID string) *logrus.Entry {
	return logger.WithField("admin_id", adminID)
}

// defaultFieldsHook stamps service metadata on every entry.
type defaultFieldsHook struct {
	fields logrus.Fields
}

func (h defaultFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h defaultFieldsHook) Fire(entry *logrus.Entry) error {
	for k, v := range h.fields {
		if _, exists := entry.Data[k]; !exists {
			entry.Data[k] = v
		}
	}
	return nil
}
