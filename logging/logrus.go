package logging

import "github.com/sirupsen/logrus"

// LogrusAdapter bridges a *logrus.Logger to the Logger interface so services
// that already standardize on logrus can feed the pipeline their logger.
// Key/value argument pairs are folded into logrus fields; a trailing odd
// argument is kept under the "extra" field.
type LogrusAdapter struct {
	logger *logrus.Logger
}

// NewLogrusAdapter wraps an existing logrus logger.
func NewLogrusAdapter(logger *logrus.Logger) *LogrusAdapter {
	return &LogrusAdapter{logger: logger}
}

// NewLogrusLogger creates a JSON-formatted logrus logger tagged with a
// service field and returns it wrapped as a Logger.
func NewLogrusLogger(serviceName string, level logrus.Level) *LogrusAdapter {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(level)
	logger.AddHook(&serviceHook{service: serviceName})
	return &LogrusAdapter{logger: logger}
}

func fields(args []any) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		f[key] = args[i+1]
	}
	if len(args)%2 == 1 {
		f["extra"] = args[len(args)-1]
	}
	return f
}

// Debug logs a debug message.
func (a *LogrusAdapter) Debug(msg string, args ...any) { a.logger.WithFields(fields(args)).Debug(msg) }

// Info logs an informational message.
func (a *LogrusAdapter) Info(msg string, args ...any) { a.logger.WithFields(fields(args)).Info(msg) }

// Warn logs a warning message.
func (a *LogrusAdapter) Warn(msg string, args ...any) { a.logger.WithFields(fields(args)).Warn(msg) }

// Error logs an error message.
func (a *LogrusAdapter) Error(msg string, args ...any) { a.logger.WithFields(fields(args)).Error(msg) }

// serviceHook stamps every entry with the service name.
type serviceHook struct {
	service string
}

func (h *serviceHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *serviceHook) Fire(e *logrus.Entry) error {
	e.Data["service"] = h.service
	return nil
}
