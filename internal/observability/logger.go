// Package observability holds the shared logger and the human-readable
// job summary printed at the end of a run.
package observability

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. Subsystems derive entries from it with
// WithField so every line carries its component.
var Log = logrus.New()

// Init configures JSON output and the log level. DEBUG=true in the
// environment enables debug logging.
func Init() {
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	Log.SetOutput(os.Stdout)

	if os.Getenv("DEBUG") == "true" {
		Log.SetLevel(logrus.DebugLevel)
	} else {
		Log.SetLevel(logrus.InfoLevel)
	}
}

// Component returns a logger entry tagged with a component name.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
