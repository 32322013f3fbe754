package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the shared structured logger.
var Log = logrus.New()

// Init configures JSON output and the level for the given environment.
func Init(environment string) {
	Log.Out = os.Stdout
	Log.SetFormatter(&logrus.JSONFormatter{})
	if environment == "development" {
		Log.SetLevel(logrus.DebugLevel)
	} else {
		Log.SetLevel(logrus.InfoLevel)
	}
}
