package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logg *logrus.Logger

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logg.SetLevel(level)
}

// Get returns the process-wide structured logger.
func Get() *logrus.Logger {
	return logg
}

// ForModule returns an entry pre-tagged with the originating module, so log
// lines stay greppable per component.
func ForModule(module string) *logrus.Entry {
	return logg.WithField("module", module)
}
