package tramnet

import (
	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger()

// SetLogger replaces the package logger. Passing nil restores the standard one.
func SetLogger(logger *logrus.Logger) {
	if logger == nil {
		log = logrus.StandardLogger()
		return
	}
	log = logger
}
