// Package logging provides the service's standard log configuration and HTTP logging middleware.
package logging

import (
	"io"
	"log"
	"os"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// MakeDefaultLoggers returns a Loggers instance configured with the service's standard log format.
// Output goes to stdout, except Error level which goes to stderr. Debug level is disabled.
func MakeDefaultLoggers() ldlog.Loggers {
	return makeLoggers(os.Stdout, os.Stderr, ldlog.Info)
}

// MakeLoggersWithLevel is the same as MakeDefaultLoggers, but with a different minimum level.
func MakeLoggersWithLevel(minLevel ldlog.LogLevel) ldlog.Loggers {
	return makeLoggers(os.Stdout, os.Stderr, minLevel)
}

func makeLoggers(out, errOut io.Writer, minLevel ldlog.LogLevel) ldlog.Loggers {
	loggers := ldlog.NewDefaultLoggers()
	loggers.SetBaseLogger(makeLog(out))
	loggers.SetBaseLoggerForLevel(ldlog.Error, makeLog(errOut))
	loggers.SetMinLevel(minLevel)
	return loggers
}

func makeLog(w io.Writer) *log.Logger {
	return log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds)
}
