package log

import "github.com/tacusci/logging/v2"

var Debug = func(format string, a ...interface{}) {
	logging.Debug(format, a...) //nolint
}

var Info = func(format string, a ...interface{}) {
	logging.Info(format, a...) //nolint
}

var Warn = func(format string, a ...interface{}) {
	logging.Warn(format, a...) //nolint
}

var Error = func(format string, a ...interface{}) {
	logging.Error(format, a...) //nolint
}

var Fatal = func(format string, a ...interface{}) {
	logging.Fatal(format, a...) //nolint
}

// Configure sets the process wide level, debug output is only
// shown when verbose is requested.
func Configure(verbose bool) {
	logging.ColorLogLevelLabelOnly = true
	if verbose {
		logging.SetLevel(logging.DebugLevel)
		return
	}
	logging.SetLevel(logging.WarnLevel)
}

// Silence mutes all output and returns a func to restore the previous level.
func Silence() func() {
	existing := logging.CurrentLoggingLevel
	logging.CurrentLoggingLevel = logging.SilentLevel
	return func() { logging.CurrentLoggingLevel = existing }
}
