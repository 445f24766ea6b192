package player

import (
	"sync/atomic"

	logging "github.com/ipfs/go-log/v2"
)

// traceLogFile receives libVLC's own log while tracing.
const traceLogFile = "vlc.log"

var tracing atomic.Bool

// SetTraceLoggingEnabled switches libVLC file logging and debug output of
// this package. It affects players initialised afterwards.
func SetTraceLoggingEnabled(enabled bool) {
	tracing.Store(enabled)
	level := "info"
	if enabled {
		level = "debug"
	}
	_ = logging.SetLogLevel("phradio/player", level)
}

func isTraceLoggingEnabled() bool { return tracing.Load() }

func vlcTraceArgs() []string {
	return []string{"--verbose=2", "--file-logging", "--log-verbose=2", "--logfile=" + traceLogFile}
}
