package radioapp

import playerpkg "github.com/edward-ap/phradio/internal/player"

// SetTraceLogEnabled toggles verbose libVLC logging to vlc.log. Call it
// before NewApp so the player sees the flag during Init.
func SetTraceLogEnabled(b bool) { playerpkg.SetTraceLoggingEnabled(b) }
