package main

import (
	"flag"

	logging "github.com/ipfs/go-log/v2"

	radioapp "github.com/edward-ap/phradio/internal/radioapp"
)

func main() {
	trace := flag.Bool("traceLog", false, "enable debug logging and verbose libVLC logging to vlc.log")
	cfgPath := flag.String("config", "", "path to the config file (default: user config dir)")
	flag.Parse()

	if *trace {
		logging.SetAllLoggers(logging.LevelDebug)
	}
	radioapp.SetTraceLogEnabled(*trace)

	app := radioapp.NewApp(radioapp.Options{ConfigPath: *cfgPath})
	app.Run()
}
