package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/generalpy101/fix-life/applog"
	"github.com/generalpy101/fix-life/config"
	"github.com/generalpy101/fix-life/launch"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (defaults to the user config dir)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot load config:", err)
		os.Exit(1)
	}

	applog.Setup(cfg.Log.Level, cfg.Log.File)
	launch.Run(cfg)
}
