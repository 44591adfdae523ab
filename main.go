package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/soocke/vision-edit-go/app"
	"github.com/soocke/vision-edit-go/config"
)

func main() {
	cfgPath := flag.String("config", "vision-edit.json", "path to the JSON config file")
	imagePath := flag.String("image", "", "image to open on start")
	debugFlag := flag.Bool("debug", false, "log debug output and runtime metrics")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if *debugFlag {
		cfg.Debug = true
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(os.Stdout, level)
	if err != nil {
		logger.Warn("config load failed, using defaults", "path", *cfgPath, "error", err)
	}

	application := app.NewApp("Vision Edit", cfg, *cfgPath, logger)
	application.Start(*imagePath)
}
