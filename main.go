package main

import (
	"embed"
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"

	"boltdesk/internal/config"
	"boltdesk/internal/logging"
	"boltdesk/internal/utils"
)

//go:embed all:frontend/dist
var frontendAssets embed.FS

func main() {
	loaded, envErr := utils.LoadEnv()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	log := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if envErr != nil {
		log.WithError(envErr).Warn("failed to load .env")
	}
	for _, path := range loaded {
		log.WithField("path", path).Debug("loaded .env")
	}

	app, err := NewApp(cfg, log)
	if err != nil {
		log.WithError(err).Error("failed to start")
		os.Exit(1)
	}

	// Create application with options
	err = wails.Run(&options.App{
		Title:  "Boltdesk",
		Width:  1024,
		Height: 768,
		AssetServer: &assetserver.Options{
			Assets:  frontendAssets,
			Handler: app.api.Handler(),
		},
		Linux: &linux.Options{
			WindowIsTranslucent: false,
			WebviewGpuPolicy:    linux.WebviewGpuPolicyAlways,
			ProgramName:         "Boltdesk",
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		Logger:           logging.NewWailsLogger(log),
		LogLevel:         logging.WailsLevel(log.GetLevel()),
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Bind: []interface{}{
			app,
			app.services.Profile,
			app.services.Themes,
			app.services.APIKeys,
			app.services.Catalog,
		},
	})

	if err != nil {
		log.WithError(err).Error("wails exited with error")
	}
}
