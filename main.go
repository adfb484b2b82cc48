package main

import (
	"embed"
	"log"

	"freezeframe/internal/app"
	"freezeframe/internal/config"
	apperrors "freezeframe/internal/infrastructure/errors"
	"freezeframe/internal/infrastructure/logging"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfg, err := config.Load(config.NewViper(""))
	if err != nil {
		log.Fatal(err)
	}

	appLogger := logging.New(logging.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	apperrors.SetDefaultRetryLogger(appLogger)

	// Create an instance of the app structure
	application := app.NewApp(cfg, appLogger)

	err = wails.Run(&options.App{
		Title:             "freezeframe",
		Width:             360,
		Height:            220,
		MinWidth:          280,
		MinHeight:         180,
		DisableResize:     false,
		Frameless:         true,
		StartHidden:       false,
		HideWindowOnClose: false,
		AlwaysOnTop:       true,
		BackgroundColour:  &options.RGBA{R: 0, G: 0, B: 0, A: 0},
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Logger:           logging.NewWailsLoggerAdapter(logging.WithComponent(appLogger, "wails")),
		LogLevel:         logger.INFO,
		OnStartup:        application.Startup,
		OnDomReady:       application.DomReady,
		OnBeforeClose:    application.BeforeClose,
		OnShutdown:       application.Shutdown,
		WindowStartState: options.Normal,
		Bind: []interface{}{
			application,
		},
		Windows: &windows.Options{
			WebviewIsTransparent: true,
			WindowIsTranslucent:  true,
			DisableWindowIcon:    true,
			ZoomFactor:           1.0,
			BackdropType:         windows.Mica,
		},
	})

	if err != nil {
		log.Fatal(err)
	}
}
