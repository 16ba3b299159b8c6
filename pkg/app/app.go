package app

import (
	"context"
	"io"
	"net/url"
	"os"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
	"tslad/pkg/app/config"
	"tslad/pkg/mqtt"
	"tslad/pkg/polarity"
	"tslad/pkg/slad"
)

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Url parameter
	// and makes it easier to get params out of e.g.
	// url: https://0.0.0.0:7844/?minTls=1.2&bodyLimit=50MB
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// metrics holds the prometheus collectors of the decoder
	metrics *metrics

	// decoder is the 3 state decoder resolved for the configured polarity
	decoder *slad.Decoder

	// lastRun is the result of the last decode run
	lastRun struct {
		sync.RWMutex
		data Run
	}
}

// New checks the Web server URL and initialize the main app structure
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	return &App{
		config:    config,
		urlParsed: u,

		web:     fiber.New(fiber.Config{DisableStartupMessage: true}),
		mqtt:    mqtt.New(),
		metrics: newMetrics(),
	}, nil
}

// Run starts the application and decodes the configured input.
// Run returns after the input is decoded, the web server keeps running until Close.
func (app *App) Run(ctx context.Context) error {
	if err := app.init(); err != nil {
		return err
	}

	app.mqtt.Start()
	if app.urlParsed.Host != "" {
		go app.runWebServer()
	}

	return app.decode(ctx)
}

// init initializes the application.
func (app *App) init() (err error) {
	var symbols polarity.Symbols

	if symbols, err = polarity.Resolve(app.config.Polarity); err != nil {
		debug.ErrorLog.Printf("can't resolve polarity: %v", err)
		return err
	}

	if app.decoder, err = slad.New(symbols, slad.WithFlush(app.config.FlushTrailing)); err != nil {
		debug.ErrorLog.Printf("can't create decoder: %v", err)
		return err
	}

	if err = app.mqtt.Connect(app.config.MQTT.Connection); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}

	// initDefaultRoutes should be always called last because it may access things like app.decoder
	// which must be initialized before
	app.initDefaultRoutes()

	return nil
}

// Close releases the resources of the application.
func (app *App) Close() error {
	if app.mqtt != nil {
		_ = app.mqtt.Close()
	}

	if app.web != nil {
		_ = app.web.Shutdown()
	}

	if app.config != nil && app.config.Output.File != nil && !isStdStream(app.config.Output.File) {
		_ = app.config.Output.File.Close()
	}
	return nil
}

// isStdStream reports whether w is the standard output or error of the process.
func isStdStream(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (f == os.Stdout || f == os.Stderr)
}
