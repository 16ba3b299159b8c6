package app

import (
	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
	"tslad/pkg/annotation"
)

// runWebServer starts the applications web server and listens for web requests.
// It's designed to run in a separate go function to not block the main go function.
// e.g.: go runWebServer()
// See app.Run()
func (app *App) runWebServer() {
	err := app.web.Listen(app.urlParsed.Host)
	debug.ErrorLog.Print(err)
}

// HandleData returns the result of the last decode run.
func (app *App) HandleData() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request data")

		run := app.LastRun()
		if run.ID == "" {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no decode run yet"})
		}

		if s := ctx.Query("symbol"); s != "" {
			sym, err := annotation.ParseSymbol(s)
			if err != nil {
				return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			run.Annotations = filterSymbol(run.Annotations, sym)
		}

		return ctx.JSON(run)
	}
}

// filterSymbol returns the annotations of symbol s.
func filterSymbol(list []annotation.Annotation, s annotation.Symbol) []annotation.Annotation {
	out := make([]annotation.Annotation, 0, len(list))
	for _, a := range list {
		if a.Symbol == s {
			out = append(out, a)
		}
	}
	return out
}
