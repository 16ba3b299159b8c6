package app

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// HandleHealth returns data about the health of the decoder service.
// output example:
//
//	{"NumGoroutines":11,"HeapAllocatedMB":3,"Polarity":"active-low","LastRun":"5b0f...","LastRunError":"",
//	 "MQTT":false,"Version":"1.6.10+20261001","ProgLang":"go1.21.5"}
func (app *App) HandleHealth() fiber.Handler {
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}

	host, _ := os.Hostname()

	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request health")

		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		run := app.LastRun()

		healthData := struct {
			NumGoroutines   int
			HeapAllocatedMB uint64
			SysMemoryMB     uint64
			Polarity        string
			LastRun         string
			LastRunError    string
			MQTT            bool
			Version         string
			ProgLang        string
			HostName        string
			Time            string
		}{
			NumGoroutines:   runtime.NumGoroutine(),
			HeapAllocatedMB: bToMb(m.Alloc),
			SysMemoryMB:     bToMb(m.Sys),
			Polarity:        app.config.Polarity,
			LastRun:         run.ID,
			LastRunError:    run.Error,
			MQTT:            app.mqtt.Enabled(),
			ProgLang:        runtime.Version(),
			Version:         VERSION,
			HostName:        host,
			Time:            time.Now().Format(time.RFC3339),
		}
		ctx.Status(http.StatusOK)
		return ctx.JSON(healthData)
	}
}
