package main

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"tslad/pkg/app"
	"tslad/pkg/app/config"
	"tslad/pkg/capture"
	"tslad/pkg/polarity"

	"github.com/urfave/cli/v2"
	"github.com/womat/debug"
)

func main() {
	exitCode := 1
	defer func() {
		os.Exit(exitCode)
	}()

	// cfg holds the application configuration
	cfg := config.NewConfig()

	cliApp := &cli.App{
		Name:    app.MODULE,
		Usage:   "3 State Logic Analyzer Decoder for signals carried on two wires",
		Version: app.VERSION,
		Description: "Decode a captured two-wire signal (SDO1, SDO2) into L, M, H and X intervals." +
			"\n Annotations are written to stdout and optionally published to mqtt" +
			"\n and served by the web server (/data, /metrics).",
		UsageText: "tslad [--config <file>] [--log standard|debug|trace] [--polarity active-low|active-high] [--input <file>]" +
			"\n\nEXAMPLE:" +
			"\n\tdecode the csv capture trace.csv of an active low line" +
			"\n\t\ttslad --polarity active-low --input trace.csv",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Destination: &cfg.Flag.ConfigFile, Usage: "load configuration from `FILE`"},
			&cli.StringFlag{Name: "log", Aliases: []string{"l"}, Destination: &cfg.Flag.Debug, Usage: "`LEVEL` defines the log level (standard|debug|trace)"},
			&cli.StringFlag{Name: "polarity", Aliases: []string{"p"}, Destination: &cfg.Flag.Polarity, Usage: "signal `POLARITY` (" + strings.Join(polarity.Names(), "|") + ")"},
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Destination: &cfg.Flag.Input, Usage: "capture `FILE` to decode, - is stdin"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Destination: &cfg.Flag.Format, Usage: "capture `FORMAT` (" + strings.Join(capture.Formats(), "|") + ")"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Destination: &cfg.Flag.Output, Usage: "annotation `FORMAT` (text|json)"},
			&cli.BoolFlag{Name: "serve", Aliases: []string{"s"}, Destination: &cfg.Flag.Serve, Usage: "keep the web server running after decoding"},
		},
		Action: func(cliCtx *cli.Context) error {
			if err := cfg.LoadConfig(); err != nil {
				return err
			}

			debug.SetDebug(cfg.Debug.File, cfg.Debug.Flag)
			defer func() {
				debug.InfoLog.Printf("closing debug file %s", cfg.Debug.FileString)
				_ = cfg.Debug.File.Close()
			}()

			// capture exit signals to ensure resources are released on exit.
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer func() {
				debug.InfoLog.Printf("closing app %s", app.Version())
				_ = a.Close()
			}()

			debug.InfoLog.Printf("starting app %s", app.Version())
			if err = a.Run(ctx); err != nil {
				return err
			}

			if cfg.Webserver.Serve {
				// wait for an os.Interrupt signal (CTRL C)
				<-ctx.Done()
				debug.InfoLog.Print("Got signal. Aborting...")
			}

			return nil
		},
	}

	// we expect to have more command line flags in the future - sort them
	sort.Sort(cli.FlagsByName(cliApp.Flags))
	sort.Sort(cli.CommandsByName(cliApp.Commands))

	err := cliApp.Run(os.Args)
	if err != nil {
		debug.FatalLog.Print(err)
		exitCode = 1
		return
	}

	exitCode = 0
}
