package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/womat/debug"
	"tslad/pkg/annotation"
	"tslad/pkg/capture"
)

// Run is the result of a decode run.
type Run struct {
	ID          string                  `json:"id"`
	Polarity    string                  `json:"polarity"`
	Input       string                  `json:"input"`
	Started     time.Time               `json:"started"`
	Finished    time.Time               `json:"finished"`
	Samples     uint64                  `json:"samples"`
	Counts      map[string]uint64       `json:"counts"`
	Annotations []annotation.Annotation `json:"annotations"`
	Error       string                  `json:"error,omitempty"`
}

// decode reads the configured input, decodes it and sends the annotations to the output,
// the mqtt broker and the metrics. The result is kept for the data web service.
func (app *App) decode(ctx context.Context) error {
	in, err := app.openInput()
	if err != nil {
		debug.ErrorLog.Printf("can't open input %q: %v", app.config.Input.File, err)
		return err
	}
	defer func() { _ = in.Close() }()

	return app.decodeFrom(ctx, in)
}

// decodeFrom decodes the capture r.
func (app *App) decodeFrom(ctx context.Context, r io.Reader) error {
	src, err := capture.NewReader(r, app.config.Input.Format)
	if err != nil {
		return err
	}

	w, err := annotation.NewWriter(app.config.Output.File, app.config.Output.Format)
	if err != nil {
		return err
	}

	run := Run{
		ID:       uuid.NewString(),
		Polarity: app.config.Polarity,
		Input:    app.config.Input.File,
		Started:  time.Now(),
	}

	collector := &annotation.Collector{}
	sinks := []annotation.Sink{w, collector, app.metrics.sink()}
	if app.mqtt.Enabled() {
		sinks = append(sinks, app.mqtt.Sink(app.config.MQTT.Topic, run.ID))
	}

	debug.InfoLog.Printf("decoding run %s (%s, %s)", run.ID, run.Polarity, run.Input)
	err = app.decoder.Run(ctx, src, annotation.Tee(sinks...))
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = fmt.Errorf("flush output: %w", ferr)
	}

	stats := app.decoder.Stats()
	app.metrics.finishRun(stats.Samples, err)

	run.Finished = time.Now()
	run.Samples = stats.Samples
	run.Counts = map[string]uint64{}
	for _, s := range annotation.Symbols {
		run.Counts[s.String()] = stats.Count(s)
	}
	run.Annotations = collector.Annotations()
	if err != nil {
		run.Error = err.Error()
		debug.ErrorLog.Printf("decoding run %s failed: %v", run.ID, err)
	} else {
		debug.InfoLog.Printf("decoding run %s finished: %d samples, %d annotations", run.ID, stats.Samples, stats.Total())
	}

	app.lastRun.Lock()
	app.lastRun.data = run
	app.lastRun.Unlock()

	return err
}

// LastRun returns the result of the last decode run.
func (app *App) LastRun() Run {
	app.lastRun.RLock()
	defer app.lastRun.RUnlock()
	return app.lastRun.data
}

// openInput opens the capture file, "-" and "stdin" is the standard input.
func (app *App) openInput() (io.ReadCloser, error) {
	switch app.config.Input.File {
	case "", "-", "stdin":
		return io.NopCloser(os.Stdin), nil
	default:
		return os.Open(app.config.Input.File)
	}
}
