package app

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/womat/debug"
	"tslad/pkg/annotation"
)

// metrics holds the prometheus collectors of the decoder.
type metrics struct {
	registry    *prometheus.Registry
	annotations *prometheus.CounterVec // emitted annotations by symbol
	samples     prometheus.Counter     // samples pulled from the inputs
	runs        *prometheus.CounterVec // decode runs by result
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	m := &metrics{
		registry: reg,
		annotations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tslad_annotations_total",
			Help: "Number of emitted annotations by symbol",
		}, []string{"symbol"}),
		samples: f.NewCounter(prometheus.CounterOpts{
			Name: "tslad_samples_total",
			Help: "Number of decoded samples",
		}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tslad_runs_total",
			Help: "Number of decode runs by result",
		}, []string{"result"}),
	}

	// export all symbols, even if they are never seen
	for _, s := range annotation.Symbols {
		m.annotations.WithLabelValues(s.String())
	}
	return m
}

// sink counts the annotations by symbol.
func (m *metrics) sink() annotation.Sink {
	return annotation.SinkFunc(func(a annotation.Annotation) error {
		m.annotations.WithLabelValues(a.Symbol.String()).Inc()
		return nil
	})
}

// finishRun records the result of a decode run.
func (m *metrics) finishRun(samples uint64, err error) {
	m.samples.Add(float64(samples))

	if err != nil {
		m.runs.WithLabelValues("error").Inc()
		return
	}
	m.runs.WithLabelValues("ok").Inc()
}

// HandleMetrics is the prometheus web handler.
func (app *App) HandleMetrics() fiber.Handler {
	h := adaptor.HTTPHandler(promhttp.HandlerFor(app.metrics.registry, promhttp.HandlerOpts{}))

	return func(ctx *fiber.Ctx) error {
		debug.TraceLog.Print("web request metrics")
		return h(ctx)
	}
}
