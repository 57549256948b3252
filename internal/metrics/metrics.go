// Package metrics exports viewport state to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Faultbox/archviz/internal/logger"
	"github.com/Faultbox/archviz/internal/quality"
)

const namespace = "archviz"

// Recorder holds the viewport collectors. A nil *Recorder records nothing.
type Recorder struct {
	FrameDuration prometheus.Histogram
	FPS           prometheus.Gauge
	TargetFPS     prometheus.Gauge
	Scale         prometheus.Gauge
	Effects       *prometheus.GaugeVec
	Adjustments   *prometheus.CounterVec

	AssetsLoaded prometheus.Gauge
	LoadFailures prometheus.Counter
	Planes       prometheus.Gauge
	BoundSlots   prometheus.Gauge
	ModeChanges  *prometheus.CounterVec
}

// NewRecorder registers the collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		FrameDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Render duration of each frame in seconds",
			Buckets:   []float64{0.004, 0.008, 0.0167, 0.025, 0.0333, 0.05, 0.1, 0.25},
		}),
		FPS: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fps",
			Help:      "Frame rate measured over the last aggregation window",
		}),
		TargetFPS: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "target_fps",
			Help:      "Frame rate the adaptive quality controller aims for",
		}),
		Scale: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resolution_scale",
			Help:      "Hardware resolution scaling factor (1 is full resolution)",
		}),
		Effects: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "effect_enabled",
			Help:      "Whether a secondary post-processing effect is enabled",
		}, []string{"effect"}),
		Adjustments: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quality_adjustments_total",
			Help:      "Quality adjustment windows by direction",
		}, []string{"direction"}),
		AssetsLoaded: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "assets_loaded",
			Help:      "Number of assets currently loaded",
		}),
		LoadFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_load_failures_total",
			Help:      "Total number of rejected asset loads",
		}),
		Planes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "section_planes",
			Help:      "Number of section planes, bound or not",
		}),
		BoundSlots: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clip_slots_bound",
			Help:      "Number of engine clip slots in use",
		}),
		ModeChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigation_mode_changes_total",
			Help:      "Successful navigation mode changes by destination mode",
		}, []string{"mode"}),
	}
}

// ObserveFrame records one frame's render duration.
func (r *Recorder) ObserveFrame(durationMs float64) {
	if r == nil {
		return
	}
	r.FrameDuration.Observe(durationMs / 1000)
}

// ObserveQuality records the state after an adjustment window.
func (r *Recorder) ObserveQuality(st quality.State, degraded bool) {
	if r == nil {
		return
	}
	r.FPS.Set(st.CurrentFPS)
	r.TargetFPS.Set(st.TargetFPS)
	r.Scale.Set(st.Scale)
	r.Effects.WithLabelValues("bloom").Set(boolGauge(st.Effects.Bloom))
	r.Effects.WithLabelValues("antialias").Set(boolGauge(st.Effects.Antialias))
	r.Effects.WithLabelValues("ambientOcclusion").Set(boolGauge(st.Effects.AmbientOcclusion))

	direction := "recover"
	if degraded {
		direction = "degrade"
	}
	r.Adjustments.WithLabelValues(direction).Inc()
}

// SetAssets records the number of loaded assets.
func (r *Recorder) SetAssets(n int) {
	if r == nil {
		return
	}
	r.AssetsLoaded.Set(float64(n))
}

// LoadFailed counts a rejected load.
func (r *Recorder) LoadFailed() {
	if r == nil {
		return
	}
	r.LoadFailures.Inc()
}

// SetPlanes records section plane counts.
func (r *Recorder) SetPlanes(total, bound int) {
	if r == nil {
		return
	}
	r.Planes.Set(float64(total))
	r.BoundSlots.Set(float64(bound))
}

// ModeChanged counts a navigation mode change.
func (r *Recorder) ModeChanged(mode string) {
	if r == nil {
		return
	}
	r.ModeChanges.WithLabelValues(mode).Inc()
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Serve exposes g on addr at /metrics until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", zap.Error(err))
		}
	}()

	logger.Info("serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
