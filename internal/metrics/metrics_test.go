package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/archviz/internal/quality"
)

func TestObserveQuality(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveQuality(quality.State{
		CurrentFPS: 45,
		TargetFPS:  60,
		Scale:      1.1,
		Effects:    quality.Effects{Bloom: false, Antialias: false, AmbientOcclusion: false},
	}, true)
	r.ObserveQuality(quality.State{CurrentFPS: 70, TargetFPS: 60, Scale: 1.05,
		Effects: quality.Effects{Bloom: true}}, false)

	assert.Equal(t, 70.0, testutil.ToFloat64(r.FPS))
	assert.Equal(t, 1.05, testutil.ToFloat64(r.Scale))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Effects.WithLabelValues("bloom")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.Effects.WithLabelValues("ambientOcclusion")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Adjustments.WithLabelValues("degrade")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Adjustments.WithLabelValues("recover")))
}

func TestSceneGauges(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.SetAssets(2)
	r.LoadFailed()
	r.SetPlanes(7, 6)
	r.ModeChanged("walk")
	r.ObserveFrame(16)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.AssetsLoaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.LoadFailures))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.Planes))
	assert.Equal(t, 6.0, testutil.ToFloat64(r.BoundSlots))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ModeChanges.WithLabelValues("walk")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.FrameDuration))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveFrame(16)
		r.ObserveQuality(quality.State{}, true)
		r.SetAssets(1)
		r.LoadFailed()
		r.SetPlanes(1, 1)
		r.ModeChanged("fly")
	})
}

func TestServe(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)
	r.SetAssets(3)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, addr, reg) }()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	assert.True(t, strings.Contains(body, "archviz_assets_loaded 3"), body)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
