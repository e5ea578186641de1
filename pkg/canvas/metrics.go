package canvas

import (
	"expvar"
	"sync/atomic"
	"time"
)

// Metrics collects canvas counters. It is safe for concurrent use and can
// be published through expvar with RegisterExpvar.
type Metrics struct {
	canvasesOpened    atomic.Int64
	canvasesClosed    atomic.Int64
	primitivesAdded   atomic.Int64
	sceneClears       atomic.Int64
	repaintsRequested atomic.Int64
	rendersSkipped    atomic.Int64
	paints            atomic.Int64
	pixelWrites       atomic.Int64
	bridgeCalls       atomic.Int64
	bridgeErrors      atomic.Int64
	inputEvents       atomic.Int64
	droppedEvents     atomic.Int64
	handlerPanics     atomic.Int64

	bridgeLatencyNs    atomic.Int64
	bridgeLatencyCount atomic.Int64
	paintLatencyNs     atomic.Int64
	paintLatencyCount  atomic.Int64

	openCanvases atomic.Int32

	registered atomic.Bool
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RegisterExpvar publishes the metrics under the canvas_ prefix. Only the
// first call on a given Metrics has an effect. expvar names are global, so
// only one Metrics per process should be registered.
func (m *Metrics) RegisterExpvar() {
	if m.registered.Swap(true) {
		return
	}

	counters := map[string]*atomic.Int64{
		"canvas_opened_total":             &m.canvasesOpened,
		"canvas_closed_total":             &m.canvasesClosed,
		"canvas_primitives_added_total":   &m.primitivesAdded,
		"canvas_scene_clears_total":       &m.sceneClears,
		"canvas_repaints_requested_total": &m.repaintsRequested,
		"canvas_renders_skipped_total":    &m.rendersSkipped,
		"canvas_paints_total":             &m.paints,
		"canvas_pixel_writes_total":       &m.pixelWrites,
		"canvas_bridge_calls_total":       &m.bridgeCalls,
		"canvas_bridge_errors_total":      &m.bridgeErrors,
		"canvas_input_events_total":       &m.inputEvents,
		"canvas_dropped_events_total":     &m.droppedEvents,
		"canvas_handler_panics_total":     &m.handlerPanics,
	}
	for name, v := range counters {
		v := v
		expvar.Publish(name, expvar.Func(func() any { return v.Load() }))
	}

	expvar.Publish("canvas_open", expvar.Func(func() any { return m.openCanvases.Load() }))
	expvar.Publish("canvas_bridge_latency_avg_ms", expvar.Func(func() any {
		return avgMillis(m.bridgeLatencyNs.Load(), m.bridgeLatencyCount.Load())
	}))
	expvar.Publish("canvas_paint_latency_avg_ms", expvar.Func(func() any {
		return avgMillis(m.paintLatencyNs.Load(), m.paintLatencyCount.Load())
	}))
}

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot struct {
	CanvasesOpened    int64
	CanvasesClosed    int64
	PrimitivesAdded   int64
	SceneClears       int64
	RepaintsRequested int64
	RendersSkipped    int64
	Paints            int64
	PixelWrites       int64
	BridgeCalls       int64
	BridgeErrors      int64
	InputEvents       int64
	DroppedEvents     int64
	HandlerPanics     int64

	OpenCanvases int

	BridgeLatencyAvg time.Duration
	PaintLatencyAvg  time.Duration
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		CanvasesOpened:    m.canvasesOpened.Load(),
		CanvasesClosed:    m.canvasesClosed.Load(),
		PrimitivesAdded:   m.primitivesAdded.Load(),
		SceneClears:       m.sceneClears.Load(),
		RepaintsRequested: m.repaintsRequested.Load(),
		RendersSkipped:    m.rendersSkipped.Load(),
		Paints:            m.paints.Load(),
		PixelWrites:       m.pixelWrites.Load(),
		BridgeCalls:       m.bridgeCalls.Load(),
		BridgeErrors:      m.bridgeErrors.Load(),
		InputEvents:       m.inputEvents.Load(),
		DroppedEvents:     m.droppedEvents.Load(),
		HandlerPanics:     m.handlerPanics.Load(),

		OpenCanvases: int(m.openCanvases.Load()),

		BridgeLatencyAvg: safeDivide(m.bridgeLatencyNs.Load(), m.bridgeLatencyCount.Load()),
		PaintLatencyAvg:  safeDivide(m.paintLatencyNs.Load(), m.paintLatencyCount.Load()),
	}
}

func (m *Metrics) canvasOpened() {
	m.canvasesOpened.Add(1)
	m.openCanvases.Add(1)
}

func (m *Metrics) canvasClosed() {
	m.canvasesClosed.Add(1)
	m.openCanvases.Add(-1)
}

func (m *Metrics) recordBridgeCall(d time.Duration, err error) {
	m.bridgeCalls.Add(1)
	if err != nil {
		m.bridgeErrors.Add(1)
	}
	m.bridgeLatencyNs.Add(d.Nanoseconds())
	m.bridgeLatencyCount.Add(1)
}

func (m *Metrics) recordPaint(d time.Duration) {
	m.paints.Add(1)
	m.paintLatencyNs.Add(d.Nanoseconds())
	m.paintLatencyCount.Add(1)
}

// Reset clears all metrics. Useful for testing.
func (m *Metrics) Reset() {
	for _, v := range []*atomic.Int64{
		&m.canvasesOpened, &m.canvasesClosed, &m.primitivesAdded, &m.sceneClears,
		&m.repaintsRequested, &m.rendersSkipped, &m.paints, &m.pixelWrites,
		&m.bridgeCalls, &m.bridgeErrors, &m.inputEvents, &m.droppedEvents,
		&m.handlerPanics, &m.bridgeLatencyNs, &m.bridgeLatencyCount,
		&m.paintLatencyNs, &m.paintLatencyCount,
	} {
		v.Store(0)
	}
	m.openCanvases.Store(0)
}

// safeDivide performs safe division, returning 0 for divide by zero.
func safeDivide(total, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(total / count)
}

func avgMillis(totalNs, count int64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNs) / float64(count) / 1e6
}

var defaultMetrics = NewMetrics()

// DefaultMetrics returns the global default Metrics instance.
func DefaultMetrics() *Metrics {
	return defaultMetrics
}
