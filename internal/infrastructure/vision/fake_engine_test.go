package vision

import (
	"context"
	"image"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"face-shape-bot/internal/domain/entity"
)

type fakeModel struct {
	err    error
	closed atomic.Bool
}

func (m *fakeModel) Keypoints(ctx context.Context, img image.Image) ([]entity.Keypoint, error) {
	if m.err != nil {
		return nil, m.err
	}
	return layoutKeypoints(entity.FaceBox{X: 10, Y: 10, Width: 100, Height: 120}), nil
}

func (m *fakeModel) Close() error {
	m.closed.Store(true)
	return nil
}

type fakeEngine struct {
	capability Capability
	probeErr   error
	loadErr    error
	loadDelay  time.Duration
	gate       chan struct{} // если задан, Probe ждёт его закрытия

	probes atomic.Int32
	loads  atomic.Int32

	mu     sync.Mutex
	models []*fakeModel
}

func (e *fakeEngine) Probe(ctx context.Context) (Capability, error) {
	e.probes.Add(1)
	if e.gate != nil {
		<-e.gate
	}
	if e.probeErr != nil {
		return Capability{}, e.probeErr
	}
	return e.capability, nil
}

func (e *fakeEngine) Load(ctx context.Context, backend ComputeBackend) (LandmarkModel, error) {
	e.loads.Add(1)
	if e.loadDelay > 0 {
		time.Sleep(e.loadDelay)
	}
	if e.loadErr != nil {
		return nil, e.loadErr
	}

	m := &fakeModel{}
	e.mu.Lock()
	e.models = append(e.models, m)
	e.mu.Unlock()
	return m, nil
}

func (e *fakeEngine) lastModel() *fakeModel {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.models) == 0 {
		return nil
	}
	return e.models[len(e.models)-1]
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestPrecise(engine Engine, cfg PreciseConfig) (*PreciseDetector, *sleepRecorder) {
	rec := &sleepRecorder{}
	p := NewPreciseDetector(engine, cfg, quietLog())
	p.sleep = rec.sleep
	return p, rec
}
