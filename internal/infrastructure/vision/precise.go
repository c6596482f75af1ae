package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"face-shape-bot/internal/domain/entity"
	"face-shape-bot/internal/domain/port"
)

// State состояние жизненного цикла точного бэкенда
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Этапы одной попытки инициализации
const (
	StageProbe = "probe"
	StageLoad  = "load"
)

// PreciseConfig параметры инициализации точного бэкенда
type PreciseConfig struct {
	InitTimeout time.Duration // общий лимит на все попытки
	LoadTimeout time.Duration // лимит на загрузку модели в одной попытке
	RetryBase   time.Duration // пауза после n-й неудачи равна RetryBase*n
	MaxAttempts int           // число попыток всего, включая первую; пауз между ними MaxAttempts-1
}

// DefaultPreciseConfig возвращает параметры по умолчанию
func DefaultPreciseConfig() PreciseConfig {
	return PreciseConfig{
		InitTimeout: 30 * time.Second,
		LoadTimeout: 10 * time.Second,
		RetryBase:   500 * time.Millisecond,
		MaxAttempts: 3,
	}
}

// AttemptError неудача одной попытки инициализации
type AttemptError struct {
	Attempt int
	Stage   string
	Err     error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("attempt %d: %s: %v", e.Attempt, e.Stage, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

var errClosed = errors.New("precise detector is closed")

// errInitializing сброс запрещён, пока идёт попытка инициализации
var errInitializing = fmt.Errorf("%w: initialization in progress", entity.ErrBackendUnavailable)

// PreciseDetector нейросетевой поставщик точек.
// Один экземпляр на процесс: инициализация идёт один раз, параллельные вызовы ждут ту же попытку.
// После исчерпания попыток состояние failed сохраняется до явного Reset.
type PreciseDetector struct {
	engine Engine
	cfg    PreciseConfig
	log    *logrus.Entry

	// sleep подменяется в тестах
	sleep func(ctx context.Context, d time.Duration) error

	mu         sync.Mutex
	state      State
	done       chan struct{}
	generation uint64
	closed     bool
	backend    ComputeBackend
	lastErr    error

	// держится на чтение во время инференса, на запись при закрытии модели
	modelMu sync.RWMutex
	model   LandmarkModel
}

// NewPreciseDetector создаёт детектор в состоянии uninitialized; инициализация начинается со Start
func NewPreciseDetector(engine Engine, cfg PreciseConfig, log *logrus.Entry) *PreciseDetector {
	def := DefaultPreciseConfig()
	if cfg.InitTimeout <= 0 {
		cfg.InitTimeout = def.InitTimeout
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = def.LoadTimeout
	}
	if cfg.RetryBase < 0 {
		cfg.RetryBase = def.RetryBase
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &PreciseDetector{
		engine: engine,
		cfg:    cfg,
		log:    log.WithField("component", "precise-detector"),
		sleep:  sleepContext,
	}
}

// Kind реализует port.KeypointDetector
func (p *PreciseDetector) Kind() entity.BackendKind {
	return entity.BackendPrecise
}

// State текущее состояние
func (p *PreciseDetector) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Backend выбранный вычислительный бэкенд, пусто до готовности
func (p *PreciseDetector) Backend() ComputeBackend {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.backend
}

// LastError причина последней неудачной инициализации
func (p *PreciseDetector) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Start запускает инициализацию в фоне, если она ещё не начиналась.
// Возвращаемый канал закрывается, когда инициализация завершилась успехом или ошибкой.
func (p *PreciseDetector) Start() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateInitializing:
		return p.done
	case StateReady, StateFailed:
		return closedChan()
	}
	if p.closed {
		return closedChan()
	}

	p.state = StateInitializing
	p.done = make(chan struct{})
	p.lastErr = nil
	go p.run(p.generation, p.done)

	p.log.Debug("initialization started")
	return p.done
}

// Wait ждёт завершения уже запущенной инициализации.
// Возвращает nil, если бэкенд готов, ошибку инициализации или ошибку ctx.
func (p *PreciseDetector) Wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	state := p.state
	p.mu.Unlock()

	if state == StateUninitialized {
		return fmt.Errorf("%w: not initialized", entity.ErrBackendUnavailable)
	}
	if done == nil {
		return p.result()
	}

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return p.result()
}

// Initialize запускает инициализацию при необходимости и ждёт её завершения
func (p *PreciseDetector) Initialize(ctx context.Context) error {
	p.Start()
	return p.Wait(ctx)
}

// Reset освобождает модель и возвращает детектор в uninitialized.
// Пока идёт инициализация, сброс отклоняется с entity.ErrBackendUnavailable.
func (p *PreciseDetector) Reset() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errClosed
	}
	if p.state == StateInitializing {
		p.mu.Unlock()
		return errInitializing
	}
	p.generation++
	p.state = StateUninitialized
	p.done = nil
	p.backend = ""
	p.lastErr = nil
	p.mu.Unlock()

	p.log.Info("reset requested")
	return p.releaseModel()
}

// Close освобождает модель; после Close детектор недоступен навсегда
func (p *PreciseDetector) Close() error {
	p.mu.Lock()
	p.closed = true
	p.generation++
	p.state = StateFailed
	p.backend = ""
	p.lastErr = errClosed
	p.mu.Unlock()

	return p.releaseModel()
}

// DetectKeypoints реализует port.KeypointDetector
func (p *PreciseDetector) DetectKeypoints(ctx context.Context, img image.Image) ([]entity.Keypoint, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, entity.ErrInvalidImage
	}
	if state := p.State(); state != StateReady {
		return nil, fmt.Errorf("%w: precise backend is %s", entity.ErrBackendUnavailable, state)
	}

	p.modelMu.RLock()
	defer p.modelMu.RUnlock()
	if p.model == nil {
		return nil, fmt.Errorf("%w: model released", entity.ErrBackendUnavailable)
	}

	kps, err := p.model.Keypoints(ctx, img)
	if err != nil {
		return nil, err
	}
	if len(kps) != entity.KeypointCount {
		return nil, fmt.Errorf("model returned %d keypoints, want %d", len(kps), entity.KeypointCount)
	}
	return kps, nil
}

func (p *PreciseDetector) result() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateReady:
		return nil
	case StateFailed:
		return p.lastErr
	default:
		return fmt.Errorf("%w: precise backend is %s", entity.ErrBackendUnavailable, p.state)
	}
}

func (p *PreciseDetector) run(generation uint64, done chan struct{}) {
	defer close(done)

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.InitTimeout)
	defer cancel()

	model, backend, err := p.initialize(ctx)

	p.mu.Lock()
	if generation != p.generation {
		p.mu.Unlock()
		if model != nil {
			_ = model.Close()
		}
		p.log.Debug("stale initialization discarded")
		return
	}
	if err != nil {
		p.state = StateFailed
		p.lastErr = err
		p.mu.Unlock()
		p.log.WithError(err).Warn("precise backend failed, heuristic fallback stays in use")
		return
	}

	p.modelMu.Lock()
	p.model = model
	p.modelMu.Unlock()
	p.backend = backend
	p.state = StateReady
	p.mu.Unlock()

	p.log.WithField("backend", backend).Info("precise backend ready")
}

// initialize делает до MaxAttempts попыток подряд. После неудачной попытки i (с нуля)
// ждёт RetryBase*(i+1), после последней не ждёт: при трёх попытках паузы base и 2*base.
func (p *PreciseDetector) initialize(ctx context.Context) (LandmarkModel, ComputeBackend, error) {
	var lastErr error
	for attempt := 0; attempt < p.cfg.MaxAttempts; attempt++ {
		model, backend, err := p.attempt(ctx, attempt+1)
		if err == nil {
			return model, backend, nil
		}
		lastErr = err
		p.log.WithError(err).WithField("attempt", attempt+1).Warn("initialization attempt failed")

		if attempt+1 >= p.cfg.MaxAttempts {
			break
		}
		delay := p.cfg.RetryBase * time.Duration(attempt+1)
		if err := p.sleep(ctx, delay); err != nil {
			lastErr = fmt.Errorf("%w (while backing off: %v)", lastErr, err)
			break
		}
	}
	return nil, "", fmt.Errorf("%w: %w", entity.ErrBackendUnavailable, lastErr)
}

func (p *PreciseDetector) attempt(ctx context.Context, n int) (LandmarkModel, ComputeBackend, error) {
	capability, err := p.engine.Probe(ctx)
	if err != nil {
		return nil, "", &AttemptError{Attempt: n, Stage: StageProbe, Err: err}
	}
	backend := SelectBackend(capability)
	p.log.WithFields(logrus.Fields{
		"attempt":  n,
		"backend":  backend,
		"provider": capability.Provider,
	}).Debug("compute backend selected")

	model, err := p.load(ctx, backend)
	if err != nil {
		return nil, "", &AttemptError{Attempt: n, Stage: StageLoad, Err: err}
	}
	return model, backend, nil
}

type loadResult struct {
	model LandmarkModel
	err   error
}

// load гонит загрузку модели против LoadTimeout; опоздавшая модель закрывается
func (p *PreciseDetector) load(ctx context.Context, backend ComputeBackend) (LandmarkModel, error) {
	loadCtx, cancel := context.WithTimeout(ctx, p.cfg.LoadTimeout)
	defer cancel()

	ch := make(chan loadResult, 1)
	go func() {
		model, err := p.engine.Load(loadCtx, backend)
		ch <- loadResult{model: model, err: err}
	}()

	select {
	case r := <-ch:
		return r.model, r.err
	case <-loadCtx.Done():
		go func() {
			if r := <-ch; r.model != nil {
				_ = r.model.Close()
			}
		}()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, entity.ErrModelLoadTimeout
	}
}

func (p *PreciseDetector) releaseModel() error {
	p.modelMu.Lock()
	model := p.model
	p.model = nil
	p.modelMu.Unlock()

	if model == nil {
		return nil
	}
	return model.Close()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

var _ port.KeypointDetector = (*PreciseDetector)(nil)
