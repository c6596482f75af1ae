package vision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"face-shape-bot/internal/domain/entity"
	"face-shape-bot/internal/domain/port"
)

// RouterConfig параметры выбора бэкенда
type RouterConfig struct {
	Mode     entity.DetectorMode // режим по умолчанию, если вызывающий не указал свой
	Patience time.Duration       // сколько ждать точный бэкенд в режиме auto
}

// Router выбирает между точным и эвристическим бэкендом.
// В пределах одного анализа используется ровно один из них.
type Router struct {
	mode      entity.DetectorMode
	patience  time.Duration
	precise   *PreciseDetector
	heuristic *HeuristicDetector
	log       *logrus.Entry
}

// NewRouter создаёт маршрутизатор; precise может быть nil, тогда точный бэкенд считается отключённым
func NewRouter(cfg RouterConfig, precise *PreciseDetector, heuristic *HeuristicDetector, log *logrus.Entry) *Router {
	if cfg.Mode == "" {
		cfg.Mode = entity.ModeAuto
	}
	if cfg.Patience < 0 {
		cfg.Patience = 0
	}
	if heuristic == nil {
		heuristic = NewHeuristicDetector(DefaultHeuristicConfig())
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Router{
		mode:      cfg.Mode,
		patience:  cfg.Patience,
		precise:   precise,
		heuristic: heuristic,
		log:       log.WithField("component", "detector-router"),
	}
}

// Warmup запускает инициализацию точного бэкенда в фоне
func (r *Router) Warmup() {
	if r.precise != nil && r.mode != entity.ModeHeuristic {
		r.precise.Start()
	}
}

// Select реализует port.DetectorSelector.
// auto: точный бэкенд, если он готов в пределах Patience, иначе эвристика без ошибки.
// precise: ждёт инициализацию до отмены ctx, при неудаче entity.ErrBackendUnavailable.
// heuristic: всегда эвристика.
func (r *Router) Select(ctx context.Context, mode entity.DetectorMode) (port.KeypointDetector, error) {
	if mode == "" {
		mode = r.mode
	}

	switch mode {
	case entity.ModeHeuristic:
		return r.heuristic, nil

	case entity.ModePrecise:
		if r.precise == nil {
			return nil, fmt.Errorf("%w: precise backend is disabled", entity.ErrBackendUnavailable)
		}
		if err := r.precise.Initialize(ctx); err != nil {
			if errors.Is(err, entity.ErrBackendUnavailable) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", entity.ErrBackendUnavailable, err)
		}
		return r.precise, nil

	case entity.ModeAuto:
		if r.precise == nil {
			return r.heuristic, nil
		}
		if r.precise.State() == StateReady {
			return r.precise, nil
		}

		waitCtx, cancel := context.WithTimeout(ctx, r.patience)
		defer cancel()
		if err := r.precise.Initialize(waitCtx); err != nil {
			r.log.WithError(err).Debug("falling back to heuristic backend")
			return r.heuristic, nil
		}
		return r.precise, nil
	}

	return nil, fmt.Errorf("unknown detector mode %q", mode)
}

// Status реализует port.DetectorSelector
func (r *Router) Status() entity.BackendStatus {
	status := entity.BackendStatus{Mode: r.mode, State: "disabled"}
	if r.precise == nil {
		return status
	}
	status.State = r.precise.State().String()
	status.Compute = string(r.precise.Backend())
	if err := r.precise.LastError(); err != nil {
		status.LastError = err.Error()
	}
	return status
}

// Reset реализует port.DetectorSelector
func (r *Router) Reset() error {
	if r.precise == nil {
		return fmt.Errorf("%w: precise backend is disabled", entity.ErrBackendUnavailable)
	}
	err := r.precise.Reset()
	if errors.Is(err, errClosed) || errors.Is(err, errInitializing) {
		return err
	}
	r.Warmup()
	return err
}

// Close освобождает ресурсы точного бэкенда
func (r *Router) Close() error {
	if r.precise == nil {
		return nil
	}
	return r.precise.Close()
}

var _ port.DetectorSelector = (*Router)(nil)
