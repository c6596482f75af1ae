//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"fmt"

	"face-shape-bot/internal/domain/entity"
)

// ONNXEngine заглушка движка для сборки без OpenCV
type ONNXEngine struct {
	cfg EngineConfig
}

// NewONNXEngine создаёт движок-заглушку (без OpenCV).
func NewONNXEngine(cfg EngineConfig) *ONNXEngine {
	return &ONNXEngine{cfg: cfg}
}

// Probe возвращает ошибку, если сборка без тега gocv.
func (e *ONNXEngine) Probe(ctx context.Context) (Capability, error) {
	_ = ctx
	return Capability{}, fmt.Errorf("%w: gocv build tag is not enabled", entity.ErrBackendUnavailable)
}

// Load возвращает ошибку, если сборка без тега gocv.
func (e *ONNXEngine) Load(ctx context.Context, backend ComputeBackend) (LandmarkModel, error) {
	_ = ctx
	_ = backend
	return nil, fmt.Errorf("%w: gocv build tag is not enabled", entity.ErrBackendUnavailable)
}

var _ Engine = (*ONNXEngine)(nil)
