package port

import (
	"context"

	"face-shape-bot/internal/domain/entity"
)

// DetectorSelector выбирает бэкенд детекции под режим вызывающего
type DetectorSelector interface {
	// Select возвращает готовый к работе бэкенд или entity.ErrBackendUnavailable
	Select(ctx context.Context, mode entity.DetectorMode) (KeypointDetector, error)

	// Status сообщает состояние точного бэкенда
	Status() entity.BackendStatus

	// Reset сбрасывает точный бэкенд и запускает инициализацию заново
	Reset() error
}
