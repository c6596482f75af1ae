package port

import (
	"context"
	"image"

	"face-shape-bot/internal/domain/entity"
)

// KeypointDetector интерфейс бэкенда детекции опорных точек лица
type KeypointDetector interface {
	// DetectKeypoints возвращает точки лица в порядке entity.KeypointRoles
	DetectKeypoints(ctx context.Context, img image.Image) ([]entity.Keypoint, error)

	// Kind сообщает, какой это бэкенд
	Kind() entity.BackendKind
}
