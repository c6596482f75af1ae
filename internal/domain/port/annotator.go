package port

import (
	"image"

	"face-shape-bot/internal/domain/entity"
)

// Annotator рисует результат анализа поверх фотографии
type Annotator interface {
	// Annotate возвращает JPEG с отмеченными точками и областью лица
	Annotate(img image.Image, result *entity.AnalysisResult) ([]byte, error)
}
