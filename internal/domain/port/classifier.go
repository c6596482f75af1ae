package port

import "face-shape-bot/internal/domain/entity"

// ShapeClassifier сопоставляет измерения с эталонами форм
type ShapeClassifier interface {
	Classify(m entity.MeasurementSet) entity.ClassificationResult
}
