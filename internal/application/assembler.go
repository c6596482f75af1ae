package app

import (
	"fmt"
	"time"

	"face-shape-bot/internal/domain/entity"
	"face-shape-bot/internal/domain/port"
)

// Assembly всё, из чего собирается итог анализа
type Assembly struct {
	ID             string
	Classification entity.ClassificationResult
	Measurements   entity.MeasurementSet
	Keypoints      []entity.Keypoint
	Backend        entity.BackendKind
	ImageWidth     int
	ImageHeight    int
	CreatedAt      time.Time
}

// AssembleResult объединяет классификацию, измерения и точки в итог анализа.
// Названия, описание и рекомендации берутся из каталога как есть.
func AssembleResult(catalog port.ShapeCatalog, a Assembly) (*entity.AnalysisResult, error) {
	primary, err := catalog.Template(a.Classification.Primary.Shape)
	if err != nil {
		return nil, fmt.Errorf("primary shape: %w", err)
	}

	alternatives := make([]entity.Alternative, 0, len(a.Classification.Alternatives))
	for _, m := range a.Classification.Alternatives {
		t, err := catalog.Template(m.Shape)
		if err != nil {
			return nil, fmt.Errorf("alternative shape: %w", err)
		}
		alternatives = append(alternatives, entity.Alternative{
			Shape:       m.Shape,
			DisplayName: t.DisplayName,
			Confidence:  m.Confidence,
		})
	}

	keypoints := make([]entity.Keypoint, len(a.Keypoints))
	copy(keypoints, a.Keypoints)

	return &entity.AnalysisResult{
		ID:           a.ID,
		Shape:        primary.ID,
		DisplayName:  primary.DisplayName,
		Description:  primary.Description,
		Confidence:   a.Classification.Primary.Confidence,
		Alternatives: alternatives,
		Measurements: a.Measurements,
		Keypoints:    keypoints,
		Guidance:     primary.Guidance,
		Backend:      a.Backend,
		ImageWidth:   a.ImageWidth,
		ImageHeight:  a.ImageHeight,
		CreatedAt:    a.CreatedAt,
	}, nil
}
