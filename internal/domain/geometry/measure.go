// Package geometry превращает опорные точки лица в нормированные отношения.
package geometry

import (
	"fmt"
	"math"

	"face-shape-bot/internal/domain/entity"
)

// индексы точек в порядке entity.KeypointRoles
const (
	idxForehead = iota
	idxLeftCheekbone
	idxRightCheekbone
	idxLeftJaw
	idxRightJaw
	idxChin
	idxLeftTemple
	idxRightTemple
)

// Measure вычисляет набор измерений по точкам в порядке entity.KeypointRoles.
//
// faceWidth     = |rightCheekbone.x − leftCheekbone.x|
// faceHeight    = |forehead.y − chin.y|
// jawWidth      = |rightJaw.x − leftJaw.x|
// foreheadWidth = |rightTemple.x − leftTemple.x|
//
// widthToHeight = faceWidth / faceHeight, jawToForehead = jawWidth / foreheadWidth,
// cheekboneWidth = max(jawWidth, foreheadWidth) / faceWidth.
// Нулевой или нечисловой размер даёт *entity.GeometryError,
// недостаток точек даёт entity.ErrInvalidKeypoints.
func Measure(kps []entity.Keypoint) (entity.MeasurementSet, error) {
	if len(kps) < entity.KeypointCount {
		return entity.MeasurementSet{}, fmt.Errorf("%w: need %d keypoints, got %d", entity.ErrInvalidKeypoints, entity.KeypointCount, len(kps))
	}

	faceWidth := math.Abs(kps[idxRightCheekbone].X - kps[idxLeftCheekbone].X)
	faceHeight := math.Abs(kps[idxForehead].Y - kps[idxChin].Y)
	jawWidth := math.Abs(kps[idxRightJaw].X - kps[idxLeftJaw].X)
	foreheadWidth := math.Abs(kps[idxRightTemple].X - kps[idxLeftTemple].X)

	extents := []struct {
		name  string
		value float64
	}{
		{"face_width", faceWidth},
		{"face_height", faceHeight},
		{"jaw_width", jawWidth},
		{"forehead_width", foreheadWidth},
	}
	for _, e := range extents {
		if !positive(e.value) {
			return entity.MeasurementSet{}, &entity.GeometryError{Measure: e.name}
		}
	}

	return entity.MeasurementSet{
		WidthToHeightRatio:  faceWidth / faceHeight,
		JawToForeheadRatio:  jawWidth / foreheadWidth,
		CheekboneWidthRatio: math.Max(jawWidth, foreheadWidth) / faceWidth,
		FaceWidth:           faceWidth,
		FaceHeight:          faceHeight,
		JawWidth:            jawWidth,
		ForeheadWidth:       foreheadWidth,
	}, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
