package vision

import (
	"fmt"
	"math"

	"face-shape-bot/internal/domain/entity"
)

// Point точка в координатах изображения
type Point struct {
	X, Y float64
}

// Раскладка 106 точек insightface 2d106det
const (
	contourFirst = 0
	contourLast  = 32
	landmarks106 = 106
)

// индексы точек бровей в раскладке 2d106det
var browIndices = []int{43, 44, 45, 46, 47, 48, 49, 50, 51, 97, 98, 99, 100, 101, 102, 103, 104, 105}

// jawLevel на какой доле высоты контура искать углы челюсти
const jawLevel = 0.75

// KeypointsFromLandmarks сводит плотный набор точек к восьми ролям.
// Нужен как минимум контур (первые 33 точки); брови используются, если переданы все 106.
// Роли выбираются по геометрии контура, а не по индексам, поэтому порядок обхода контура не важен.
func KeypointsFromLandmarks(points []Point, confidence float64) ([]entity.Keypoint, error) {
	if len(points) < contourLast+1 {
		return nil, fmt.Errorf("need at least %d landmarks, got %d", contourLast+1, len(points))
	}
	contour := points[contourFirst : contourLast+1]

	minX, maxX := contour[0], contour[0]
	top, chin := contour[0], contour[0]
	for _, p := range contour[1:] {
		if p.X < minX.X {
			minX = p
		}
		if p.X > maxX.X {
			maxX = p
		}
		if p.Y < top.Y {
			top = p
		}
		if p.Y > chin.Y {
			chin = p
		}
	}
	centerX := (minX.X + maxX.X) / 2

	// брови задают верх лица и ширину лба; без них берём верх контура
	browY := top.Y
	browLeft, browRight := Point{X: minX.X, Y: top.Y}, Point{X: maxX.X, Y: top.Y}
	if len(points) >= landmarks106 {
		browLeft, browRight = points[browIndices[0]], points[browIndices[0]]
		browY = points[browIndices[0]].Y
		for _, i := range browIndices[1:] {
			p := points[i]
			if p.X < browLeft.X {
				browLeft = p
			}
			if p.X > browRight.X {
				browRight = p
			}
			browY = math.Min(browY, p.Y)
		}
	}

	// линия роста волос: от бровей вверх на половину расстояния брови–подбородок
	foreheadY := browY - (chin.Y-browY)/2

	jawY := top.Y + jawLevel*(chin.Y-top.Y)
	leftJaw := closestOnSide(contour, jawY, centerX, true)
	rightJaw := closestOnSide(contour, jawY, centerX, false)

	roles := [entity.KeypointCount]Point{
		{X: centerX, Y: foreheadY},
		minX,
		maxX,
		leftJaw,
		rightJaw,
		chin,
		browLeft,
		browRight,
	}

	kps := make([]entity.Keypoint, entity.KeypointCount)
	for i, role := range entity.KeypointRoles {
		kps[i] = entity.Keypoint{
			Role:       role,
			X:          roles[i].X,
			Y:          roles[i].Y,
			Confidence: clamp01(confidence),
		}
	}
	return kps, nil
}

// closestOnSide точка контура на нужной стороне лица, ближайшая по высоте к y
func closestOnSide(contour []Point, y, centerX float64, left bool) Point {
	best := Point{X: centerX, Y: y}
	bestDist := math.Inf(1)
	for _, p := range contour {
		if left != (p.X < centerX) {
			continue
		}
		if d := math.Abs(p.Y - y); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
