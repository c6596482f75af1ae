// Package classifier сопоставляет измерения лица с эталонными формами.
package classifier

import "face-shape-bot/internal/domain/entity"

// Score доля отношений шаблона, в диапазон которых попадает измерение.
// Отношения, которых нет в шаблоне или в измерениях, не учитываются.
// Если не проверено ни одного отношения, результат 0.
func Score(m entity.MeasurementSet, t entity.ShapeTemplate) float64 {
	var checked, hits int
	for _, kind := range entity.RatioKinds {
		r, ok := t.Range(kind)
		if !ok {
			continue
		}
		v, ok := m.Ratio(kind)
		if !ok {
			continue
		}
		checked++
		if r.Contains(v) {
			hits++
		}
	}
	if checked == 0 {
		return 0
	}
	return float64(hits) / float64(checked)
}
