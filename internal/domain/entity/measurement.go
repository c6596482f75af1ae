package entity

// RatioKind одно из трёх отношений, по которым классифицируется форма лица
type RatioKind string

const (
	RatioWidthToHeight  RatioKind = "width_to_height"
	RatioJawToForehead  RatioKind = "jaw_to_forehead"
	RatioCheekboneWidth RatioKind = "cheekbone_width"
)

// RatioKinds порядок проверки отношений
var RatioKinds = [...]RatioKind{
	RatioWidthToHeight,
	RatioJawToForehead,
	RatioCheekboneWidth,
}

// MeasurementSet геометрические измерения одного лица.
// Все отношения строго положительны; нулевое значение означает, что отношение не вычислено.
type MeasurementSet struct {
	WidthToHeightRatio  float64 `json:"width_to_height_ratio"`
	JawToForeheadRatio  float64 `json:"jaw_to_forehead_ratio"`
	CheekboneWidthRatio float64 `json:"cheekbone_width_ratio"`

	// Сырые размеры в пикселях, для диагностики
	FaceWidth     float64 `json:"face_width"`
	FaceHeight    float64 `json:"face_height"`
	JawWidth      float64 `json:"jaw_width"`
	ForeheadWidth float64 `json:"forehead_width"`
}

// Ratio возвращает значение отношения и признак его наличия
func (m MeasurementSet) Ratio(kind RatioKind) (float64, bool) {
	var v float64
	switch kind {
	case RatioWidthToHeight:
		v = m.WidthToHeightRatio
	case RatioJawToForehead:
		v = m.JawToForeheadRatio
	case RatioCheekboneWidth:
		v = m.CheekboneWidthRatio
	}
	return v, v > 0
}
