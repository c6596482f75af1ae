package entity

import "time"

// BackendKind какой бэкенд детекции дал точки
type BackendKind string

const (
	BackendPrecise   BackendKind = "precise"
	BackendHeuristic BackendKind = "heuristic"
)

// Alternative альтернативная форма с отображаемым названием
type Alternative struct {
	Shape       ShapeID `json:"shape"`
	DisplayName string  `json:"display_name"`
	Confidence  float64 `json:"confidence"`
}

// AnalysisResult итог анализа фотографии, передаётся слою представления.
type AnalysisResult struct {
	ID           string         `json:"id"`
	Shape        ShapeID        `json:"shape"`
	DisplayName  string         `json:"display_name"`
	Description  string         `json:"description"`
	Confidence   float64        `json:"confidence"`
	Alternatives []Alternative  `json:"alternatives"`
	Measurements MeasurementSet `json:"measurements"`
	Keypoints    []Keypoint     `json:"keypoints"`
	Guidance     Guidance       `json:"guidance"`
	Backend      BackendKind    `json:"backend"`
	ImageWidth   int            `json:"image_width"`  // ширина изображения после нормализации
	ImageHeight  int            `json:"image_height"` // высота изображения после нормализации
	CreatedAt    time.Time      `json:"created_at"`
}

// BackendStatus состояние бэкендов детекции для диагностики
type BackendStatus struct {
	Mode      DetectorMode `json:"mode"`              // режим по умолчанию
	State     string       `json:"state"`             // состояние точного бэкенда
	Compute   string       `json:"compute,omitempty"` // gpu или cpu, когда точный бэкенд готов
	LastError string       `json:"last_error,omitempty"`
}
