package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFaceDetected точный бэкенд не нашёл ни одного лица
	ErrNoFaceDetected = errors.New("faceshape: no face detected")

	// ErrBackendUnavailable точный бэкенд не готов или окончательно не инициализировался
	ErrBackendUnavailable = errors.New("faceshape: detection backend unavailable")

	// ErrDegenerateGeometry пара опорных точек совпадает, отношение не определено
	ErrDegenerateGeometry = errors.New("faceshape: degenerate geometry")

	// ErrModelLoadTimeout загрузка модели не уложилась в таймаут попытки
	ErrModelLoadTimeout = errors.New("faceshape: model load timeout")

	// ErrShapeNotFound неизвестный идентификатор формы
	ErrShapeNotFound = errors.New("faceshape: shape not found")

	// ErrInvalidImage изображение пустое или не декодируется
	ErrInvalidImage = errors.New("faceshape: invalid image")

	// ErrInvalidKeypoints бэкенд вернул меньше точек, чем нужно для измерений
	ErrInvalidKeypoints = errors.New("faceshape: invalid detector output")
)

// GeometryError уточняет, какой размер оказался нулевым
type GeometryError struct {
	Measure string // имя знаменателя, например forehead_width
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%v: %s is zero", ErrDegenerateGeometry, e.Measure)
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrDegenerateGeometry)
func (e *GeometryError) Unwrap() error {
	return ErrDegenerateGeometry
}
