package vision

import (
	"context"
	"image"
	"path/filepath"

	"face-shape-bot/internal/domain/entity"
)

// ComputeBackend на чём выполняется инференс
type ComputeBackend string

const (
	ComputeGPU ComputeBackend = "gpu"
	ComputeCPU ComputeBackend = "cpu"
)

// Capability результат проверки оборудования
type Capability struct {
	GPU      bool   // доступен ли аппаратный ускоритель
	Provider string // имя execution provider: cuda, coreml
}

// SelectBackend выбирает GPU, если он есть, иначе CPU
func SelectBackend(c Capability) ComputeBackend {
	if c.GPU {
		return ComputeGPU
	}
	return ComputeCPU
}

// Engine нейросетевой движок точного бэкенда.
// Оба метода могут работать долго и вызываются вне основного потока вызывающего.
type Engine interface {
	// Probe проверяет, какое оборудование доступно
	Probe(ctx context.Context) (Capability, error)

	// Load загружает модели под выбранный бэкенд
	Load(ctx context.Context, backend ComputeBackend) (LandmarkModel, error)
}

// LandmarkModel загруженная модель, которая находит точки лица
type LandmarkModel interface {
	// Keypoints возвращает восемь точек лучшего лица или entity.ErrNoFaceDetected
	Keypoints(ctx context.Context, img image.Image) ([]entity.Keypoint, error)

	// Close освобождает ресурсы модели
	Close() error
}

// EngineConfig пути к моделям и пороги точного бэкенда
type EngineConfig struct {
	ModelDir       string  // каталог с моделями
	DetectorModel  string  // YuNet, находит лицо
	LandmarkModel  string  // 2d106det, 106 точек лица
	LibraryPath    string  // путь к libonnxruntime, если пусто, системная библиотека
	ScoreThreshold float32 // минимальная уверенность детекции лица
	NMSThreshold   float32
	LandmarkInput  int // сторона входа модели точек
}

// DefaultEngineConfig возвращает параметры по умолчанию
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ModelDir:       "./models",
		DetectorModel:  "face_detection_yunet.onnx",
		LandmarkModel:  "2d106det.onnx",
		ScoreThreshold: 0.7,
		NMSThreshold:   0.3,
		LandmarkInput:  192,
	}
}

// DetectorPath полный путь к модели детекции
func (c EngineConfig) DetectorPath() string {
	return filepath.Join(c.ModelDir, c.DetectorModel)
}

// LandmarkPath полный путь к модели точек
func (c EngineConfig) LandmarkPath() string {
	return filepath.Join(c.ModelDir, c.LandmarkModel)
}
