//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"face-shape-bot/internal/domain/entity"
)

var (
	ortOnce sync.Once
	ortErr  error
)

// ONNXEngine находит лицо через YuNet и 106 точек через insightface 2d106det
type ONNXEngine struct {
	cfg EngineConfig
}

// NewONNXEngine создаёт движок; окружение onnxruntime поднимается при первом Probe.
func NewONNXEngine(cfg EngineConfig) *ONNXEngine {
	def := DefaultEngineConfig()
	if cfg.ModelDir == "" {
		cfg.ModelDir = def.ModelDir
	}
	if cfg.DetectorModel == "" {
		cfg.DetectorModel = def.DetectorModel
	}
	if cfg.LandmarkModel == "" {
		cfg.LandmarkModel = def.LandmarkModel
	}
	if cfg.ScoreThreshold <= 0 {
		cfg.ScoreThreshold = def.ScoreThreshold
	}
	if cfg.NMSThreshold <= 0 {
		cfg.NMSThreshold = def.NMSThreshold
	}
	if cfg.LandmarkInput <= 0 {
		cfg.LandmarkInput = def.LandmarkInput
	}
	return &ONNXEngine{cfg: cfg}
}

func (e *ONNXEngine) environment() error {
	ortOnce.Do(func() {
		if e.cfg.LibraryPath != "" {
			ort.SetSharedLibraryPath(e.cfg.LibraryPath)
		}
		ortErr = ort.InitializeEnvironment()
	})
	return ortErr
}

// Probe поднимает onnxruntime и проверяет, подключается ли CUDA или CoreML
func (e *ONNXEngine) Probe(ctx context.Context) (Capability, error) {
	if err := e.environment(); err != nil {
		return Capability{}, fmt.Errorf("initialize onnxruntime: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Capability{}, err
	}

	for _, path := range []string{e.cfg.DetectorPath(), e.cfg.LandmarkPath()} {
		if _, err := os.Stat(path); err != nil {
			return Capability{}, fmt.Errorf("model file not found: %s", path)
		}
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return Capability{}, fmt.Errorf("create session options: %w", err)
	}
	defer options.Destroy()

	if provider := appendAccelerator(options); provider != "" {
		return Capability{GPU: true, Provider: provider}, nil
	}
	return Capability{Provider: "cpu"}, nil
}

// Load открывает обе модели под выбранный бэкенд
func (e *ONNXEngine) Load(ctx context.Context, backend ComputeBackend) (LandmarkModel, error) {
	if err := e.environment(); err != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer options.Destroy()

	target := gocv.NetTargetCPU
	if backend == ComputeGPU {
		if appendAccelerator(options) != "" {
			target = gocv.NetTargetCUDA
		}
	}

	session, err := ort.NewDynamicAdvancedSession(
		e.cfg.LandmarkPath(),
		[]string{"data"},
		[]string{"fc1"},
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("create landmark session: %w", err)
	}

	if err := ctx.Err(); err != nil {
		session.Destroy()
		return nil, err
	}

	netBackend := gocv.NetBackendDefault
	if target == gocv.NetTargetCUDA {
		netBackend = gocv.NetBackendCUDA
	}
	detector := gocv.NewFaceDetectorYNWithParams(
		e.cfg.DetectorPath(),
		"",
		image.Pt(320, 320),
		e.cfg.ScoreThreshold,
		e.cfg.NMSThreshold,
		5000,
		int(netBackend),
		int(target),
	)

	return &onnxModel{
		detector:  detector,
		session:   session,
		inputSize: e.cfg.LandmarkInput,
	}, nil
}

// appendAccelerator подключает CUDA, иначе CoreML; пустая строка означает только CPU
func appendAccelerator(options *ort.SessionOptions) string {
	if cuda, err := ort.NewCUDAProviderOptions(); err == nil {
		defer cuda.Destroy()
		if err := options.AppendExecutionProviderCUDA(cuda); err == nil {
			return "cuda"
		}
	}
	if err := options.AppendExecutionProviderCoreML(0); err == nil {
		return "coreml"
	}
	return ""
}

type onnxModel struct {
	mu        sync.Mutex
	detector  gocv.FaceDetectorYN
	session   *ort.DynamicAdvancedSession
	inputSize int
}

func (m *onnxModel) Keypoints(ctx context.Context, img image.Image) ([]entity.Keypoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidImage, err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, entity.ErrInvalidImage
	}

	box, score, ok := m.detectFace(mat)
	if !ok {
		return nil, entity.ErrNoFaceDetected
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	points, err := m.landmarks(mat, box)
	if err != nil {
		return nil, err
	}
	return KeypointsFromLandmarks(points, score)
}

// detectFace возвращает лицо с наибольшей уверенностью
func (m *onnxModel) detectFace(mat gocv.Mat) (entity.FaceBox, float64, bool) {
	m.detector.SetInputSize(image.Pt(mat.Cols(), mat.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()
	m.detector.Detect(mat, &faces)

	// Формат строки YuNet: x, y, w, h, 5 пар точек, score
	best, bestScore := entity.FaceBox{}, float64(-1)
	for r := 0; r < faces.Rows(); r++ {
		score := float64(faces.GetFloatAt(r, 14))
		if score <= bestScore {
			continue
		}
		bestScore = score
		best = entity.FaceBox{
			X:      int(faces.GetFloatAt(r, 0)),
			Y:      int(faces.GetFloatAt(r, 1)),
			Width:  int(faces.GetFloatAt(r, 2)),
			Height: int(faces.GetFloatAt(r, 3)),
		}
	}
	if bestScore < 0 || best.Empty() {
		return entity.FaceBox{}, 0, false
	}
	return best, bestScore, true
}

// landmarks вырезает лицо с запасом 1.5 и прогоняет 2d106det
func (m *onnxModel) landmarks(mat gocv.Mat, box entity.FaceBox) ([]Point, error) {
	centerX, centerY := box.Center()
	cx, cy := float64(centerX), float64(centerY)
	side := float64(box.Width)
	if box.Height > box.Width {
		side = float64(box.Height)
	}
	size := float64(m.inputSize)
	scale := size / (side * 1.5)

	affine := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	defer affine.Close()
	affine.SetDoubleAt(0, 0, scale)
	affine.SetDoubleAt(0, 1, 0)
	affine.SetDoubleAt(0, 2, size/2-cx*scale)
	affine.SetDoubleAt(1, 0, 0)
	affine.SetDoubleAt(1, 1, scale)
	affine.SetDoubleAt(1, 2, size/2-cy*scale)

	aligned := gocv.NewMat()
	defer aligned.Close()
	gocv.WarpAffine(mat, &aligned, affine, image.Pt(m.inputSize, m.inputSize))

	blob := gocv.BlobFromImage(aligned, 1.0/128.0, image.Pt(m.inputSize, m.inputSize),
		gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	data, err := blob.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}

	input, err := ort.NewTensor(ort.NewShape(1, 3, int64(m.inputSize), int64(m.inputSize)), data)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 2*landmarks106))
	if err != nil {
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	defer output.Destroy()

	if err := m.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return nil, fmt.Errorf("landmark inference: %w", err)
	}

	// Выход модели в [-1, 1] относительно вырезанного квадрата
	raw := output.GetData()
	half := size / 2
	points := make([]Point, landmarks106)
	for i := range points {
		x := (float64(raw[2*i]) + 1) * half
		y := (float64(raw[2*i+1]) + 1) * half
		points[i] = Point{
			X: (x-half)/scale + cx,
			Y: (y-half)/scale + cy,
		}
	}
	return points, nil
}

func (m *onnxModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.detector.Close()
	return m.session.Destroy()
}

var _ Engine = (*ONNXEngine)(nil)
