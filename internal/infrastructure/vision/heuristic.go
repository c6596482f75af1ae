package vision

import (
	"context"
	"fmt"
	"image"

	"face-shape-bot/internal/domain/entity"
	"face-shape-bot/internal/domain/port"
)

// HeuristicConfig параметры грубого поиска лица по цвету кожи
type HeuristicConfig struct {
	Stride        int     // шаг сетки в пикселях
	DefaultRegion float64 // доля кадра для области по умолчанию, по центру
	MinSamples    int     // сколько точек сетки должно совпасть, чтобы поверить области
}

// DefaultHeuristicConfig возвращает параметры по умолчанию
func DefaultHeuristicConfig() HeuristicConfig {
	return HeuristicConfig{
		Stride:        10,
		DefaultRegion: 0.6,
		MinSamples:    4,
	}
}

// HeuristicDetector ищет область с оттенками кожи и расставляет восемь синтетических точек.
// Он всегда возвращает точки, даже на изображении без лица.
type HeuristicDetector struct {
	cfg HeuristicConfig
}

// NewHeuristicDetector создаёт эвристический детектор
func NewHeuristicDetector(cfg HeuristicConfig) *HeuristicDetector {
	def := DefaultHeuristicConfig()
	if cfg.Stride <= 0 {
		cfg.Stride = def.Stride
	}
	if cfg.DefaultRegion <= 0 || cfg.DefaultRegion > 1 {
		cfg.DefaultRegion = def.DefaultRegion
	}
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = def.MinSamples
	}
	return &HeuristicDetector{cfg: cfg}
}

// доли ширины и высоты области для каждой роли, в порядке entity.KeypointRoles
var heuristicLayout = [entity.KeypointCount][2]float64{
	{0.50, 0.00}, // лоб
	{0.10, 0.45}, // левая скула
	{0.90, 0.45}, // правая скула
	{0.20, 0.80}, // левый угол челюсти
	{0.80, 0.80}, // правый угол челюсти
	{0.50, 1.00}, // подбородок
	{0.15, 0.20}, // левый висок
	{0.85, 0.20}, // правый висок
}

// DetectKeypoints сканирует изображение и возвращает восемь точек
func (d *HeuristicDetector) DetectKeypoints(ctx context.Context, img image.Image) ([]entity.Keypoint, error) {
	_ = ctx
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", entity.ErrInvalidImage)
	}

	box, ok := d.scan(img)
	if !ok {
		box = d.defaultBox(img.Bounds())
	}
	return layoutKeypoints(box), nil
}

// Kind сообщает тип бэкенда
func (d *HeuristicDetector) Kind() entity.BackendKind {
	return entity.BackendHeuristic
}

// scan обходит изображение по сетке и строит рамку по пикселям цвета кожи
func (d *HeuristicDetector) scan(img image.Image) (entity.FaceBox, bool) {
	b := img.Bounds()
	step := d.cfg.Stride

	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X, b.Min.Y
	samples := 0

	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, _ := img.At(x, y).RGBA()
			if !isSkin(uint8(r>>8), uint8(g>>8), uint8(bl>>8)) {
				continue
			}
			samples++
			minX = minInt(minX, x)
			minY = minInt(minY, y)
			maxX = maxInt(maxX, x)
			maxY = maxInt(maxY, y)
		}
	}

	box := entity.FaceBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	if samples < d.cfg.MinSamples || box.Width < step || box.Height < step {
		return entity.FaceBox{}, false
	}
	return box, true
}

// defaultBox область по центру кадра, когда кожа не найдена
func (d *HeuristicDetector) defaultBox(b image.Rectangle) entity.FaceBox {
	w := int(float64(b.Dx()) * d.cfg.DefaultRegion)
	h := int(float64(b.Dy()) * d.cfg.DefaultRegion)
	w = maxInt(w, 1)
	h = maxInt(h, 1)
	return entity.FaceBox{
		X:      b.Min.X + (b.Dx()-w)/2,
		Y:      b.Min.Y + (b.Dy()-h)/2,
		Width:  w,
		Height: h,
	}
}

func layoutKeypoints(box entity.FaceBox) []entity.Keypoint {
	kps := make([]entity.Keypoint, entity.KeypointCount)
	for i, role := range entity.KeypointRoles {
		kps[i] = entity.Keypoint{
			Role: role,
			X:    float64(box.X) + heuristicLayout[i][0]*float64(box.Width),
			Y:    float64(box.Y) + heuristicLayout[i][1]*float64(box.Height),
		}
	}
	return kps
}

// isSkin грубое RGB-правило для кожи при дневном освещении
func isSkin(r, g, b uint8) bool {
	if r <= 95 || g <= 40 || b <= 20 {
		return false
	}
	if r <= g || r <= b {
		return false
	}
	hi := maxInt(int(r), maxInt(int(g), int(b)))
	lo := minInt(int(r), minInt(int(g), int(b)))
	return hi-lo > 15 && int(r)-int(g) > 15
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Проверка реализации интерфейса
var _ port.KeypointDetector = (*HeuristicDetector)(nil)
