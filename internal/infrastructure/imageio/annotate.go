package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"face-shape-bot/internal/domain/entity"
	"face-shape-bot/internal/domain/port"
)

var (
	boxColor   = color.RGBA{G: 255, A: 255}
	pointColor = color.RGBA{R: 255, G: 64, B: 64, A: 255}
	labelColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Annotator отмечает на фотографии найденные точки и рамку лица
type Annotator struct {
	Quality   int  // качество JPEG
	Thickness int  // толщина линий рамки
	Radius    int  // радиус точки
	Labels    bool // подписывать роли точек
}

// NewAnnotator создаёт аннотатор с параметрами по умолчанию
func NewAnnotator() *Annotator {
	return &Annotator{
		Quality:   90,
		Thickness: 2,
		Radius:    4,
		Labels:    true,
	}
}

// Annotate реализует port.Annotator
func (a *Annotator) Annotate(img image.Image, result *entity.AnalysisResult) ([]byte, error) {
	canvas := imaging.Clone(img)
	offset := img.Bounds().Min

	if result != nil && len(result.Keypoints) > 0 {
		box := keypointBox(result.Keypoints, offset)
		strokeRect(canvas, box, a.Thickness, boxColor)

		for _, kp := range result.Keypoints {
			p := image.Pt(int(math.Round(kp.X))-offset.X, int(math.Round(kp.Y))-offset.Y)
			fillCircle(canvas, p, a.Radius, pointColor)
			if a.Labels {
				drawLabel(canvas, p.Add(image.Pt(a.Radius+2, -a.Radius)), string(kp.Role))
			}
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(a.Quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// keypointBox рамка, охватывающая все точки
func keypointBox(kps []entity.Keypoint, offset image.Point) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, kp := range kps {
		minX = math.Min(minX, kp.X)
		minY = math.Min(minY, kp.Y)
		maxX = math.Max(maxX, kp.X)
		maxY = math.Max(maxY, kp.Y)
	}
	return image.Rect(int(minX), int(minY), int(math.Ceil(maxX)), int(math.Ceil(maxY))).Sub(offset)
}

func strokeRect(dst draw.Image, r image.Rectangle, thickness int, c color.Color) {
	if thickness <= 0 {
		thickness = 1
	}
	src := &image.Uniform{C: c}
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness),
		image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y),
		image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}

func fillCircle(dst draw.Image, center image.Point, radius int, c color.Color) {
	b := dst.Bounds()
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y > radius*radius {
				continue
			}
			p := center.Add(image.Pt(x, y))
			if p.In(b) {
				dst.Set(p.X, p.Y, c)
			}
		}
	}
}

func drawLabel(dst draw.Image, at image.Point, text string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(at.X, at.Y),
	}
	d.DrawString(text)
}

var _ port.Annotator = (*Annotator)(nil)
