package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"face-shape-bot/internal/domain/entity"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 30, G: 30, B: 30, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	img, err := Decode(encodePNG(t, 64, 32))
	require.NoError(t, err)
	require.Equal(t, 64, img.Bounds().Dx())
	require.Equal(t, 32, img.Bounds().Dy())
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode(nil)
	require.ErrorIs(t, err, entity.ErrInvalidImage)

	_, err = Decode([]byte("definitely not an image"))
	require.ErrorIs(t, err, entity.ErrInvalidImage)
}

func TestBound(t *testing.T) {
	big := imaging.New(2048, 1024, color.Black)
	out := Bound(big, 1024)
	require.Equal(t, 1024, out.Bounds().Dx())
	require.Equal(t, 512, out.Bounds().Dy())

	small := imaging.New(300, 200, color.Black)
	require.Same(t, small, Bound(small, 1024))

	require.Equal(t, DefaultMaxSide, Bound(big, 0).Bounds().Dx())
}

func TestAnnotator_Annotate(t *testing.T) {
	img := imaging.New(200, 200, color.NRGBA{R: 20, G: 20, B: 20, A: 255})
	result := &entity.AnalysisResult{
		Keypoints: []entity.Keypoint{
			{Role: entity.RoleForehead, X: 100, Y: 40},
			{Role: entity.RoleChin, X: 100, Y: 160},
			{Role: entity.RoleLeftCheekbone, X: 50, Y: 100},
			{Role: entity.RoleRightCheekbone, X: 150, Y: 100},
		},
	}

	a := NewAnnotator()
	a.Labels = false
	data, err := a.Annotate(img, result)
	require.NoError(t, err)

	out, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, img.Bounds().Size(), out.Bounds().Size())

	r, _, _, _ := out.At(100, 100).RGBA()
	require.Less(t, r>>8, uint32(60), "centre of the face stays untouched")

	r, g, _, _ := out.At(50, 100).RGBA()
	require.Greater(t, r>>8, uint32(150))
	require.Less(t, g>>8, uint32(150))

	_, g, _, _ = out.At(70, 40).RGBA()
	require.Greater(t, g>>8, uint32(150), "box edge is drawn")
}

func TestAnnotator_NoKeypoints(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 60, 40))
	data, err := NewAnnotator().Annotate(img, nil)
	require.NoError(t, err)

	out, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 50, out.Bounds().Dx())
}
