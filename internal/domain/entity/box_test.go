package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFaceBoxCenter(t *testing.T) {
	b := FaceBox{X: 10, Y: 20, Width: 8, Height: 6}
	x, y := b.Center()
	require.Equal(t, 14, x)
	require.Equal(t, 23, y)
	require.Equal(t, 48, b.Area())
}

func TestFaceBoxEmpty(t *testing.T) {
	require.True(t, FaceBox{Width: 0, Height: 10}.Empty())
	require.True(t, FaceBox{Width: 10, Height: -1}.Empty())
	require.False(t, FaceBox{Width: 1, Height: 1}.Empty())
}
