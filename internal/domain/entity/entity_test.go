package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDetectorMode(t *testing.T) {
	tests := []struct {
		in      string
		want    DetectorMode
		wantErr bool
	}{
		{in: "", want: ModeAuto},
		{in: "auto", want: ModeAuto},
		{in: "precise", want: ModePrecise},
		{in: "heuristic", want: ModeHeuristic},
		{in: "gpu", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDetectorMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMeasurementSet_Ratio(t *testing.T) {
	m := MeasurementSet{WidthToHeightRatio: 1.2, JawToForeheadRatio: 0.9}

	v, ok := m.Ratio(RatioWidthToHeight)
	require.True(t, ok)
	require.Equal(t, 1.2, v)

	_, ok = m.Ratio(RatioCheekboneWidth)
	require.False(t, ok)

	_, ok = m.Ratio(RatioKind("unknown"))
	require.False(t, ok)
}

func TestRange_ContainsIsInclusive(t *testing.T) {
	r := Range{Min: 0.9, Max: 1.1}
	require.True(t, r.Contains(0.9))
	require.True(t, r.Contains(1.1))
	require.False(t, r.Contains(1.1000001))
	require.False(t, r.Contains(0.8999999))
}

func TestGeometryError_UnwrapsToSentinel(t *testing.T) {
	err := fmt.Errorf("measure: %w", &GeometryError{Measure: "forehead_width"})
	require.True(t, errors.Is(err, ErrDegenerateGeometry))
	require.Contains(t, err.Error(), "forehead_width")

	var gerr *GeometryError
	require.True(t, errors.As(err, &gerr))
	require.Equal(t, "forehead_width", gerr.Measure)
}

func TestClassificationResult_Inconclusive(t *testing.T) {
	require.True(t, ClassificationResult{}.Inconclusive())
	require.False(t, ClassificationResult{Primary: Match{Shape: ShapeRound, Confidence: 0.34}}.Inconclusive())
}
