package classifier

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"face-shape-bot/internal/domain/catalog"
	"face-shape-bot/internal/domain/entity"
)

func measurement(wh, jf, cw float64) entity.MeasurementSet {
	return entity.MeasurementSet{
		WidthToHeightRatio:  wh,
		JawToForeheadRatio:  jf,
		CheekboneWidthRatio: cw,
	}
}

func TestScore(t *testing.T) {
	round, err := catalog.Default().Template(entity.ShapeRound)
	require.NoError(t, err)

	tests := []struct {
		name string
		m    entity.MeasurementSet
		want float64
	}{
		{name: "all inside", m: measurement(0.95, 0.95, 0.95), want: 1},
		{name: "two of three", m: measurement(0.95, 0.95, 1.5), want: 2.0 / 3.0},
		{name: "none inside", m: measurement(2, 2, 2), want: 0},
		{name: "boundary is inside", m: measurement(1.1, 0.9, 1.0), want: 1},
		{name: "missing ratio is not penalised", m: measurement(0.95, 0.95, 0), want: 1},
		{name: "only one ratio present", m: measurement(0, 0, 1.5), want: 0},
		{name: "nothing to check", m: entity.MeasurementSet{}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, Score(tt.m, round), 1e-9)
		})
	}
}

func TestScore_TemplateWithoutRanges(t *testing.T) {
	empty := entity.ShapeTemplate{ID: "empty"}
	got := Score(measurement(1, 1, 1), empty)
	require.Equal(t, 0.0, got)
	require.False(t, math.IsNaN(got))
}

func TestScore_PartialTemplate(t *testing.T) {
	partial := entity.ShapeTemplate{
		ID: "partial",
		Ranges: map[entity.RatioKind]entity.Range{
			entity.RatioWidthToHeight: {Min: 1, Max: 2},
		},
	}
	require.Equal(t, 1.0, Score(measurement(1.5, 100, 100), partial))
	require.Equal(t, 0.0, Score(measurement(0.5, 1, 1), partial))
}

func TestClassify_Round(t *testing.T) {
	c := New(catalog.Default())

	res := c.Classify(measurement(0.95, 0.95, 0.95))
	require.Equal(t, entity.ShapeRound, res.Primary.Shape)
	require.Equal(t, 1.0, res.Primary.Confidence)

	require.Len(t, res.Alternatives, 3)
	assert.Equal(t, entity.ShapeSquare, res.Alternatives[0].Shape)
	assert.InDelta(t, 2.0/3.0, res.Alternatives[0].Confidence, 1e-9)
	assert.Equal(t, entity.ShapeHeart, res.Alternatives[1].Shape)
	assert.Equal(t, entity.ShapeDiamond, res.Alternatives[2].Shape)
}

func TestClassify_OvalByWidth(t *testing.T) {
	c := New(catalog.Default())

	res := c.Classify(measurement(1.5, 0.85, 0.85))
	require.Equal(t, entity.ShapeOval, res.Primary.Shape)
	require.Equal(t, 1.0, res.Primary.Confidence)
}

func TestClassify_TieGoesToEarlierTemplate(t *testing.T) {
	same := map[entity.RatioKind]entity.Range{
		entity.RatioWidthToHeight:  {Min: 0.5, Max: 1.5},
		entity.RatioJawToForehead:  {Min: 0.5, Max: 1.5},
		entity.RatioCheekboneWidth: {Min: 0.5, Max: 1.5},
	}
	filler := func(id entity.ShapeID) entity.ShapeTemplate {
		return entity.ShapeTemplate{ID: id, Ranges: map[entity.RatioKind]entity.Range{
			entity.RatioWidthToHeight: {Min: 5, Max: 6},
		}}
	}

	for _, pos := range []int{0, 1, 2} {
		templates := []entity.ShapeTemplate{filler("filler-a"), filler("filler-b"), filler("filler-c")}
		templates[pos] = entity.ShapeTemplate{ID: "first", Ranges: same}
		templates = append(templates, entity.ShapeTemplate{ID: "second", Ranges: same})

		c := New(catalog.New(templates...))
		for i := 0; i < 10; i++ {
			res := c.Classify(measurement(1, 1, 1))
			require.Equal(t, entity.ShapeID("first"), res.Primary.Shape)
			require.Equal(t, entity.ShapeID("second"), res.Alternatives[0].Shape)
			require.Equal(t, res.Primary.Confidence, res.Alternatives[0].Confidence)
		}
	}
}

func TestClassify_DuplicateIDNeverInAlternatives(t *testing.T) {
	c := New(catalog.New(
		entity.ShapeTemplate{ID: entity.ShapeRound, Ranges: map[entity.RatioKind]entity.Range{
			entity.RatioWidthToHeight: {Min: 0.5, Max: 1.5},
		}},
		entity.ShapeTemplate{ID: entity.ShapeRound, Ranges: map[entity.RatioKind]entity.Range{
			entity.RatioWidthToHeight: {Min: 5, Max: 6},
		}},
		entity.ShapeTemplate{ID: entity.ShapeOval, Ranges: map[entity.RatioKind]entity.Range{
			entity.RatioWidthToHeight: {Min: 5, Max: 6},
		}},
	))

	res := c.Classify(measurement(1, 1, 1))
	require.Equal(t, entity.ShapeRound, res.Primary.Shape)
	require.Equal(t, 1.0, res.Primary.Confidence)
	require.Len(t, res.Alternatives, 1)
	for _, alt := range res.Alternatives {
		require.NotEqual(t, res.Primary.Shape, alt.Shape)
	}
}

func TestClassify_ZeroConfidenceIsAResult(t *testing.T) {
	c := New(catalog.Default())

	res := c.Classify(measurement(9, 9, 9))
	require.True(t, res.Inconclusive())
	require.Equal(t, entity.ShapeOval, res.Primary.Shape)
	require.Len(t, res.Alternatives, 3)
}

func TestClassify_EmptyCatalog(t *testing.T) {
	res := New(catalog.New()).Classify(measurement(1, 1, 1))
	require.True(t, res.Inconclusive())
	require.Empty(t, res.Alternatives)
}

func TestClassify_Invariants(t *testing.T) {
	c := New(catalog.Default())
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		m := measurement(0.5+rng.Float64()*1.5, 0.5+rng.Float64()*1.0, 0.5+rng.Float64()*0.7)
		res := c.Classify(m)

		require.GreaterOrEqual(t, res.Primary.Confidence, 0.0)
		require.LessOrEqual(t, res.Primary.Confidence, 1.0)
		require.LessOrEqual(t, len(res.Alternatives), entity.MaxAlternatives)

		for j, alt := range res.Alternatives {
			require.NotEqual(t, res.Primary.Shape, alt.Shape)
			require.GreaterOrEqual(t, res.Primary.Confidence, alt.Confidence)
			if j > 0 {
				require.GreaterOrEqual(t, res.Alternatives[j-1].Confidence, alt.Confidence)
			}
		}
	}
}
