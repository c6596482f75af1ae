package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"face-shape-bot/internal/domain/entity"
)

func TestDefault_DeclarationOrder(t *testing.T) {
	c := Default()

	var ids []entity.ShapeID
	for _, tmpl := range c.All() {
		ids = append(ids, tmpl.ID)
	}

	require.Equal(t, []entity.ShapeID{
		entity.ShapeOval,
		entity.ShapeRound,
		entity.ShapeSquare,
		entity.ShapeHeart,
		entity.ShapeDiamond,
		entity.ShapeTriangle,
	}, ids)
}

func TestTemplate_RoundTripsAll(t *testing.T) {
	c := Default()

	for _, tmpl := range c.All() {
		got, err := c.Template(tmpl.ID)
		require.NoError(t, err)
		require.Equal(t, tmpl.Ranges, got.Ranges, tmpl.ID)
		require.Equal(t, tmpl, got)
	}
}

func TestTemplate_Unknown(t *testing.T) {
	_, err := Default().Template("pear")
	require.Error(t, err)
	require.True(t, errors.Is(err, entity.ErrShapeNotFound))
}

func TestDefault_RangesAreWellFormed(t *testing.T) {
	for _, tmpl := range Default().All() {
		require.Len(t, tmpl.Ranges, len(entity.RatioKinds), tmpl.ID)
		for kind, r := range tmpl.Ranges {
			require.Greater(t, r.Min, 0.0, "%s/%s", tmpl.ID, kind)
			require.LessOrEqual(t, r.Min, r.Max, "%s/%s", tmpl.ID, kind)
		}
		require.NotEmpty(t, tmpl.DisplayName)
		require.NotEmpty(t, tmpl.Guidance.Recommended)
	}
}

func TestRoundTemplate_DocumentedRanges(t *testing.T) {
	round, err := Default().Template(entity.ShapeRound)
	require.NoError(t, err)

	require.Equal(t, entity.Range{Min: 0.9, Max: 1.1}, round.Ranges[entity.RatioWidthToHeight])
	require.Equal(t, entity.Range{Min: 0.9, Max: 1.0}, round.Ranges[entity.RatioJawToForehead])
	require.Equal(t, entity.Range{Min: 0.9, Max: 1.0}, round.Ranges[entity.RatioCheekboneWidth])
}

func TestAll_ReturnsCopies(t *testing.T) {
	c := Default()

	all := c.All()
	all[0].Ranges[entity.RatioWidthToHeight] = entity.Range{Min: 100, Max: 200}
	all[0].Guidance.Recommended[0] = "changed"

	oval, err := c.Template(entity.ShapeOval)
	require.NoError(t, err)
	require.Equal(t, entity.Range{Min: 1.3, Max: 1.6}, oval.Ranges[entity.RatioWidthToHeight])
	require.Equal(t, "rectangular", oval.Guidance.Recommended[0])
}

func TestNew_DuplicateIDKeepsFirst(t *testing.T) {
	first := entity.ShapeTemplate{ID: "dup", DisplayName: "first"}
	other := entity.ShapeTemplate{ID: "other", DisplayName: "other"}
	second := entity.ShapeTemplate{ID: "dup", DisplayName: "second"}

	c := New(first, other, second)
	require.Equal(t, 2, c.Len())

	all := c.All()
	require.Equal(t, entity.ShapeID("dup"), all[0].ID)
	require.Equal(t, "first", all[0].DisplayName)
	require.Equal(t, entity.ShapeID("other"), all[1].ID)

	got, err := c.Template("dup")
	require.NoError(t, err)
	require.Equal(t, "first", got.DisplayName)
}
