package catalog

import "face-shape-bot/internal/domain/entity"

func ranges(widthToHeight, jawToForehead, cheekboneWidth entity.Range) map[entity.RatioKind]entity.Range {
	return map[entity.RatioKind]entity.Range{
		entity.RatioWidthToHeight:  widthToHeight,
		entity.RatioJawToForehead:  jawToForehead,
		entity.RatioCheekboneWidth: cheekboneWidth,
	}
}

// defaultTemplates шесть канонических форм в порядке, который определяет разрешение ничьих
func defaultTemplates() []entity.ShapeTemplate {
	return []entity.ShapeTemplate{
		{
			ID:          entity.ShapeOval,
			DisplayName: "Овальное",
			Description: "Лоб чуть шире подбородка, скулы — самая широкая часть, линии мягкие.",
			Ranges: ranges(
				entity.Range{Min: 1.3, Max: 1.6},
				entity.Range{Min: 0.8, Max: 0.9},
				entity.Range{Min: 0.8, Max: 0.9},
			),
			Guidance: entity.Guidance{
				Recommended: []string{"rectangular", "square", "aviator", "cat-eye", "round"},
				Avoid:       []string{"oversized"},
				Tips: []string{
					"Подходит почти любая оправа — ориентируйтесь на пропорции лица.",
					"Верхняя линия оправы должна повторять линию бровей.",
				},
			},
		},
		{
			ID:          entity.ShapeRound,
			DisplayName: "Круглое",
			Description: "Ширина и длина лица почти равны, скулы широкие, подбородок мягкий.",
			Ranges: ranges(
				entity.Range{Min: 0.9, Max: 1.1},
				entity.Range{Min: 0.9, Max: 1.0},
				entity.Range{Min: 0.9, Max: 1.0},
			),
			Guidance: entity.Guidance{
				Recommended: []string{"rectangular", "square", "wayfarer", "browline"},
				Avoid:       []string{"round", "small"},
				Tips: []string{
					"Угловатые оправы визуально вытягивают лицо.",
					"Оправа должна быть чуть шире самой широкой части лица.",
				},
			},
		},
		{
			ID:          entity.ShapeSquare,
			DisplayName: "Квадратное",
			Description: "Широкий лоб и выраженная угловатая линия челюсти одинаковой ширины.",
			Ranges: ranges(
				entity.Range{Min: 0.9, Max: 1.1},
				entity.Range{Min: 1.0, Max: 1.1},
				entity.Range{Min: 0.95, Max: 1.05},
			),
			Guidance: entity.Guidance{
				Recommended: []string{"round", "oval", "aviator", "rimless"},
				Avoid:       []string{"square", "geometric"},
				Tips: []string{
					"Округлые линии смягчают угловатую челюсть.",
					"Тонкая оправа выглядит легче массивной.",
				},
			},
		},
		{
			ID:          entity.ShapeHeart,
			DisplayName: "Сердцевидное",
			Description: "Широкий лоб и скулы, узкий заострённый подбородок.",
			Ranges: ranges(
				entity.Range{Min: 1.0, Max: 1.3},
				entity.Range{Min: 0.6, Max: 0.8},
				entity.Range{Min: 0.85, Max: 1.0},
			),
			Guidance: entity.Guidance{
				Recommended: []string{"bottom-heavy", "oval", "round", "rimless"},
				Avoid:       []string{"browline", "cat-eye"},
				Tips: []string{
					"Акцент на нижней части оправы уравновешивает широкий лоб.",
				},
			},
		},
		{
			ID:          entity.ShapeDiamond,
			DisplayName: "Ромбовидное",
			Description: "Скулы заметно шире узкого лба и узкой челюсти.",
			Ranges: ranges(
				entity.Range{Min: 1.0, Max: 1.3},
				entity.Range{Min: 0.85, Max: 1.0},
				entity.Range{Min: 0.6, Max: 0.8},
			),
			Guidance: entity.Guidance{
				Recommended: []string{"cat-eye", "oval", "browline", "rimless"},
				Avoid:       []string{"narrow"},
				Tips: []string{
					"Оправы с акцентом сверху визуально расширяют лоб.",
				},
			},
		},
		{
			ID:          entity.ShapeTriangle,
			DisplayName: "Треугольное",
			Description: "Узкий лоб и широкая линия челюсти.",
			Ranges: ranges(
				entity.Range{Min: 1.0, Max: 1.3},
				entity.Range{Min: 1.1, Max: 1.4},
				entity.Range{Min: 0.9, Max: 1.1},
			),
			Guidance: entity.Guidance{
				Recommended: []string{"browline", "cat-eye", "aviator"},
				Avoid:       []string{"bottom-heavy", "narrow"},
				Tips: []string{
					"Яркая или массивная верхняя часть оправы уравновешивает челюсть.",
				},
			},
		},
	}
}
