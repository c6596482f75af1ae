package port

import "face-shape-bot/internal/domain/entity"

// ShapeCatalog справочник эталонных форм лица, только для чтения
type ShapeCatalog interface {
	// All возвращает шаблоны в фиксированном порядке объявления
	All() []entity.ShapeTemplate

	// Template возвращает шаблон по идентификатору или entity.ErrShapeNotFound
	Template(id entity.ShapeID) (entity.ShapeTemplate, error)
}
