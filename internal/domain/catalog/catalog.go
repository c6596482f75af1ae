// Package catalog содержит справочник эталонных форм лица.
package catalog

import (
	"fmt"

	"face-shape-bot/internal/domain/entity"
	"face-shape-bot/internal/domain/port"
)

// Catalog неизменяемый упорядоченный набор шаблонов.
// Порядок объявления важен: при равной уверенности побеждает шаблон, объявленный раньше.
type Catalog struct {
	templates []entity.ShapeTemplate
	index     map[entity.ShapeID]int
}

// New создаёт каталог из шаблонов в заданном порядке.
// Идентификаторы уникальны: повтор отбрасывается, остаётся первое вхождение.
func New(templates ...entity.ShapeTemplate) *Catalog {
	c := &Catalog{
		templates: make([]entity.ShapeTemplate, 0, len(templates)),
		index:     make(map[entity.ShapeID]int, len(templates)),
	}
	for _, t := range templates {
		if _, exists := c.index[t.ID]; exists {
			continue
		}
		c.index[t.ID] = len(c.templates)
		c.templates = append(c.templates, clone(t))
	}
	return c
}

// Default возвращает каталог из шести канонических форм
func Default() *Catalog {
	return New(defaultTemplates()...)
}

// All возвращает копию шаблонов в порядке объявления
func (c *Catalog) All() []entity.ShapeTemplate {
	out := make([]entity.ShapeTemplate, len(c.templates))
	for i, t := range c.templates {
		out[i] = clone(t)
	}
	return out
}

// Template возвращает шаблон по идентификатору
func (c *Catalog) Template(id entity.ShapeID) (entity.ShapeTemplate, error) {
	i, ok := c.index[id]
	if !ok {
		return entity.ShapeTemplate{}, fmt.Errorf("%w: %q", entity.ErrShapeNotFound, id)
	}
	return clone(c.templates[i]), nil
}

// Len количество шаблонов
func (c *Catalog) Len() int {
	return len(c.templates)
}

// clone отдаёт наружу копию, чтобы вызывающий не мог изменить общий справочник
func clone(t entity.ShapeTemplate) entity.ShapeTemplate {
	ranges := make(map[entity.RatioKind]entity.Range, len(t.Ranges))
	for k, v := range t.Ranges {
		ranges[k] = v
	}
	t.Ranges = ranges
	t.Guidance = entity.Guidance{
		Recommended: append([]string(nil), t.Guidance.Recommended...),
		Avoid:       append([]string(nil), t.Guidance.Avoid...),
		Tips:        append([]string(nil), t.Guidance.Tips...),
	}
	return t
}

// Проверка реализации интерфейса
var _ port.ShapeCatalog = (*Catalog)(nil)
