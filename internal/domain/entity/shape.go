package entity

// ShapeID идентификатор канонической формы лица
type ShapeID string

const (
	ShapeOval     ShapeID = "oval"
	ShapeRound    ShapeID = "round"
	ShapeSquare   ShapeID = "square"
	ShapeHeart    ShapeID = "heart"
	ShapeDiamond  ShapeID = "diamond"
	ShapeTriangle ShapeID = "triangle"
)

// Range включительный диапазон допустимых значений отношения
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains проверяет попадание значения в [Min, Max]
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Guidance заранее подготовленные рекомендации по оправам для формы лица
type Guidance struct {
	Recommended []string `json:"recommended"` // ссылки на стили оправ из каталога рекомендаций
	Avoid       []string `json:"avoid"`
	Tips        []string `json:"tips"`
}

// ShapeTemplate эталон формы лица: диапазоны отношений и справочный текст.
// Шаблоны неизменяемы и разделяются всем процессом.
type ShapeTemplate struct {
	ID          ShapeID             `json:"id"`
	DisplayName string              `json:"display_name"`
	Description string              `json:"description"`
	Ranges      map[RatioKind]Range `json:"ranges"`
	Guidance    Guidance            `json:"guidance"`
}

// Range возвращает диапазон для отношения, если шаблон его задаёт
func (t ShapeTemplate) Range(kind RatioKind) (Range, bool) {
	r, ok := t.Ranges[kind]
	return r, ok
}
