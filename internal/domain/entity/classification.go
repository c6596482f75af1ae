package entity

// MaxAlternatives сколько альтернативных форм попадает в результат
const MaxAlternatives = 3

// Match пара форма и уверенность
type Match struct {
	Shape      ShapeID `json:"shape"`
	Confidence float64 `json:"confidence"` // 0..1
}

// ClassificationResult итог классификации одного набора измерений.
// Уверенность основной формы не меньше уверенности любой альтернативы,
// альтернативы отсортированы по убыванию и не содержат основную форму.
type ClassificationResult struct {
	Primary      Match   `json:"primary"`
	Alternatives []Match `json:"alternatives"`
}

// Inconclusive сообщает, что ни один шаблон не совпал ни по одному отношению
func (r ClassificationResult) Inconclusive() bool {
	return r.Primary.Confidence == 0
}
