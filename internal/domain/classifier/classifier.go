package classifier

import (
	"sort"

	"face-shape-bot/internal/domain/entity"
	"face-shape-bot/internal/domain/port"
)

// Classifier выбирает наиболее подходящую форму из каталога
type Classifier struct {
	catalog port.ShapeCatalog
}

// New создаёт классификатор поверх каталога
func New(catalog port.ShapeCatalog) *Classifier {
	return &Classifier{catalog: catalog}
}

// Classify оценивает все шаблоны каталога, без досрочного выхода.
// При равной уверенности побеждает шаблон, объявленный в каталоге раньше;
// тот же порядок сохраняется среди альтернатив с одинаковой уверенностью.
func (c *Classifier) Classify(m entity.MeasurementSet) entity.ClassificationResult {
	templates := c.catalog.All()
	if len(templates) == 0 {
		return entity.ClassificationResult{Alternatives: []entity.Match{}}
	}

	matches := make([]entity.Match, len(templates))
	best := 0
	for i, t := range templates {
		matches[i] = entity.Match{Shape: t.ID, Confidence: Score(m, t)}
		if matches[i].Confidence > matches[best].Confidence {
			best = i
		}
	}

	rest := make([]entity.Match, 0, len(matches)-1)
	rest = append(rest, matches[:best]...)
	rest = append(rest, matches[best+1:]...)
	sort.SliceStable(rest, func(i, j int) bool {
		return rest[i].Confidence > rest[j].Confidence
	})
	if len(rest) > entity.MaxAlternatives {
		rest = rest[:entity.MaxAlternatives]
	}

	return entity.ClassificationResult{
		Primary:      matches[best],
		Alternatives: rest,
	}
}
