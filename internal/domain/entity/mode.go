package entity

import "fmt"

// DetectorMode предпочтение вызывающего при выборе бэкенда детекции
type DetectorMode string

const (
	ModeAuto      DetectorMode = "auto"      // точный, если готов, иначе эвристика
	ModePrecise   DetectorMode = "precise"   // только точный бэкенд
	ModeHeuristic DetectorMode = "heuristic" // только эвристика
)

// ParseDetectorMode разбирает режим из строки; пустая строка означает auto
func ParseDetectorMode(s string) (DetectorMode, error) {
	switch DetectorMode(s) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModePrecise:
		return ModePrecise, nil
	case ModeHeuristic:
		return ModeHeuristic, nil
	}
	return "", fmt.Errorf("unknown detector mode %q", s)
}
