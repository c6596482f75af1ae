package telegram

import (
	"fmt"
	"strings"

	"face-shape-bot/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я определяю форму лица по фотографии и подсказываю, какие оправы подойдут.

📸 Отправьте мне фото лица анфас.

📋 Команды:
/check — начать анализ
/shapes — все формы лица
/mode — выбрать способ поиска точек
/status — состояние нейросети
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото лица анфас
2️⃣ Бот найдёт опорные точки и измерит пропорции
3️⃣ Вы получите форму лица, уверенность, похожие формы и советы по оправам

💡 Рекомендации:
• Смотрите прямо в камеру
• Уберите волосы со лба и скул
• Снимайте при ровном освещении

📋 Команды:
/check — начать анализ
/shapes [форма] — справочник форм
/mode [auto|precise|heuristic] — способ поиска точек
/cancel — отменить операцию`

	msgAwaitingPhoto      = "📸 Отправьте фото лица анфас."
	msgCancelled          = "❌ Операция отменена. Отправьте /check для нового анализа."
	msgSendPhoto          = "📸 Пожалуйста, отправьте фото лица."
	msgUnknownCommand     = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing         = "⏳ Анализирую фото..."
	msgBusy               = "⏳ Предыдущее фото ещё обрабатывается, подождите."
	msgProcessingError    = "⚠️ Не удалось обработать изображение. Попробуйте другое фото."
	msgNoFace             = "🙈 Лицо не найдено. Сделайте фото анфас при хорошем освещении."
	msgInvalidImage       = "⚠️ Не получилось прочитать изображение. Отправьте JPEG или PNG."
	msgDegenerate         = "⚠️ Не удалось измерить пропорции лица. Попробуйте фото, где лицо видно целиком."
	msgBackendUnavailable = "🧠 Нейросеть сейчас недоступна. Включите /mode auto, чтобы использовать быстрый режим."
	msgUnknownShape       = "❓ Такой формы нет. Список форм: /shapes"
	msgUnknownMode        = "❓ Режимы: auto, precise, heuristic. Например: /mode auto"
	msgInconclusive       = "Пропорции не попали ни в один эталон, результат ориентировочный."
)

var modeNames = map[entity.DetectorMode]string{
	entity.ModeAuto:      "авто: нейросеть, если готова, иначе быстрый поиск",
	entity.ModePrecise:   "только нейросеть",
	entity.ModeHeuristic: "быстрый поиск по цвету кожи",
}

var backendNames = map[entity.BackendKind]string{
	entity.BackendPrecise:   "нейросеть",
	entity.BackendHeuristic: "быстрый поиск",
}

// FormatResult текст ответа на проанализированное фото
func FormatResult(r *entity.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🔎 Форма лица: %s (%s)\n", r.DisplayName, percent(r.Confidence))
	if r.Description != "" {
		fmt.Fprintf(&b, "%s\n", r.Description)
	}
	if r.Confidence == 0 {
		fmt.Fprintf(&b, "%s\n", msgInconclusive)
	}

	if len(r.Alternatives) > 0 {
		b.WriteString("\nПохожие формы:\n")
		for _, alt := range r.Alternatives {
			fmt.Fprintf(&b, "• %s — %s\n", alt.DisplayName, percent(alt.Confidence))
		}
	}

	m := r.Measurements
	b.WriteString("\n📐 Пропорции:\n")
	fmt.Fprintf(&b, "• ширина / длина: %.2f\n", m.WidthToHeightRatio)
	fmt.Fprintf(&b, "• челюсть / лоб: %.2f\n", m.JawToForeheadRatio)
	fmt.Fprintf(&b, "• скулы: %.2f\n", m.CheekboneWidthRatio)

	writeGuidance(&b, r.Guidance)

	if name, ok := backendNames[r.Backend]; ok {
		fmt.Fprintf(&b, "\nТочки найдены: %s", name)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatCaption короткая подпись к фото с отмеченными точками
func FormatCaption(r *entity.AnalysisResult) string {
	return fmt.Sprintf("%s, %s", r.DisplayName, percent(r.Confidence))
}

// FormatShapes список всех форм из каталога
func FormatShapes(templates []entity.ShapeTemplate) string {
	var b strings.Builder
	b.WriteString("📚 Формы лица:\n")
	for _, t := range templates {
		fmt.Fprintf(&b, "• %s — /shapes %s\n", t.DisplayName, t.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatShape подробности об одной форме
func FormatShape(t entity.ShapeTemplate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n", t.DisplayName, t.Description)
	writeGuidance(&b, t.Guidance)
	return strings.TrimRight(b.String(), "\n")
}

// FormatStatus состояние нейросетевого бэкенда
func FormatStatus(s entity.BackendStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧠 Нейросеть: %s\n", s.State)
	if s.Compute != "" {
		fmt.Fprintf(&b, "Вычисления: %s\n", strings.ToUpper(s.Compute))
	}
	if s.LastError != "" {
		fmt.Fprintf(&b, "Последняя ошибка: %s\n", s.LastError)
	}
	fmt.Fprintf(&b, "Режим по умолчанию: %s", s.Mode)
	return b.String()
}

// FormatMode текущий режим пользователя
func FormatMode(mode entity.DetectorMode) string {
	return fmt.Sprintf("⚙️ Режим: %s (%s)\nДругие: /mode auto, /mode precise, /mode heuristic", mode, modeNames[mode])
}

func writeGuidance(b *strings.Builder, g entity.Guidance) {
	if len(g.Recommended) > 0 {
		fmt.Fprintf(b, "\n👓 Подойдут: %s\n", strings.Join(g.Recommended, ", "))
	}
	if len(g.Avoid) > 0 {
		fmt.Fprintf(b, "🚫 Лучше избегать: %s\n", strings.Join(g.Avoid, ", "))
	}
	for _, tip := range g.Tips {
		fmt.Fprintf(b, "💡 %s\n", tip)
	}
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}
