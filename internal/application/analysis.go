package app

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"face-shape-bot/internal/domain/entity"
	"face-shape-bot/internal/domain/geometry"
	"face-shape-bot/internal/domain/port"
	"face-shape-bot/internal/infrastructure/imageio"
	"face-shape-bot/internal/infrastructure/logger"
)

// AnalysisService проводит фотографию через весь конвейер:
// декодирование, точки лица, измерения, классификация, сборка результата.
type AnalysisService struct {
	users      *UserService
	selector   port.DetectorSelector
	classifier port.ShapeClassifier
	catalog    port.ShapeCatalog
	annotator  port.Annotator
	maxSide    int
	log        *logrus.Entry

	now   func() time.Time
	newID func() string
}

// AnalysisOutput содержит результат анализа и картинку с отмеченными точками.
type AnalysisOutput struct {
	Result    *entity.AnalysisResult
	Annotated []byte
}

// AnalysisConfig параметры сервиса анализа
type AnalysisConfig struct {
	MaxImageSide int
}

// NewAnalysisService создаёт сервис анализа; annotator может быть nil.
func NewAnalysisService(
	users *UserService,
	selector port.DetectorSelector,
	classifier port.ShapeClassifier,
	catalog port.ShapeCatalog,
	annotator port.Annotator,
	cfg AnalysisConfig,
	log *logrus.Entry,
) *AnalysisService {
	if cfg.MaxImageSide <= 0 {
		cfg.MaxImageSide = imageio.DefaultMaxSide
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &AnalysisService{
		users:      users,
		selector:   selector,
		classifier: classifier,
		catalog:    catalog,
		annotator:  annotator,
		maxSide:    cfg.MaxImageSide,
		log:        log.WithField("component", "analysis"),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Catalog справочник форм, которым пользуется сервис
func (s *AnalysisService) Catalog() port.ShapeCatalog {
	return s.catalog
}

// BackendStatus состояние бэкендов детекции
func (s *AnalysisService) BackendStatus() entity.BackendStatus {
	return s.selector.Status()
}

// ResetBackend сбрасывает точный бэкенд после окончательной неудачи
func (s *AnalysisService) ResetBackend() error {
	return s.selector.Reset()
}

// BeginAnalysis переводит пользователя в ожидание фотографии.
func (s *AnalysisService) BeginAnalysis(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.users.BeginCheck(ctx, userID, chatID)
}

// AnalyzePhoto анализирует фото пользователя в его режиме детекции.
// На время обработки пользователь в состоянии processing, после него снова в главном меню.
func (s *AnalysisService) AnalyzePhoto(ctx context.Context, userID, chatID int64, photo []byte) (*AnalysisOutput, error) {
	user, err := s.users.SetState(ctx, userID, chatID, entity.StateProcessing)
	if err != nil {
		return nil, err
	}

	out, analyzeErr := s.AnalyzeBytes(ctx, photo, user.Mode, s.annotator != nil)

	if _, err := s.users.SetState(ctx, userID, chatID, entity.StateMainMenu); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("failed to reset user state")
	}
	return out, analyzeErr
}

// AnalyzeBytes декодирует фото, приводит к рабочему размеру и анализирует его.
func (s *AnalysisService) AnalyzeBytes(ctx context.Context, data []byte, mode entity.DetectorMode, annotate bool) (*AnalysisOutput, error) {
	img, err := imageio.Decode(data)
	if err != nil {
		return nil, err
	}
	img = imageio.Bound(img, s.maxSide)

	result, err := s.AnalyzeImage(ctx, img, mode)
	if err != nil {
		return nil, err
	}

	out := &AnalysisOutput{Result: result}
	if annotate && s.annotator != nil {
		// без подсветки результат всё равно полезен
		annotated, err := s.annotator.Annotate(img, result)
		if err != nil {
			logger.FromContext(ctx, s.log).WithError(err).Warn("failed to annotate photo")
		} else {
			out.Annotated = annotated
		}
	}
	return out, nil
}

// AnalyzeImage классифицирует форму лица на готовом растровом изображении.
func (s *AnalysisService) AnalyzeImage(ctx context.Context, img image.Image, mode entity.DetectorMode) (*entity.AnalysisResult, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, entity.ErrInvalidImage
	}

	detector, err := s.selector.Select(ctx, mode)
	if err != nil {
		return nil, err
	}

	keypoints, err := detector.DetectKeypoints(ctx, img)
	if err != nil {
		return nil, err
	}

	measurements, err := geometry.Measure(keypoints)
	if err != nil {
		return nil, err
	}

	classification := s.classifier.Classify(measurements)

	result, err := AssembleResult(s.catalog, Assembly{
		ID:             s.newID(),
		Classification: classification,
		Measurements:   measurements,
		Keypoints:      keypoints,
		Backend:        detector.Kind(),
		ImageWidth:     img.Bounds().Dx(),
		ImageHeight:    img.Bounds().Dy(),
		CreatedAt:      s.now(),
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).WithFields(logrus.Fields{
		"shape":      result.Shape,
		"confidence": result.Confidence,
		"backend":    result.Backend,
	}).Debug("analysis finished")
	return result, nil
}

// IsUserError сообщает, что ошибку анализа стоит показать пользователю как просьбу прислать другое фото
func IsUserError(err error) bool {
	return errors.Is(err, entity.ErrNoFaceDetected) ||
		errors.Is(err, entity.ErrInvalidImage) ||
		errors.Is(err, entity.ErrDegenerateGeometry)
}
