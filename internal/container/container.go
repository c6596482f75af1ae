package container

import (
	"github.com/sirupsen/logrus"

	app "face-shape-bot/internal/application"
	"face-shape-bot/internal/domain/catalog"
	"face-shape-bot/internal/domain/classifier"
	"face-shape-bot/internal/domain/port"
)

type Container struct {
	UserService     *app.UserService
	AnalysisService *app.AnalysisService
}

func New(userRepo port.UserRepository, selector port.DetectorSelector, annotator port.Annotator, cfg app.AnalysisConfig, log *logrus.Entry) *Container {
	userService := app.NewUserService(userRepo)

	shapes := catalog.Default()
	analysisService := app.NewAnalysisService(userService, selector, classifier.New(shapes), shapes, annotator, cfg, log)

	return &Container{
		UserService:     userService,
		AnalysisService: analysisService,
	}
}
