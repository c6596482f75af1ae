package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	app "face-shape-bot/internal/application"
	"face-shape-bot/internal/container"
	"face-shape-bot/internal/domain/entity"
	"face-shape-bot/internal/infrastructure/logger"
)

// максимальный размер скачиваемого фото
const maxPhotoBytes = 20 << 20

// botAPI часть Telegram API, которой пользуются обработчики
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Bot представляет Telegram-бота
type Bot struct {
	bot      *tgbotapi.BotAPI
	api      botAPI
	users    *app.UserService
	analysis *app.AnalysisService
	http     *http.Client
	log      *logrus.Entry

	busy    sync.Map // userID -> struct{}, фото в обработке
	workers chan struct{}
	wg      sync.WaitGroup
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container, log *logrus.Entry) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	b := newBot(api, c, log)
	b.bot = api
	b.log.WithField("account", api.Self.UserName).Info("authorized")
	return b, nil
}

func newBot(api botAPI, c *container.Container, log *logrus.Entry) *Bot {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Bot{
		api:      api,
		users:    c.UserService,
		analysis: c.AnalysisService,
		http:     &http.Client{Timeout: 30 * time.Second},
		log:      log.WithField("component", "telegram"),
		workers:  make(chan struct{}, 4),
	}
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	if b.bot == nil {
		return errors.New("telegram api is not initialized")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.dispatch(ctx, update.Message)
		}
	}
}

// dispatch запускает обработку в отдельной горутине, не больше cap(workers) одновременно
func (b *Bot) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	select {
	case b.workers <- struct{}{}:
	case <-ctx.Done():
		return
	}

	b.wg.Add(1)
	go func() {
		defer func() {
			<-b.workers
			b.wg.Done()
		}()
		b.handleMessage(logger.ContextWithRequestID(ctx, uuid.NewString()), msg)
	}()
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.logger(ctx, msg).WithError(err).Error("failed to get user")
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	// Обработка фото, в том числе отправленного файлом
	if fileID, ok := photoFileID(msg); ok {
		b.handlePhoto(ctx, msg, fileID)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		b.setState(ctx, msg, entity.StateMainMenu)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "check":
		if _, err := b.analysis.BeginAnalysis(ctx, user.ID, chatID); err != nil {
			b.logger(ctx, msg).WithError(err).Error("failed to begin analysis")
		}
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "cancel":
		if _, err := b.users.Cancel(ctx, user.ID, chatID); err != nil {
			b.logger(ctx, msg).WithError(err).Error("failed to cancel")
		}
		b.sendMessage(chatID, msgCancelled)

	case "shapes":
		b.handleShapes(chatID, args)

	case "mode":
		b.handleMode(ctx, msg, user, args)

	case "status":
		b.sendMessage(chatID, FormatStatus(b.analysis.BackendStatus()))

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

func (b *Bot) handleShapes(chatID int64, args string) {
	catalog := b.analysis.Catalog()
	if args == "" {
		b.sendMessage(chatID, FormatShapes(catalog.All()))
		return
	}

	t, err := catalog.Template(entity.ShapeID(strings.ToLower(args)))
	if err != nil {
		b.sendMessage(chatID, msgUnknownShape)
		return
	}
	b.sendMessage(chatID, FormatShape(t))
}

func (b *Bot) handleMode(ctx context.Context, msg *tgbotapi.Message, user *entity.User, args string) {
	if args == "" {
		b.sendMessage(msg.Chat.ID, FormatMode(user.Mode))
		return
	}

	mode, err := entity.ParseDetectorMode(strings.ToLower(args))
	if err != nil {
		b.sendMessage(msg.Chat.ID, msgUnknownMode)
		return
	}

	user, err = b.users.SetMode(ctx, user.ID, msg.Chat.ID, mode)
	if err != nil {
		b.logger(ctx, msg).WithError(err).Error("failed to set mode")
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}
	b.sendMessage(msg.Chat.ID, FormatMode(user.Mode))
}

// handlePhoto обрабатывает входящее фото
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	userID := msg.From.ID
	if _, loaded := b.busy.LoadOrStore(userID, struct{}{}); loaded {
		b.sendMessage(msg.Chat.ID, msgBusy)
		return
	}
	defer b.busy.Delete(userID)

	b.sendMessage(msg.Chat.ID, msgProcessing)
	start := time.Now()

	imageData, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.logger(ctx, msg).WithError(err).Error("failed to download photo")
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		b.setState(ctx, msg, entity.StateMainMenu)
		return
	}

	out, err := b.analysis.AnalyzePhoto(ctx, userID, msg.Chat.ID, imageData)
	if err != nil {
		b.logger(ctx, msg).WithError(err).Warn("analysis failed")
		b.sendMessage(msg.Chat.ID, errorMessage(err))
		return
	}

	b.logger(ctx, msg).WithFields(logrus.Fields{
		"shape":      out.Result.Shape,
		"backend":    out.Result.Backend,
		"latency_ms": time.Since(start).Milliseconds(),
	}).Info("photo analyzed")

	if len(out.Annotated) > 0 {
		photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{Name: "face.jpg", Bytes: out.Annotated})
		photo.Caption = FormatCaption(out.Result)
		if _, err := b.api.Send(photo); err != nil {
			b.logger(ctx, msg).WithError(err).Warn("failed to send annotated photo")
		}
	}
	b.sendMessage(msg.Chat.ID, FormatResult(out.Result))
}

// errorMessage подбирает ответ пользователю по типу ошибки
func errorMessage(err error) string {
	switch {
	case errors.Is(err, entity.ErrNoFaceDetected):
		return msgNoFace
	case errors.Is(err, entity.ErrInvalidImage):
		return msgInvalidImage
	case errors.Is(err, entity.ErrDegenerateGeometry):
		return msgDegenerate
	case errors.Is(err, entity.ErrBackendUnavailable):
		return msgBackendUnavailable
	default:
		return msgProcessingError
	}
}

// photoFileID файл самого крупного фото или изображения, отправленного документом
func photoFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	fileURL, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) > maxPhotoBytes {
		return nil, fmt.Errorf("file is larger than %d bytes", maxPhotoBytes)
	}

	return data, nil
}

func (b *Bot) setState(ctx context.Context, msg *tgbotapi.Message, state entity.UserState) {
	if _, err := b.users.SetState(ctx, msg.From.ID, msg.Chat.ID, state); err != nil {
		b.logger(ctx, msg).WithError(err).Error("failed to set state")
	}
}

func (b *Bot) logger(ctx context.Context, msg *tgbotapi.Message) *logrus.Entry {
	return logger.FromContext(ctx, b.log).WithFields(logrus.Fields{
		"user_id": msg.From.ID,
		"chat_id": msg.Chat.ID,
	})
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).WithField("chat_id", chatID).Error("failed to send message")
	}
}
