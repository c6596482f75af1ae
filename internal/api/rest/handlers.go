package rest

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"face-shape-bot/internal/domain/entity"
	"face-shape-bot/internal/infrastructure/logger"
)

type analyzeQuery struct {
	Mode     string `query:"mode" validate:"omitempty,oneof=auto precise heuristic"`
	Annotate bool   `query:"annotate"`
}

type analyzeResponse struct {
	Result    *entity.AnalysisResult `json:"result"`
	Annotated []byte                 `json:"annotated_jpeg,omitempty"`
}

type healthResponse struct {
	Status  string               `json:"status"`
	Backend entity.BackendStatus `json:"backend"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// analyze принимает фото полем формы photo или сырым телом запроса
func (s *Server) analyze(c *fiber.Ctx) error {
	var q analyzeQuery
	if err := c.QueryParser(&q); err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := s.validate.Struct(q); err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	mode, err := entity.ParseDetectorMode(q.Mode)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	data, err := photoPayload(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	out, err := s.analysis.AnalyzeBytes(c.UserContext(), data, mode, q.Annotate)
	if err != nil {
		return s.writeAnalysisError(c, err)
	}

	return c.JSON(analyzeResponse{Result: out.Result, Annotated: out.Annotated})
}

func photoPayload(c *fiber.Ctx) ([]byte, error) {
	if fh, err := c.FormFile("photo"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}

	body := c.Body()
	if len(body) == 0 {
		return nil, errors.New("photo is required: multipart field \"photo\" or raw request body")
	}
	data := make([]byte, len(body))
	copy(data, body)
	return data, nil
}

func (s *Server) shapes(c *fiber.Ctx) error {
	return c.JSON(s.analysis.Catalog().All())
}

func (s *Server) shape(c *fiber.Ctx) error {
	t, err := s.analysis.Catalog().Template(entity.ShapeID(c.Params("id")))
	if err != nil {
		return s.writeAnalysisError(c, err)
	}
	return c.JSON(t)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(healthResponse{Status: "ok", Backend: s.analysis.BackendStatus()})
}

func (s *Server) resetBackend(c *fiber.Ctx) error {
	if err := s.analysis.ResetBackend(); err != nil {
		return s.writeAnalysisError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(healthResponse{Status: "resetting", Backend: s.analysis.BackendStatus()})
}

// statusFor сопоставляет ошибки домена с HTTP-статусами
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidImage):
		return fiber.StatusBadRequest
	case errors.Is(err, entity.ErrShapeNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, entity.ErrNoFaceDetected), errors.Is(err, entity.ErrDegenerateGeometry):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrBackendUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) writeAnalysisError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		logger.FromContext(c.UserContext(), s.log).WithError(err).Error("analysis failed")
		return writeError(c, status, "internal error")
	}
	return writeError(c, status, err.Error())
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	id, _ := c.Locals(logger.RequestIDField).(string)
	return c.Status(status).JSON(errorResponse{Error: msg, RequestID: id})
}
