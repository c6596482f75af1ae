package rest

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	app "face-shape-bot/internal/application"
	"face-shape-bot/internal/container"
	"face-shape-bot/internal/domain/entity"
	"face-shape-bot/internal/infrastructure/imageio"
	"face-shape-bot/internal/infrastructure/storage"
	"face-shape-bot/internal/infrastructure/vision"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	log := logrus.NewEntry(l)

	router := vision.NewRouter(vision.RouterConfig{Mode: entity.ModeAuto}, nil, nil, log)
	c := container.New(storage.NewMemoryUserRepository(), router, imageio.NewAnnotator(), app.AnalysisConfig{}, log)
	return NewServer(c.AnalysisService, cfg, log)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 120, 160))
	for y := 0; y < 160; y++ {
		for x := 0; x < 120; x++ {
			img.Set(x, y, color.RGBA{R: 210, G: 150, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartPhoto(t *testing.T, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("photo", "face.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, jsoniter.Unmarshal(data, v), string(data))
}

func TestAnalyze_Multipart(t *testing.T) {
	s := newTestServer(t, Config{})
	body, contentType := multipartPhoto(t, pngBytes(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze?annotate=true", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(RequestIDHeader, "req-1")

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "req-1", resp.Header.Get(RequestIDHeader))

	var out analyzeResponse
	decode(t, resp, &out)
	require.NotNil(t, out.Result)
	require.NotEmpty(t, out.Result.ID)
	require.Equal(t, entity.BackendHeuristic, out.Result.Backend)
	require.Len(t, out.Result.Keypoints, entity.KeypointCount)
	require.NotEmpty(t, out.Annotated)
}

func TestAnalyze_RawBody(t *testing.T) {
	s := newTestServer(t, Config{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze?mode=heuristic", bytes.NewReader(pngBytes(t)))
	req.Header.Set("Content-Type", "image/png")

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	var out analyzeResponse
	decode(t, resp, &out)
	require.Empty(t, out.Annotated)
}

func TestAnalyze_Errors(t *testing.T) {
	s := newTestServer(t, Config{})

	cases := []struct {
		name   string
		target string
		body   []byte
		status int
	}{
		{"empty body", "/api/v1/analyze", nil, http.StatusBadRequest},
		{"not an image", "/api/v1/analyze", []byte("hello"), http.StatusBadRequest},
		{"unknown mode", "/api/v1/analyze?mode=gpu", []byte("hello"), http.StatusBadRequest},
		{"precise disabled", "/api/v1/analyze?mode=precise", pngBytes(t), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tc.target, bytes.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/octet-stream")

			resp, err := s.App().Test(req, -1)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			var out errorResponse
			decode(t, resp, &out)
			require.NotEmpty(t, out.Error)
			require.NotEmpty(t, out.RequestID)
		})
	}
}

func TestAnalyze_RateLimit(t *testing.T) {
	s := newTestServer(t, Config{RateLimit: 0.001, Burst: 1})

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader([]byte("x")))
		resp, err := s.App().Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, http.StatusBadRequest, send())
	require.Equal(t, http.StatusTooManyRequests, send())
}

func TestShapes(t *testing.T) {
	s := newTestServer(t, Config{})

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/api/v1/shapes", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var shapes []entity.ShapeTemplate
	decode(t, resp, &shapes)
	require.Len(t, shapes, 6)
	require.Equal(t, entity.ShapeOval, shapes[0].ID)
	require.Equal(t, entity.ShapeTriangle, shapes[5].ID)

	resp, err = s.App().Test(httptest.NewRequest(http.MethodGet, "/api/v1/shapes/round", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var round entity.ShapeTemplate
	decode(t, resp, &round)
	require.Equal(t, entity.Range{Min: 0.9, Max: 1.1}, round.Ranges[entity.RatioWidthToHeight])

	resp, err = s.App().Test(httptest.NewRequest(http.MethodGet, "/api/v1/shapes/egg", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthAndReset(t *testing.T) {
	s := newTestServer(t, Config{})

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health healthResponse
	decode(t, resp, &health)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "disabled", health.Backend.State)

	// точный бэкенд отключён, сбрасывать нечего
	resp, err = s.App().Test(httptest.NewRequest(http.MethodPost, "/api/v1/backend/reset", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = s.App().Test(httptest.NewRequest(http.MethodGet, "/nope", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, http.StatusUnprocessableEntity, statusFor(entity.ErrNoFaceDetected))
	require.Equal(t, http.StatusUnprocessableEntity, statusFor(&entity.GeometryError{Measure: "face_height"}))
	require.Equal(t, http.StatusServiceUnavailable, statusFor(entity.ErrBackendUnavailable))
	require.Equal(t, http.StatusBadRequest, statusFor(entity.ErrInvalidImage))
	require.Equal(t, http.StatusNotFound, statusFor(entity.ErrShapeNotFound))
	require.Equal(t, http.StatusInternalServerError, statusFor(io.EOF))
	require.Equal(t, http.StatusInternalServerError, statusFor(fmt.Errorf("measure: %w", entity.ErrInvalidKeypoints)))
}
