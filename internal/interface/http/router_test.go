package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/astrachart/astrachart/internal/domain/chart"
	"github.com/astrachart/astrachart/internal/domain/layout"
	"github.com/astrachart/astrachart/internal/domain/render"
	"github.com/astrachart/astrachart/internal/infra/config"
	apperrors "github.com/astrachart/astrachart/pkg/errors"
	"github.com/astrachart/astrachart/pkg/metrics"
)

const renderBody = `{
	"subjects": [{"id": "alice", "birthDateTime": "1990-03-15T06:30:00Z"}],
	"layerConfig": {"natal": {"kind": "natal", "subjectId": "alice"}}
}`

func TestRouter_RenderSuccess(t *testing.T) {
	result := chart.Result{Settings: chart.DefaultSettings()}
	svc := &stubChartService{
		positionsFn: func(ctx context.Context, req chart.RenderRequest) (chart.Result, metrics.PipelineTiming, error) {
			require.Len(t, req.Subjects, 1)
			require.Equal(t, "alice", req.Subjects[0].ID)
			return result, metrics.PipelineTiming{TotalMillis: 3}, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/render", renderBody, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got struct {
		Result chart.Result           `json:"result"`
		Timing metrics.PipelineTiming `json:"timing"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, result.Settings.ZodiacType, got.Result.Settings.ZodiacType)
	require.Equal(t, int64(3), got.Timing.TotalMillis)
}

func TestRouter_RenderInvalidJSON(t *testing.T) {
	svc := &stubChartService{}

	recorder := performRequest(http.MethodPost, "/api/v1/render", `{"subjects": 12}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
	require.NotEmpty(t, errBody["error"]["correlationId"])
}

func TestRouter_RenderInvalidInput(t *testing.T) {
	svc := &stubChartService{
		positionsFn: func(ctx context.Context, req chart.RenderRequest) (chart.Result, metrics.PipelineTiming, error) {
			return chart.Result{}, metrics.PipelineTiming{}, apperrors.Wrap(apperrors.CodeInvalidInput, "layerConfig must not be empty", nil)
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/render", renderBody, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_input", errBody["error"]["code"])
	require.Contains(t, errBody["error"]["message"], "layerConfig must not be empty")
}

func TestRouter_RenderCalculationFailure(t *testing.T) {
	svc := &stubChartService{
		positionsFn: func(ctx context.Context, req chart.RenderRequest) (chart.Result, metrics.PipelineTiming, error) {
			return chart.Result{}, metrics.PipelineTiming{}, apperrors.Wrap(apperrors.CodeCalculation, "house system \"placidus\" is not supported", nil)
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/render", renderBody, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "calc_error", errBody["error"]["code"])
}

func TestRouter_RenderChartSpec(t *testing.T) {
	svc := &stubChartService{
		chartSpecFn: func(ctx context.Context, req chart.SpecRequest) (chart.SpecResult, error) {
			spec := render.NewChartSpec(800, 800)
			spec.Shapes = append(spec.Shapes, render.Shape{Kind: render.KindCircle, Radius: 360})
			return chart.SpecResult{ChartID: "chart-1", Spec: spec}, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/render/chartspec", renderBody, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got chart.SpecResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, "chart-1", got.ChartID)
	require.Len(t, got.Spec.Shapes, 1)
}

func TestRouter_GetChartNotFound(t *testing.T) {
	svc := &stubChartService{
		archivedSpecFn: func(ctx context.Context, id string) (render.ChartSpec, error) {
			require.Equal(t, "missing", id)
			return render.ChartSpec{}, apperrors.Wrap(apperrors.CodeNotFound, "chart \"missing\" not found", nil)
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/charts/missing", "", newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusNotFound, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "not_found", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["correlationId"])
}

func TestRouter_ListWheels(t *testing.T) {
	svc := &stubChartService{
		wheelsFn: func(ctx context.Context) ([]layout.Definition, error) {
			return []layout.Definition{layout.DefaultDefinition()}, nil
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/wheels", "", newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got struct {
		Wheels []layout.Definition `json:"wheels"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Len(t, got.Wheels, 1)
	require.Equal(t, "standard_natal", got.Wheels[0].Slug)
}

func TestRouter_GetWheel(t *testing.T) {
	svc := &stubChartService{
		wheelFn: func(ctx context.Context, slug string) (layout.Definition, error) {
			require.Equal(t, "standard_natal", slug)
			return layout.DefaultDefinition(), nil
		},
	}

	recorder := performRequest(http.MethodGet, "/api/v1/wheels/standard_natal", "", newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got layout.Definition
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, "standard_natal", got.Slug)
}

func TestRouter_Health(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/health", "", newRouterUnderTest(t, &stubChartService{}))
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestRouter_AuthRejectsMissingCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Enabled = true
	cfg.Auth.JWTSecret = "secret"
	server := NewRouter(cfg, NewHandler(&stubChartService{}, newTestLogger()))

	recorder := performRequest(http.MethodPost, "/api/v1/render", renderBody, server)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	// Health stays open.
	recorder = performRequest(http.MethodGet, "/health", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestRouter_AuthAcceptsSignedBearer(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Enabled = true
	cfg.Auth.JWTSecret = "secret"
	server := NewRouter(cfg, NewHandler(&stubChartService{}, newTestLogger()))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "tester"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/render", bytes.NewBufferString(renderBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
}

func newRouterUnderTest(t *testing.T, svc chart.Service) *http.Server {
	t.Helper()
	return NewRouter(testConfig(), NewHandler(svc, newTestLogger()))
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubChartService struct {
	positionsFn    func(ctx context.Context, req chart.RenderRequest) (chart.Result, metrics.PipelineTiming, error)
	chartSpecFn    func(ctx context.Context, req chart.SpecRequest) (chart.SpecResult, error)
	archivedSpecFn func(ctx context.Context, id string) (render.ChartSpec, error)
	wheelsFn       func(ctx context.Context) ([]layout.Definition, error)
	wheelFn        func(ctx context.Context, slug string) (layout.Definition, error)
}

func (s *stubChartService) Positions(ctx context.Context, req chart.RenderRequest) (chart.Result, metrics.PipelineTiming, error) {
	if s.positionsFn != nil {
		return s.positionsFn(ctx, req)
	}
	return chart.Result{}, metrics.PipelineTiming{}, nil
}

func (s *stubChartService) ChartSpec(ctx context.Context, req chart.SpecRequest) (chart.SpecResult, error) {
	if s.chartSpecFn != nil {
		return s.chartSpecFn(ctx, req)
	}
	return chart.SpecResult{}, nil
}

func (s *stubChartService) ArchivedSpec(ctx context.Context, id string) (render.ChartSpec, error) {
	if s.archivedSpecFn != nil {
		return s.archivedSpecFn(ctx, id)
	}
	return render.ChartSpec{}, nil
}

func (s *stubChartService) Wheels(ctx context.Context) ([]layout.Definition, error) {
	if s.wheelsFn != nil {
		return s.wheelsFn(ctx)
	}
	return nil, nil
}

func (s *stubChartService) Wheel(ctx context.Context, slug string) (layout.Definition, error) {
	if s.wheelFn != nil {
		return s.wheelFn(ctx, slug)
	}
	return layout.Definition{}, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
