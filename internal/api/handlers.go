package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"payrollpie/internal/chart"
	"payrollpie/internal/models"
	"payrollpie/internal/shared/apperror"
	"payrollpie/internal/shared/response"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Source is the read side of the loaded payroll table.
type Source interface {
	Aggregate(year int) models.Summary
	DistinctYears() []int
}

type Options struct {
	Chart          chart.Options
	LabelFontSize  int
	TooltipFadeIn  int // ms
	TooltipFadeOut int // ms
}

// Handler serves the chart. Until SetData or SetError is called every data
// route answers 503.
type Handler struct {
	mu      sync.RWMutex
	opts    Options
	logger  *zap.Logger
	source  Source
	surface *chart.Surface
	stats   models.LoadStats
	loadErr error
}

func NewHandler(opts Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Chart.Layout == (chart.Layout{}) {
		opts.Chart.Layout = chart.DefaultLayout()
	}
	return &Handler{opts: opts, logger: logger}
}

// SetData publishes a loaded table and renders the initial year.
func (h *Handler) SetData(src Source, stats models.LoadStats) {
	surface := chart.NewSurface(src, src.DistinctYears(), h.opts.Chart)
	h.mu.Lock()
	h.source = src
	h.surface = surface
	h.stats = stats
	h.loadErr = nil
	h.mu.Unlock()
	d := surface.Domain()
	h.logger.Info("chart ready", zap.Int("min_year", d.Min), zap.Int("max_year", d.Max), zap.Int("selected", d.Selected))
}

// SetError records a failed load. No chart is built and there is no retry.
func (h *Handler) SetError(err error) {
	h.mu.Lock()
	h.loadErr = err
	h.mu.Unlock()
}

func (h *Handler) ready() (Source, *chart.Surface, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.loadErr != nil {
		return nil, nil, apperror.Unavailable(h.loadErr)
	}
	if h.surface == nil {
		return nil, nil, apperror.ErrDataLoading
	}
	return h.source, h.surface, nil
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.GetPage)
	e.GET("/healthz", h.GetHealth)

	api := e.Group("/api")
	api.GET("/years", h.GetYears)
	api.GET("/aggregates", h.GetAggregates)
	api.GET("/chart", h.GetChart)
	api.GET("/chart.svg", h.GetChartImage)
	api.PUT("/year", h.PutYear)
}

// --- HANDLERS ---

func parseYearParam(c echo.Context, name string) (int, bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, false, nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, apperror.InvalidInput(err, "year must be an integer")
	}
	return y, true, nil
}

func (h *Handler) GetHealth(c echo.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	switch {
	case h.loadErr != nil:
		return response.Error(c, http.StatusServiceUnavailable, apperror.CodeServiceUnavailable,
			"failed", map[string]any{"status": "failed", "error": h.loadErr.Error()})
	case h.surface == nil:
		return response.Error(c, http.StatusServiceUnavailable, apperror.CodeServiceUnavailable,
			"loading", map[string]any{"status": "loading"})
	}
	return response.Success(c, http.StatusOK, map[string]any{"status": "ready", "stats": h.stats})
}

func (h *Handler) GetYears(c echo.Context) error {
	_, surface, err := h.ready()
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, surface.Domain())
}

// GetAggregates is the pure aggregate for any year, in or out of slider range.
func (h *Handler) GetAggregates(c echo.Context) error {
	src, _, err := h.ready()
	if err != nil {
		return err
	}
	year, ok, err := parseYearParam(c, "year")
	if err != nil {
		return err
	}
	if !ok {
		return apperror.InvalidInput(errors.New("missing year"), "year query parameter is required")
	}
	return response.Success(c, http.StatusOK, src.Aggregate(year))
}

func (h *Handler) GetChart(c echo.Context) error {
	_, surface, err := h.ready()
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, surface.State())
}

type selectYearRequest struct {
	Year *int `json:"year"`
}

type selectYearResponse struct {
	Transition models.Transition `json:"transition"`
	Chart      models.ChartState `json:"chart"`
}

func (h *Handler) PutYear(c echo.Context) error {
	_, surface, err := h.ready()
	if err != nil {
		return err
	}
	var req selectYearRequest
	if err := c.Bind(&req); err != nil {
		return apperror.InvalidInput(err, "invalid request body")
	}
	if req.Year == nil {
		return apperror.InvalidInput(errors.New("missing year"), "year is required")
	}
	tr, err := surface.Select(*req.Year)
	if errors.Is(err, chart.ErrYearOutOfRange) {
		return apperror.InvalidInput(err, "year is outside the slider range")
	}
	if err != nil {
		return err
	}
	h.logger.Debug("year selected", zap.Int("year", tr.Year), zap.Uint64("generation", tr.Generation), zap.Int("slices", len(tr.Slices)))
	return response.Success(c, http.StatusOK, selectYearResponse{Transition: tr, Chart: surface.State()})
}

// GetChartImage renders a static pie; year defaults to the selected one.
func (h *Handler) GetChartImage(c echo.Context) error {
	src, surface, err := h.ready()
	if err != nil {
		return err
	}
	year, ok, err := parseYearParam(c, "year")
	if err != nil {
		return err
	}
	if !ok {
		year = surface.Domain().Selected
	}
	format, err := chart.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return apperror.InvalidInput(err, "format must be svg or png")
	}

	var buf bytes.Buffer
	if err := chart.RenderImage(&buf, src.Aggregate(year), surface.Colors(), surface.Layout(), format); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}

// ErrorHandler writes every error in the response envelope.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var ae *apperror.AppError
		var he *echo.HTTPError
		if !errors.As(err, &ae) && errors.As(err, &he) {
			base := apperror.ErrInternal
			switch {
			case he.Code == http.StatusNotFound:
				base = apperror.ErrNotFound
			case he.Code < http.StatusInternalServerError:
				base = apperror.ErrInvalidInput
			}
			_ = response.Error(c, he.Code, base.Code, base.Message, http.StatusText(he.Code))
			return
		}

		appErr := apperror.From(err)
		if appErr.HTTPStatus >= http.StatusInternalServerError && appErr.HTTPStatus != http.StatusServiceUnavailable {
			logger.Error("request failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		}
		var details any
		if appErr.Err != nil {
			details = appErr.Err.Error()
		}
		_ = response.Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, details)
	}
}
