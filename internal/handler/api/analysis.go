package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"DistroDash/internal/domain/models"
	domrepo "DistroDash/internal/domain/repository"
	"DistroDash/internal/service/ratelimit"
	"DistroDash/internal/services/events"
	"DistroDash/internal/usecase"
	xhttp "DistroDash/pkg/http"
	xlogger "DistroDash/pkg/logger"
)

// JobSubmitter enqueues a probability request for asynchronous processing.
type JobSubmitter interface {
	Submit(ctx context.Context, req models.ProbabilityRequest) (string, error)
}

// AnalysisHandler exposes the analyses over HTTP.
type AnalysisHandler struct {
	logger   *xlogger.Logger
	events   *usecase.EventReturnsUseCase
	matrix   *usecase.ProbabilityUseCase
	pullback *usecase.PullbackUseCase
	calendar *usecase.CalendarReturnsUseCase
	jobs     JobSubmitter
	limiter  *ratelimit.Limiter
}

func NewAnalysisHandler(
	logger *xlogger.Logger,
	evts *usecase.EventReturnsUseCase,
	matrix *usecase.ProbabilityUseCase,
	pb *usecase.PullbackUseCase,
	calendar *usecase.CalendarReturnsUseCase,
) *AnalysisHandler {
	return &AnalysisHandler{logger: logger, events: evts, matrix: matrix, pullback: pb, calendar: calendar}
}

// SetJobs enables POST /api/probability/jobs.
func (h *AnalysisHandler) SetJobs(j JobSubmitter) { h.jobs = j }

// SetLimiter throttles the analysis routes per client.
func (h *AnalysisHandler) SetLimiter(l *ratelimit.Limiter) { h.limiter = l }

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api", h.limiter.Middleware())
	g.POST("/events/returns", h.EventReturns)
	g.POST("/probability", h.Probability)
	g.POST("/probability/jobs", h.SubmitProbability)
	g.POST("/pullback", h.Pullback)
	g.POST("/sessions/returns", h.SessionReturns)
	g.POST("/month-end/returns", h.MonthEndReturns)
}

func (h *AnalysisHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *AnalysisHandler) EventReturns(c echo.Context) error {
	req := &models.EventReturnsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.events.EventReturns(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "event returns", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) Probability(c echo.Context) error {
	req := &models.ProbabilityRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.matrix.Matrix(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "probability", err)
	}
	if res.Cached {
		c.Response().Header().Set("X-Cache", "HIT")
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) SubmitProbability(c echo.Context) error {
	if h.jobs == nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_UNAVAILABLE", "", "asynchronous jobs are disabled", http.StatusServiceUnavailable))
	}
	req := &models.ProbabilityRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	id, err := h.jobs.Submit(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "submit probability job", err)
	}
	return xhttp.AcceptedResponse(c, map[string]string{"id": id})
}

func (h *AnalysisHandler) Pullback(c echo.Context) error {
	req := &models.PullbackRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.pullback.Pullbacks(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "pullback", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) SessionReturns(c echo.Context) error {
	req := &models.SessionReturnsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.calendar.SessionReturns(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "session returns", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) MonthEndReturns(c echo.Context) error {
	req := &models.MonthEndRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.calendar.MonthEndReturns(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "month-end returns", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) fail(c echo.Context, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", xlogger.String("path", c.Path()), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// toAppError maps usecase and repository errors to HTTP statuses.
func toAppError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest),
		errors.Is(err, events.ErrConflictingModes),
		errors.Is(err, events.ErrUnknownEvent):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, usecase.ErrNoData):
		return xhttp.UnprocessableError(err.Error()).WithError(err)
	case errors.Is(err, domrepo.ErrSourceNotFound):
		return xhttp.NotFoundError(err.Error()).WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.TimeoutError("analysis timed out").WithError(err)
	default:
		return xhttp.InternalError("analysis failed").WithError(err)
	}
}
