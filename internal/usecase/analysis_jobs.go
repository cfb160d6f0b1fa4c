package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"DistroDash/internal/domain/models"
	domrepo "DistroDash/internal/domain/repository"
	pkghttp "DistroDash/pkg/http"
	pkgkafka "DistroDash/pkg/kafka"
	applogger "DistroDash/pkg/logger"
)

// AnalysisJobHandler runs probability requests received over Kafka and publishes their results.
type AnalysisJobHandler struct {
	requestTopic string
	resultTopic  string
	matrix       *ProbabilityUseCase
	pub          domrepo.Publisher
	l            *applogger.Logger
}

func NewAnalysisJobHandler(requestTopic, resultTopic string, matrix *ProbabilityUseCase, pub domrepo.Publisher, l *applogger.Logger) *AnalysisJobHandler {
	return &AnalysisJobHandler{requestTopic: requestTopic, resultTopic: resultTopic, matrix: matrix, pub: pub, l: l}
}

func (h *AnalysisJobHandler) Topic() string { return h.requestTopic }

// Submit assigns a job id and enqueues the request.
func (h *AnalysisJobHandler) Submit(ctx context.Context, req models.ProbabilityRequest) (string, error) {
	job := models.AnalysisJob{ID: uuid.NewString(), Request: req}
	if err := h.pub.Publish(ctx, h.requestTopic, []byte(job.ID), job); err != nil {
		return "", fmt.Errorf("submit job: %w", err)
	}
	return job.ID, nil
}

// Handle answers every well-formed job with a result message. Requests that can never succeed
// are answered with an error result and acknowledged; other failures are returned so the
// consumer retries and eventually dead-letters the message.
func (h *AnalysisJobHandler) Handle(ctx context.Context, b []byte) error {
	var job models.AnalysisJob
	if err := json.Unmarshal(b, &job); err != nil {
		h.l.Warn("dropping malformed analysis job", applogger.Error(err))
		return nil
	}
	if job.ID == "" {
		job.ID = pkgkafka.JobIDFrom(ctx)
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	if verrs := pkghttp.ValidateStruct(&job.Request); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, v := range verrs {
			msgs[i] = v.Field + ": " + v.Message
		}
		return h.reply(ctx, models.AnalysisJobResult{ID: job.ID, Error: strings.Join(msgs, "; ")})
	}

	report, err := h.matrix.Matrix(ctx, job.Request)
	switch {
	case err == nil:
		return h.reply(ctx, models.AnalysisJobResult{ID: job.ID, Report: report})
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrNoData):
		return h.reply(ctx, models.AnalysisJobResult{ID: job.ID, Error: err.Error()})
	default:
		return err
	}
}

func (h *AnalysisJobHandler) reply(ctx context.Context, res models.AnalysisJobResult) error {
	if err := h.pub.Publish(ctx, h.resultTopic, []byte(res.ID), res); err != nil {
		return fmt.Errorf("publish result %s: %w", res.ID, err)
	}
	h.l.Debug("analysis job answered", applogger.String("job_id", res.ID), applogger.Bool("failed", res.Error != ""))
	return nil
}

var _ pkgkafka.MessageHandler = (*AnalysisJobHandler)(nil)
