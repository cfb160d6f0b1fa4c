package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DistroDash/internal/domain/models"
	domrepo "DistroDash/internal/domain/repository"
	"DistroDash/internal/services/events"
	"DistroDash/internal/usecase"
	xhttp "DistroDash/pkg/http"
	xlogger "DistroDash/pkg/logger"
	"DistroDash/pkg/metrics"
)

type stubBars struct {
	bars []models.Bar
	err  error
}

func (s stubBars) GetBars(context.Context, domrepo.BarQuery) ([]models.Bar, error) {
	return s.bars, s.err
}

type stubEvents []models.EventRecord

func (s stubEvents) GetEvents(context.Context, time.Time, time.Time) ([]models.EventRecord, error) {
	return s, nil
}

type stubJobs struct{ got *models.ProbabilityRequest }

func (s *stubJobs) Submit(_ context.Context, req models.ProbabilityRequest) (string, error) {
	s.got = &req
	return "job-1", nil
}

func hourlyBars(start time.Time, n int) []models.Bar {
	out := make([]models.Bar, n)
	for i := range out {
		out[i] = models.Bar{Timestamp: start.Add(time.Duration(i) * time.Hour), Open: 100, High: 100.5, Low: 99.75, Close: 100.25}
	}
	return out
}

func newServer(bars domrepo.BarSource, evts domrepo.EventSource) (*echo.Echo, *AnalysisHandler) {
	l := xlogger.Nop()
	m := metrics.Nop{}
	cfg := usecase.Settings{Symbol: "ZN", Factor: 16, Interval: models.Interval1h, Location: time.UTC, Timeout: 5 * time.Second}
	h := NewAnalysisHandler(l,
		usecase.NewEventReturnsUseCase(bars, evts, events.DefaultCatalog(), m, cfg, l),
		usecase.NewProbabilityUseCase(bars, nil, m, cfg, l),
		usecase.NewPullbackUseCase(bars, evts, m, cfg, l),
		usecase.NewCalendarReturnsUseCase(bars, m, cfg, l),
	)
	e := echo.New()
	return e, h
}

func post(t *testing.T, e *echo.Echo, path, body string) (*httptest.ResponseRecorder, xhttp.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var resp xhttp.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func TestHealth(t *testing.T) {
	e, h := newServer(stubBars{}, stubEvents{})
	h.RegisterRoutes(e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestEventReturnsEndpoint(t *testing.T) {
	ts := time.Date(2024, 5, 14, 8, 30, 0, 0, time.UTC)
	evts := stubEvents{{Timestamp: ts, Name: "Inflation Rate MoM", Tier: 1, Actual: models.Float(0.4), Consensus: models.Float(0.3)}}
	e, h := newServer(stubBars{bars: hourlyBars(ts.Truncate(24*time.Hour), 24)}, evts)
	h.RegisterRoutes(e)

	rec, resp := post(t, e, "/api/events/returns", `{"event":"CPI"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusOK, resp.Status)

	var rep models.EventReturnsReport
	raw, _ := json.Marshal(resp.Data)
	require.NoError(t, json.Unmarshal(raw, &rep))
	require.Len(t, rep.Records, 1)
	assert.InDelta(t, 4, rep.Records[0].Return, 1e-9, "default window covers two hours")
}

func TestEventReturnsValidation(t *testing.T) {
	e, h := newServer(stubBars{}, stubEvents{})
	h.RegisterRoutes(e)

	rec, _ := post(t, e, "/api/events/returns", `{"total_hours":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_REQUIRED")

	rec, _ = post(t, e, "/api/events/returns", `{"event":"CPI","isolate":true,"group":true,"group_event":"PPI"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = post(t, e, "/api/events/returns", `{"event":"Unknown"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = post(t, e, "/api/events/returns", `{"event":"CPI","group":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "group needs a group event")
}

func TestEventReturnsZeroWindowOnlySeesSameTimestamp(t *testing.T) {
	ts := time.Date(2024, 5, 14, 8, 30, 0, 0, time.UTC)
	evts := stubEvents{
		{Timestamp: ts, Name: "Inflation Rate MoM", Tier: 1, Actual: models.Float(0.4), Consensus: models.Float(0.3)},
		{Timestamp: ts.Add(30 * time.Minute), Name: "Fed Chair Powell Speech", Tier: 1},
	}
	e, h := newServer(stubBars{bars: hourlyBars(ts.Truncate(24*time.Hour), 24)}, evts)
	h.RegisterRoutes(e)

	records := func(body string) []models.ReturnRecord {
		rec, resp := post(t, e, "/api/events/returns", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var rep models.EventReturnsReport
		raw, _ := json.Marshal(resp.Data)
		require.NoError(t, json.Unmarshal(raw, &rep))
		return rep.Records
	}

	assert.Len(t, records(`{"event":"CPI","isolate":true,"exclude_tiers":[1],"window_hours":0}`), 1,
		"a speech 30 minutes later is outside a zero window")
	assert.Empty(t, records(`{"event":"CPI","isolate":true,"exclude_tiers":[1]}`),
		"the default one hour window reaches the speech")
}

func TestExplicitZeroIsValidatedNotDefaulted(t *testing.T) {
	e, h := newServer(stubBars{bars: hourlyBars(time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC), 72)}, stubEvents{})
	h.RegisterRoutes(e)

	for path, body := range map[string]string{
		"/api/pullback":          `{"triggers":["2024-05-30T01:00:00Z"],"establish_bps":0}`,
		"/api/probability":       `{"target_bps":4,"target_hours":0}`,
		"/api/month-end/returns": `{"days":0}`,
	} {
		rec, _ := post(t, e, path, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestErrorStatuses(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{nil, http.StatusUnprocessableEntity},
		{fmt.Errorf("bars: %w", domrepo.ErrSourceNotFound), http.StatusNotFound},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		e, h := newServer(stubBars{err: tc.err}, stubEvents{})
		h.RegisterRoutes(e)
		rec, _ := post(t, e, "/api/probability", `{"target_bps":4}`)
		assert.Equal(t, tc.code, rec.Code, "%v", tc.err)
	}
}

func TestProbabilityEndpoint(t *testing.T) {
	e, h := newServer(stubBars{bars: hourlyBars(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), 48)}, stubEvents{})
	h.RegisterRoutes(e)

	rec, resp := post(t, e, "/api/probability", `{"target_bps":4,"target_hours":2,"version":"Up"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rep models.ProbabilityReport
	raw, _ := json.Marshal(resp.Data)
	require.NoError(t, json.Unmarshal(raw, &rep))
	require.Len(t, rep.Results, 1)
	assert.Equal(t, models.VersionUp, rep.Results[0].Version)

	rec, _ = post(t, e, "/api/probability", `{"version":"Sideways"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitProbabilityJob(t *testing.T) {
	e, h := newServer(stubBars{}, stubEvents{})
	h.RegisterRoutes(e)
	rec, _ := post(t, e, "/api/probability/jobs", `{"target_bps":4}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	e, h = newServer(stubBars{}, stubEvents{})
	jobs := &stubJobs{}
	h.SetJobs(jobs)
	h.RegisterRoutes(e)
	rec, resp := post(t, e, "/api/probability/jobs", `{"target_bps":4}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, map[string]interface{}{"id": "job-1"}, resp.Data)
	require.NotNil(t, jobs.got)
	assert.Nil(t, jobs.got.TargetHours)
	assert.Equal(t, 6, jobs.got.Hours(), "an unset horizon takes the default")
}

func TestPullbackValidation(t *testing.T) {
	e, h := newServer(stubBars{}, stubEvents{})
	h.RegisterRoutes(e)
	rec, _ := post(t, e, "/api/pullback", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = post(t, e, "/api/pullback", `{"event":"CPI","filter_initial":true,"lower":5,"upper":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalendarEndpoints(t *testing.T) {
	e, h := newServer(stubBars{bars: hourlyBars(time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC), 72)}, stubEvents{})
	h.RegisterRoutes(e)

	rec, _ := post(t, e, "/api/sessions/returns", `{"sessions":["London 0-7 ET"]}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = post(t, e, "/api/sessions/returns", `{"sessions":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = post(t, e, "/api/month-end/returns", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = post(t, e, "/api/month-end/returns", `{"days":40}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
