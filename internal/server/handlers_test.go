package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fairval/internal/app"
	"github.com/bobmcallan/fairval/internal/common"
	"github.com/bobmcallan/fairval/internal/models"
	"github.com/bobmcallan/fairval/internal/services/analysis"
	"github.com/bobmcallan/fairval/internal/services/report"
	"github.com/bobmcallan/fairval/internal/valuation"
)

// mockOracle is a scriptable ResearchClient for handler tests.
type mockOracle struct {
	snapshot    *models.FinancialSnapshot
	dist        *models.PbrDistribution
	backtest    *models.BacktestResult
	snapshotErr error
	distErr     error
	backtestErr error
}

func (m *mockOracle) GetFinancialSnapshot(_ context.Context) (*models.FinancialSnapshot, error) {
	if m.snapshotErr != nil {
		return nil, m.snapshotErr
	}
	return m.snapshot, nil
}

func (m *mockOracle) GetPbrDistribution(_ context.Context) (*models.PbrDistribution, error) {
	if m.distErr != nil {
		return nil, m.distErr
	}
	return m.dist, nil
}

func (m *mockOracle) GetBacktest(_ context.Context, _ models.BacktestParams) (*models.BacktestResult, error) {
	if m.backtestErr != nil {
		return nil, m.backtestErr
	}
	return m.backtest, nil
}

func newTestServer(t *testing.T, oracle *mockOracle) *Server {
	t.Helper()

	logger := common.NewSilentLogger()
	config := common.NewDefaultConfig()

	engine, err := valuation.NewEngine(config.Valuation.Multipliers, valuation.ZoneConfig{
		BuyBelow:  config.Valuation.BuyBelow,
		SellAbove: config.Valuation.SellAbove,
	})
	require.NoError(t, err)

	defaults := models.BacktestParams{
		BuyThreshold:   config.Backtest.BuyThreshold,
		SellThreshold:  config.Backtest.SellThreshold,
		AlternateAsset: config.Backtest.AlternateAsset,
	}

	a := &app.App{
		Config:          config,
		Logger:          logger,
		ResearchClient:  oracle,
		Engine:          engine,
		AnalysisService: analysis.NewService(oracle, nil, engine, defaults, common.DefaultFreshnessTTL(), logger),
		ReportService:   report.NewService(logger),
		StartupTime:     time.Now(),
	}

	return NewServer(a)
}

func healthyOracle() *mockOracle {
	return &mockOracle{
		snapshot: &models.FinancialSnapshot{
			TotalEquityMillions:         649368,
			TotalSharesClassAEquivalent: 1438223,
			CurrentPrice:                470,
			AsOf:                        "2025-06-30",
			FetchedAt:                   time.Now(),
		},
		dist:     models.FallbackDistribution(),
		backtest: models.FallbackBacktest(10000),
	}
}

func doRequest(t *testing.T, s *Server, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t, healthyOracle())

	rec := doRequest(t, s, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = doRequest(t, s, http.MethodGet, "/api/version", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestValuation_PopulatesOnFirstCall(t *testing.T) {
	s := newTestServer(t, healthyOracle())

	rec := doRequest(t, s, http.MethodGet, "/api/valuation", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Snapshot  *models.FinancialSnapshot `json:"snapshot"`
		Valuation *models.Valuation         `json:"valuation"`
		Loading   bool                      `json:"loading"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.NotNil(t, resp.Snapshot)
	require.NotNil(t, resp.Valuation)
	assert.InDelta(t, 1.5614, resp.Valuation.CurrentPBR, 0.0005)
	assert.Equal(t, models.ZoneRotate, resp.Valuation.Zone)
	assert.Len(t, resp.Valuation.Targets, 9)
	assert.False(t, resp.Loading)
}

func TestValuation_UnavailableWhenOracleDownAndNoState(t *testing.T) {
	s := newTestServer(t, &mockOracle{snapshotErr: fmt.Errorf("down"), distErr: fmt.Errorf("down")})

	rec := doRequest(t, s, http.MethodGet, "/api/valuation", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Could not fetch")
}

func TestValuation_StaleDataServedAfterFailedRefresh(t *testing.T) {
	oracle := healthyOracle()
	s := newTestServer(t, oracle)

	// Populate, then break the oracle.
	rec := doRequest(t, s, http.MethodGet, "/api/valuation", "")
	require.Equal(t, http.StatusOK, rec.Code)

	oracle.snapshotErr = fmt.Errorf("down")
	rec = doRequest(t, s, http.MethodGet, "/api/valuation?refresh=true", "")
	require.Equal(t, http.StatusOK, rec.Code, "stale data still answers 200")
	assert.Contains(t, rec.Body.String(), "last_error")
}

func TestValuationTargets(t *testing.T) {
	s := newTestServer(t, healthyOracle())

	// Populate state first
	doRequest(t, s, http.MethodGet, "/api/valuation", "")

	rec := doRequest(t, s, http.MethodGet, "/api/valuation/targets?multiplier=1.5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var target models.PriceTarget
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &target))
	assert.Equal(t, 1.5, target.Multiplier)
	assert.InDelta(t, 451.51, target.ImpliedPrice, 0.02)

	rec = doRequest(t, s, http.MethodGet, "/api/valuation/targets", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/valuation/targets?multiplier=-2", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDistributionEndpoints(t *testing.T) {
	s := newTestServer(t, healthyOracle())

	rec := doRequest(t, s, http.MethodGet, "/api/distribution", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "nothing fetched yet")

	doRequest(t, s, http.MethodGet, "/api/valuation", "")

	rec = doRequest(t, s, http.MethodGet, "/api/distribution", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "range_label")

	rec = doRequest(t, s, http.MethodGet, "/api/distribution/chart.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}

func TestBacktest(t *testing.T) {
	s := newTestServer(t, healthyOracle())

	rec := doRequest(t, s, http.MethodPost, "/api/backtest", `{"initial_capital": 10000}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Result    *models.BacktestResult `json:"result"`
		ChartRows []models.ChartRow      `json:"chart_rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result)
	assert.Len(t, resp.ChartRows, len(resp.Result.TimeLabels))
	for _, row := range resp.ChartRows {
		assert.Len(t, row.Values, len(resp.Result.Strategies))
	}
}

func TestBacktest_FallbackStillAnswers200(t *testing.T) {
	s := newTestServer(t, &mockOracle{backtestErr: fmt.Errorf("down")})

	rec := doRequest(t, s, http.MethodPost, "/api/backtest", `{"initial_capital": 10000}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Result    *models.BacktestResult `json:"result"`
		LastError string                 `json:"last_error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.Fallback)
	assert.NotEmpty(t, resp.LastError)
	assert.Equal(t, 10000.0, resp.Result.Strategies[0].Values[0])
}

func TestBacktest_Validation(t *testing.T) {
	s := newTestServer(t, healthyOracle())

	rec := doRequest(t, s, http.MethodPost, "/api/backtest", `{"initial_capital": 0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/backtest", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/backtest", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestBacktestChart(t *testing.T) {
	s := newTestServer(t, healthyOracle())

	rec := doRequest(t, s, http.MethodGet, "/api/backtest/chart.png", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "no backtest has run yet")

	doRequest(t, s, http.MethodPost, "/api/backtest", `{"initial_capital": 10000}`)

	rec = doRequest(t, s, http.MethodGet, "/api/backtest/chart.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
}

func TestCORSAndCorrelationID(t *testing.T) {
	s := newTestServer(t, healthyOracle())

	rec := doRequest(t, s, http.MethodOptions, "/api/health", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = doRequest(t, s, http.MethodGet, "/api/health", "")
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "my-trace")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "my-trace", w.Header().Get("X-Correlation-ID"))
}
