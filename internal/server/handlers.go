package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bobmcallan/fairval/internal/common"
	"github.com/bobmcallan/fairval/internal/models"
	"github.com/bobmcallan/fairval/internal/services/analysis"
)

// handleHealth returns server liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

// handleVersion returns build information.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// valuationResponse is the combined payload for the dashboard's valuation
// view.
type valuationResponse struct {
	Snapshot  *models.FinancialSnapshot `json:"snapshot"`
	Valuation *models.Valuation         `json:"valuation"`
	Loading   bool                      `json:"loading"`
	LastError string                    `json:"last_error,omitempty"`
}

// handleValuation returns the current snapshot plus derived valuation.
// ?refresh=true forces an oracle refresh first; a failed refresh with prior
// state present still answers 200 with the stale data and the error string.
func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	force := r.URL.Query().Get("refresh") == "true"
	if force || s.app.AnalysisService.State().Snapshot == nil {
		if err := s.app.AnalysisService.RefreshSnapshot(r.Context(), force); err != nil {
			s.logger.Warn().Err(err).Msg("Refresh failed")
		}
	}

	state := s.app.AnalysisService.State()
	if state.Snapshot == nil {
		WriteError(w, http.StatusServiceUnavailable, analysis.ErrMsgRefreshFailed)
		return
	}

	val, err := s.app.AnalysisService.Valuation(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, valuationResponse{
		Snapshot:  state.Snapshot,
		Valuation: val,
		Loading:   state.Loading,
		LastError: state.LastError,
	})
}

// handleValuationTargets answers the dashboard's multiplier slider: one
// ad-hoc target price for an arbitrary multiplier.
func (s *Server) handleValuationTargets(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	multiplierParam := r.URL.Query().Get("multiplier")
	if multiplierParam == "" {
		WriteError(w, http.StatusBadRequest, "multiplier query parameter is required")
		return
	}
	multiplier, err := strconv.ParseFloat(multiplierParam, 64)
	if err != nil || multiplier <= 0 {
		WriteError(w, http.StatusBadRequest, "multiplier must be a positive number")
		return
	}

	val, err := s.app.AnalysisService.Valuation(r.Context())
	if err != nil {
		WriteError(w, http.StatusServiceUnavailable, analysis.ErrMsgRefreshFailed)
		return
	}

	WriteJSON(w, http.StatusOK, s.app.Engine.TargetFor(val.BookValuePerShareClassB, multiplier))
}

// handleDistribution returns the historical PBR distribution buckets.
func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	state := s.app.AnalysisService.State()
	if state.Distribution == nil {
		WriteError(w, http.StatusNotFound, "no distribution data available; refresh the valuation first")
		return
	}

	WriteJSON(w, http.StatusOK, state.Distribution)
}

// handleDistributionChart renders the distribution bar chart PNG.
func (s *Server) handleDistributionChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	state := s.app.AnalysisService.State()
	if state.Distribution == nil {
		WriteError(w, http.StatusNotFound, "no distribution data available; refresh the valuation first")
		return
	}

	png, err := s.app.ReportService.RenderDistributionChart(state.Distribution)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WritePNG(w, png)
}

// backtestRequest is the POST /api/backtest body.
type backtestRequest struct {
	InitialCapital float64 `json:"initial_capital"`
}

// backtestResponse bundles the result with chart-ready rows.
type backtestResponse struct {
	Result    *models.BacktestResult `json:"result"`
	ChartRows []models.ChartRow      `json:"chart_rows"`
	LastError string                 `json:"last_error,omitempty"`
}

// handleBacktest runs a backtest. Responds 200 even when the oracle failed
// and the static fallback was substituted - the fallback is flagged in the
// payload.
func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req backtestRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.InitialCapital <= 0 {
		WriteError(w, http.StatusBadRequest, "initial_capital must be positive")
		return
	}

	result, err := s.app.AnalysisService.RunBacktest(r.Context(), req.InitialCapital)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	state := s.app.AnalysisService.State()
	WriteJSON(w, http.StatusOK, backtestResponse{
		Result:    result,
		ChartRows: analysis.ProjectForChart(result),
		LastError: state.LastError,
	})
}

// handleBacktestChart renders the backtest equity-curve chart PNG.
func (s *Server) handleBacktestChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	state := s.app.AnalysisService.State()
	if state.Backtest == nil {
		WriteError(w, http.StatusNotFound, "no backtest has been run yet")
		return
	}

	png, err := s.app.ReportService.RenderBacktestChart(state.Backtest)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WritePNG(w, png)
}
