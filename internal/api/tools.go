package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cyguard-backend/internal/analysis"
	"cyguard-backend/internal/breach"
	"cyguard-backend/internal/intel"
	"cyguard-backend/pkg/api"
)

// ToolsService exposes the one-shot analysis tools. Each endpoint validates
// input, runs the tool, and returns its structured result verbatim.
type ToolsService struct {
	analyzer *analysis.Service
	breaches *breach.Store
}

func NewToolsService(analyzer *analysis.Service, breaches *breach.Store) *ToolsService {
	return &ToolsService{analyzer: analyzer, breaches: breaches}
}

func (s *ToolsService) AddRoutes(r chi.Router) {
	r.Route("/tools", func(r chi.Router) {
		r.Post("/assess-threat", RestHandler(s.AssessThreat))
		r.Post("/analyze-screenshot", RestHandler(s.AnalyzeScreenshot))
		r.Post("/analyze-log", RestHandler(s.AnalyzeLog))
		r.Post("/analyze-wifi", RestHandler(s.AnalyzeWifi))
		r.Post("/analyze-policy", RestHandler(s.AnalyzePolicy))
		r.Post("/check-breach", RestHandler(s.CheckBreach))
		r.Post("/report-phishing", RestHandler(s.ReportPhishing))
	})
}

// toolError maps tool failures onto status codes: bad input is the caller's
// fault, anything else means the collaborator let us down.
func toolError(err error) error {
	if errors.Is(err, analysis.ErrInvalidInput) {
		return CodedError(http.StatusBadRequest, err)
	}
	return CodedErrorf(http.StatusBadGateway, "analysis failed: %v", err)
}

func (s *ToolsService) AssessThreat(r *http.Request) (any, error) {
	req, err := ParseRequest[api.AssessThreatRequest](r)
	if err != nil {
		return nil, err
	}

	res, err := s.analyzer.AssessThreat(r.Context(), req)
	if err != nil {
		return nil, toolError(err)
	}
	return res, nil
}

func (s *ToolsService) AnalyzeScreenshot(r *http.Request) (any, error) {
	req, err := ParseRequest[api.AnalyzeScreenshotRequest](r)
	if err != nil {
		return nil, err
	}

	res, err := s.analyzer.AnalyzeScreenshot(r.Context(), req)
	if err != nil {
		return nil, toolError(err)
	}
	return res, nil
}

func (s *ToolsService) AnalyzeLog(r *http.Request) (any, error) {
	req, err := ParseRequest[api.AnalyzeLogRequest](r)
	if err != nil {
		return nil, err
	}

	res, err := s.analyzer.AnalyzeSecurityLog(r.Context(), req)
	if err != nil {
		return nil, toolError(err)
	}
	return res, nil
}

func (s *ToolsService) AnalyzeWifi(r *http.Request) (any, error) {
	req, err := ParseRequest[api.AnalyzeWifiRequest](r)
	if err != nil {
		return nil, err
	}

	res, err := s.analyzer.AnalyzeWifi(r.Context(), req)
	if err != nil {
		return nil, toolError(err)
	}
	return res, nil
}

func (s *ToolsService) AnalyzePolicy(r *http.Request) (any, error) {
	req, err := ParseRequest[api.AnalyzePolicyRequest](r)
	if err != nil {
		return nil, err
	}

	res, err := s.analyzer.AnalyzePolicy(r.Context(), req)
	if err != nil {
		return nil, toolError(err)
	}
	return res, nil
}

func (s *ToolsService) CheckBreach(r *http.Request) (any, error) {
	req, err := ParseRequest[api.CheckBreachRequest](r)
	if err != nil {
		return nil, err
	}

	res, err := s.breaches.Check(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, breach.ErrInvalidEmail) {
			return nil, CodedError(http.StatusBadRequest, err)
		}
		return nil, err
	}
	return res, nil
}

func (s *ToolsService) ReportPhishing(r *http.Request) (any, error) {
	req, err := ParseRequest[api.ReportPhishingRequest](r)
	if err != nil {
		return nil, err
	}

	res, err := s.analyzer.ReportPhishing(r.Context(), req)
	if err != nil {
		return nil, toolError(err)
	}
	return res, nil
}

// IntelService serves the threat intelligence feed.
type IntelService struct {
	feed *intel.Service
}

func NewIntelService(feed *intel.Service) *IntelService {
	return &IntelService{feed: feed}
}

func (s *IntelService) AddRoutes(r chi.Router) {
	r.Route("/intel", func(r chi.Router) {
		r.Get("/alerts", RestHandler(s.GetAlerts))
	})
}

type getAlertsParams struct {
	Filter string `schema:"filter"`
}

func (s *IntelService) GetAlerts(r *http.Request) (any, error) {
	params, err := ParseRequestQueryParams[getAlertsParams](r)
	if err != nil {
		return nil, err
	}

	res, err := s.feed.List(r.Context(), params.Filter)
	if err != nil {
		if errors.Is(err, intel.ErrInvalidFilter) {
			return nil, CodedError(http.StatusBadRequest, err)
		}
		return nil, err
	}
	return res, nil
}
