package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"
	"unicode/utf8"

	"cyguard-backend/internal/analysis/prompts"
	"cyguard-backend/pkg/api"
)

// Service runs the schema-constrained analysis tools against the collaborator.
type Service struct {
	llm     Collaborator
	fetcher *PolicyFetcher
}

func NewService(llm Collaborator, fetcher *PolicyFetcher) *Service {
	return &Service{llm: llm, fetcher: fetcher}
}

func (s *Service) AssessThreat(ctx context.Context, req api.AssessThreatRequest) (*api.AssessThreatResponse, error) {
	if err := validateMessageText(req.UserInput); err != nil {
		return nil, err
	}
	if err := validateHistory(req.History); err != nil {
		return nil, err
	}

	raw, err := s.generate(ctx, prompts.AssessThreatSystem, prompts.AssessThreatTmpl, map[string]interface{}{
		"UserInput": req.UserInput,
		"History":   req.History,
	}, prompts.AssessThreatFormat)
	if err != nil {
		return nil, err
	}

	res, err := decodeResult[api.AssessThreatResponse](raw)
	if err != nil {
		return nil, err
	}
	if err := checkPresent("response", res.Response); err != nil {
		return nil, err
	}
	if res.ThreatLevel < 0 || res.ThreatLevel > 10 {
		return nil, fmt.Errorf("collaborator returned threatLevel %d outside 0-10", res.ThreatLevel)
	}
	return res, nil
}

func (s *Service) AnalyzeScreenshot(ctx context.Context, req api.AnalyzeScreenshotRequest) (*api.AnalyzeScreenshotResponse, error) {
	if err := validateImageDataURI(req.ScreenshotDataURI); err != nil {
		return nil, err
	}
	if req.Prompt != "" && utf8.RuneCountInString(req.Prompt) > MaxMessageChars {
		return nil, invalidf("prompt exceeds %d characters", MaxMessageChars)
	}

	prompt, err := render(prompts.AnalyzeScreenshotTmpl, map[string]interface{}{"Prompt": req.Prompt})
	if err != nil {
		return nil, err
	}
	format, err := prompts.ToResponseFormatUnion(prompts.AnalyzeScreenshotFormat)
	if err != nil {
		return nil, fmt.Errorf("convert screenshot format: %w", err)
	}

	raw, err := s.llm.GenerateWithImage(ctx, prompts.AnalyzeScreenshotSystem, prompt, req.ScreenshotDataURI, format)
	if err != nil {
		return nil, err
	}

	res, err := decodeResult[api.AnalyzeScreenshotResponse](raw)
	if err != nil {
		return nil, err
	}
	if err := checkPresent("summary", res.Summary); err != nil {
		return nil, err
	}
	if err := checkScore("riskScore", res.RiskScore); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) AnalyzeSecurityLog(ctx context.Context, req api.AnalyzeLogRequest) (*api.AnalyzeLogResponse, error) {
	if n := utf8.RuneCountInString(req.LogContent); n < MinLogChars || n > MaxLogChars {
		return nil, invalidf("log content must be between %d and %d characters", MinLogChars, MaxLogChars)
	}

	raw, err := s.generate(ctx, prompts.AnalyzeSecurityLogSystem, prompts.AnalyzeSecurityLogTmpl, map[string]interface{}{
		"LogContent": req.LogContent,
	}, prompts.AnalyzeSecurityLogFormat)
	if err != nil {
		return nil, err
	}

	res, err := decodeResult[api.AnalyzeLogResponse](raw)
	if err != nil {
		return nil, err
	}
	if err := checkEnum("overallRiskLevel", res.OverallRiskLevel,
		api.SeverityLow, api.SeverityMedium, api.SeverityHigh, api.SeverityCritical, api.SeverityInformational); err != nil {
		return nil, err
	}
	for _, threat := range res.PotentialThreats {
		if err := checkEnum("severity", threat.Severity,
			api.SeverityLow, api.SeverityMedium, api.SeverityHigh, api.SeverityCritical); err != nil {
			return nil, err
		}
	}
	if err := checkPresent("summary", res.Summary); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) AnalyzeWifi(ctx context.Context, req api.AnalyzeWifiRequest) (*api.AnalyzeWifiResponse, error) {
	if len(req.Networks) == 0 {
		return nil, invalidf("at least one network is required")
	}
	for _, network := range req.Networks {
		if network.SSID == "" {
			return nil, invalidf("network ssid cannot be empty")
		}
	}

	raw, err := s.generate(ctx, prompts.AnalyzeWifiSystem, prompts.AnalyzeWifiTmpl, map[string]interface{}{
		"Networks": req.Networks,
	}, prompts.AnalyzeWifiFormat)
	if err != nil {
		return nil, err
	}

	res, err := decodeResult[api.AnalyzeWifiResponse](raw)
	if err != nil {
		return nil, err
	}
	for _, result := range res.Results {
		if err := checkPresent("ssid", result.SSID); err != nil {
			return nil, err
		}
		if err := checkScore("riskScore", result.RiskScore); err != nil {
			return nil, err
		}
	}
	if err := checkPresent("overallSummary", res.OverallSummary); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) AnalyzePolicy(ctx context.Context, req api.AnalyzePolicyRequest) (*api.AnalyzePolicyResponse, error) {
	text := req.PolicyText
	if text == "" {
		if req.PolicyURL == "" {
			return nil, invalidf("either policyText or policyUrl is required")
		}
		fetched, err := s.fetcher.Fetch(ctx, req.PolicyURL)
		if err != nil {
			return nil, err
		}
		text = fetched
	}
	if utf8.RuneCountInString(text) < MinPolicyChars {
		return nil, invalidf("policy text must be at least %d characters", MinPolicyChars)
	}

	raw, err := s.generate(ctx, prompts.AnalyzePolicySystem, prompts.AnalyzePolicyTmpl, map[string]interface{}{
		"PolicyText": text,
		"PolicyURL":  req.PolicyURL,
	}, prompts.AnalyzePolicyFormat)
	if err != nil {
		return nil, err
	}

	res, err := decodeResult[api.AnalyzePolicyResponse](raw)
	if err != nil {
		return nil, err
	}
	if err := checkPresent("overallSummary", res.OverallSummary); err != nil {
		return nil, err
	}
	if err := checkScore("overallScore", res.OverallScore); err != nil {
		return nil, err
	}
	for _, finding := range res.KeyFindings {
		if err := checkEnum("findingType", finding.FindingType,
			api.FindingDataCollection, api.FindingDataSharing, api.FindingDataSecurity,
			api.FindingUserRights, api.FindingDataRetention, api.FindingPolicyChanges, api.FindingOther); err != nil {
			return nil, err
		}
		if err := checkEnum("riskLevel", finding.RiskLevel,
			api.SeverityLow, api.SeverityMedium, api.SeverityHigh); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// ReportPhishing is a one-shot threat assessment over the report content, with
// no conversation history.
func (s *Service) ReportPhishing(ctx context.Context, req api.ReportPhishingRequest) (*api.AssessThreatResponse, error) {
	if n := utf8.RuneCountInString(req.Content); n < MinReportChars || n > MaxReportChars {
		return nil, invalidf("report content must be between %d and %d characters", MinReportChars, MaxReportChars)
	}

	raw, err := s.generate(ctx, prompts.AssessThreatSystem, prompts.AssessThreatTmpl, map[string]interface{}{
		"UserInput": req.Content,
		"History":   []api.ChatTurn(nil),
	}, prompts.AssessThreatFormat)
	if err != nil {
		return nil, err
	}

	res, err := decodeResult[api.AssessThreatResponse](raw)
	if err != nil {
		return nil, err
	}
	if err := checkPresent("response", res.Response); err != nil {
		return nil, err
	}
	if res.ThreatLevel < 0 || res.ThreatLevel > 10 {
		return nil, fmt.Errorf("collaborator returned threatLevel %d outside 0-10", res.ThreatLevel)
	}
	return res, nil
}

func (s *Service) generate(ctx context.Context, system string, tmpl *template.Template, data map[string]interface{}, format map[string]interface{}) (string, error) {
	prompt, err := render(tmpl, data)
	if err != nil {
		return "", err
	}
	formatUnion, err := prompts.ToResponseFormatUnion(format)
	if err != nil {
		return "", fmt.Errorf("convert %s format: %w", tmpl.Name(), err)
	}
	return s.llm.Generate(ctx, system, prompt, formatUnion)
}

func render(tmpl *template.Template, data map[string]interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func decodeResult[T any](raw string) (*T, error) {
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("malformed collaborator response: %w", err)
	}
	return &out, nil
}
