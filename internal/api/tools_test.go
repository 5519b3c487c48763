package api

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyguard-backend/pkg/api"
)

func TestAssessThreatEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.llm.response = `{
		"response": "Classic tech support scam.",
		"threatLevel": 9,
		"actionSteps": ["Hang up immediately"],
		"privacy_assessment": "They may already have your phone number."
	}`

	var res api.AssessThreatResponse
	code := env.do(http.MethodPost, "/tools/assess-threat", api.AssessThreatRequest{
		UserInput: "Someone called claiming to be Microsoft support",
		History: []api.ChatTurn{
			{Role: api.RoleUser, Content: "hi"},
			{Role: api.RoleModel, Content: "Hello!"},
		},
	}, &res)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 9, res.ThreatLevel)
	assert.Equal(t, "Classic tech support scam.", res.Response)

	code = env.do(http.MethodPost, "/tools/assess-threat", api.AssessThreatRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAssessThreatEndpointBadGateway(t *testing.T) {
	env := newTestEnv(t)
	env.llm.response = "not json"

	code := env.do(http.MethodPost, "/tools/assess-threat",
		api.AssessThreatRequest{UserInput: "hello"}, nil)
	assert.Equal(t, http.StatusBadGateway, code)
}

func TestAnalyzeScreenshotEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.llm.response = `{
		"summary": "Fake bank login page.",
		"riskScore": 9.5,
		"redFlags": ["Misspelled domain"],
		"recommendation": "Close the page."
	}`

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("imagebytes"))
	var res api.AnalyzeScreenshotResponse
	code := env.do(http.MethodPost, "/tools/analyze-screenshot", api.AnalyzeScreenshotRequest{
		Prompt:            "is this real?",
		ScreenshotDataURI: uri,
	}, &res)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 9.5, res.RiskScore)

	code = env.do(http.MethodPost, "/tools/analyze-screenshot", api.AnalyzeScreenshotRequest{
		ScreenshotDataURI: "not a data uri",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAnalyzeLogEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.llm.response = `{
		"summary": "Brute force attack from a single source.",
		"potentialThreats": [
			{"description": "Brute force ssh attempts", "severity": "high", "recommendation": "Block the IP"}
		],
		"overallRiskLevel": "high",
		"keyObservations": ["One source IP"],
		"actionableRecommendations": ["Enable fail2ban"]
	}`

	var res api.AnalyzeLogResponse
	code := env.do(http.MethodPost, "/tools/analyze-log", api.AnalyzeLogRequest{
		LogContent: strings.Repeat("sshd: Failed password\n", 5),
	}, &res)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, api.SeverityHigh, res.OverallRiskLevel)

	code = env.do(http.MethodPost, "/tools/analyze-log", api.AnalyzeLogRequest{LogContent: "short"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAnalyzeWifiEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.llm.response = `{
		"results": [{"ssid": "CoffeeShop_Free", "riskScore": 7, "analysis": "Open network", "recommendation": "Use a VPN"}],
		"overallSummary": "One risky network."
	}`

	var res api.AnalyzeWifiResponse
	code := env.do(http.MethodPost, "/tools/analyze-wifi", api.AnalyzeWifiRequest{
		Networks: []api.WifiNetwork{{SSID: "CoffeeShop_Free", IsOpen: true}},
	}, &res)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "CoffeeShop_Free", res.Results[0].SSID)

	code = env.do(http.MethodPost, "/tools/analyze-wifi", api.AnalyzeWifiRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAnalyzePolicyEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.llm.response = `{
		"overallSummary": "Broad data collection.",
		"overallScore": 4,
		"keyFindings": [{"findingType": "DataSharing", "description": "Shares with partners", "riskLevel": "high"}],
		"redFlags": ["Sells data"],
		"positivePoints": []
	}`

	var res api.AnalyzePolicyResponse
	code := env.do(http.MethodPost, "/tools/analyze-policy", api.AnalyzePolicyRequest{
		PolicyText: strings.Repeat("We collect personal data and share it. ", 5),
	}, &res)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 4.0, res.OverallScore)
	require.Len(t, res.KeyFindings, 1)
	assert.Equal(t, api.FindingDataSharing, res.KeyFindings[0].FindingType)

	code = env.do(http.MethodPost, "/tools/analyze-policy", api.AnalyzePolicyRequest{PolicyText: "too short"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestReportPhishingEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.llm.response = `{"response": "Confirmed phishing.", "threatLevel": 8, "actionSteps": ["Report it"]}`

	var res api.AssessThreatResponse
	code := env.do(http.MethodPost, "/tools/report-phishing", api.ReportPhishingRequest{
		Content: "Email from amaz0n-support.example asking me to confirm my card number.",
	}, &res)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 8, res.ThreatLevel)

	code = env.do(http.MethodPost, "/tools/report-phishing", api.ReportPhishingRequest{Content: "short"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCheckBreachEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var found api.CheckBreachResponse
	code := env.do(http.MethodPost, "/tools/check-breach", api.CheckBreachRequest{Email: "test@example.com"}, &found)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, found.Found)
	assert.Len(t, found.Breaches, 2)

	var clean api.CheckBreachResponse
	code = env.do(http.MethodPost, "/tools/check-breach", api.CheckBreachRequest{Email: "nobody@example.com"}, &clean)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, clean.Found)
	assert.Empty(t, clean.Breaches)

	code = env.do(http.MethodPost, "/tools/check-breach", api.CheckBreachRequest{Email: "not-an-email"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetIntelAlertsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var all api.GetIntelAlertsResponse
	code := env.do(http.MethodGet, "/intel/alerts", nil, &all)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, all.Alerts, 5)

	filter := url.QueryEscape(`severity = "critical"`)
	var filtered api.GetIntelAlertsResponse
	code = env.do(http.MethodGet, "/intel/alerts?filter="+filter, nil, &filtered)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, filtered.Alerts, 1)
	assert.Contains(t, filtered.Alerts[0].Title, "Apache Struts")

	code = env.do(http.MethodGet, "/intel/alerts?filter="+url.QueryEscape(`bogus > "1"`), nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
