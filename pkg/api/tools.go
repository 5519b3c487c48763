package api

// Tool input/output schemas. Field names are the wire contract shared with the
// prompt templates; changing them breaks interoperability with the hosted model.

const (
	RoleUser  = "user"
	RoleModel = "model"
)

const (
	SeverityLow           = "low"
	SeverityMedium        = "medium"
	SeverityHigh          = "high"
	SeverityCritical      = "critical"
	SeverityInformational = "informational"
)

type ChatTurn struct {
	Role    string `json:"role"` // "user" or "model"
	Content string `json:"content"`
}

type AssessThreatRequest struct {
	UserInput string     `json:"user_input"`
	History   []ChatTurn `json:"history,omitempty"`
}

type AssessThreatResponse struct {
	Response          string   `json:"response"`
	ThreatLevel       int      `json:"threatLevel"` // 0 (safe) to 10 (extremely risky)
	ActionSteps       []string `json:"actionSteps"`
	PrivacyAssessment string   `json:"privacy_assessment"`
}

type AnalyzeScreenshotRequest struct {
	Prompt            string `json:"prompt,omitempty"`
	ScreenshotDataURI string `json:"screenshotDataUri"`
}

type AnalyzeScreenshotResponse struct {
	Summary        string   `json:"summary"`
	RiskScore      float64  `json:"riskScore"` // 0 (very safe) to 10 (extremely dangerous)
	RedFlags       []string `json:"redFlags"`
	Recommendation string   `json:"recommendation"`
}

type AnalyzeLogRequest struct {
	LogContent string `json:"logContent"`
}

type PotentialThreat struct {
	Description    string   `json:"description"`
	Severity       string   `json:"severity"` // low|medium|high|critical
	Recommendation string   `json:"recommendation"`
	Evidence       []string `json:"evidence"`
}

type AnalyzeLogResponse struct {
	Summary                   string            `json:"summary"`
	PotentialThreats          []PotentialThreat `json:"potentialThreats"`
	OverallRiskLevel          string            `json:"overallRiskLevel"` // low|medium|high|critical|informational
	KeyObservations           []string          `json:"keyObservations"`
	ActionableRecommendations []string          `json:"actionableRecommendations"`
}

type WifiNetwork struct {
	SSID   string `json:"ssid"`
	IsOpen bool   `json:"isOpen"`
}

type AnalyzeWifiRequest struct {
	Networks []WifiNetwork `json:"networks"`
}

type WifiNetworkResult struct {
	SSID           string  `json:"ssid"`
	RiskScore      float64 `json:"riskScore"`
	Analysis       string  `json:"analysis"`
	Recommendation string  `json:"recommendation"`
}

type AnalyzeWifiResponse struct {
	Results        []WifiNetworkResult `json:"results"`
	OverallSummary string              `json:"overallSummary"`
}

const (
	FindingDataCollection = "DataCollection"
	FindingDataSharing    = "DataSharing"
	FindingDataSecurity   = "DataSecurity"
	FindingUserRights     = "UserRights"
	FindingDataRetention  = "DataRetention"
	FindingPolicyChanges  = "PolicyChanges"
	FindingOther          = "Other"
)

type KeyFinding struct {
	FindingType string `json:"findingType"`
	Description string `json:"description"`
	RiskLevel   string `json:"riskLevel"` // low|medium|high
}

type AnalyzePolicyRequest struct {
	PolicyURL  string `json:"policyUrl,omitempty"`
	PolicyText string `json:"policyText,omitempty"`
}

type AnalyzePolicyResponse struct {
	OverallSummary string       `json:"overallSummary"`
	OverallScore   float64      `json:"overallScore"` // 0 (very bad) to 10 (excellent)
	KeyFindings    []KeyFinding `json:"keyFindings"`
	RedFlags       []string     `json:"redFlags"`
	PositivePoints []string     `json:"positivePoints"`
}

type ReportPhishingRequest struct {
	Content string `json:"content"`
}

type CheckBreachRequest struct {
	Email string `json:"email"`
}

type BreachDetail struct {
	Name        string   `json:"name"`
	Date        string   `json:"date"` // YYYY-MM-DD
	Description string   `json:"description"`
	DataClasses []string `json:"dataClasses"`
}

type CheckBreachResponse struct {
	Found    bool           `json:"found"`
	Breaches []BreachDetail `json:"breaches"`
	Message  string         `json:"message"`
}

type IntelAlert struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Date     string   `json:"date"` // ISO 8601
	Severity string   `json:"severity"`
	Source   string   `json:"source,omitempty"`
	Link     string   `json:"link,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

type GetIntelAlertsResponse struct {
	Alerts []IntelAlert `json:"alerts"`
}
