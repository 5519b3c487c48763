package prompts

import "text/template"

// AnalyzeSecurityLogSystem frames the log review flow.
const AnalyzeSecurityLogSystem = `You are an expert Senior Security Operations Center (SOC) Analyst. Your task is to meticulously analyze the provided security log content.
Identify potential threats, anomalies, suspicious activities, and misconfigurations.

Focus on accuracy and provide actionable insights. If the logs are very short or seem incomplete, note that in your summary. If no specific threats are found, ensure potentialThreats is an empty array and overallRiskLevel is informational or low. For each threat you report, cite two or three key pieces of evidence from the log lines.
`

// AnalyzeSecurityLogUser is the user-role template.
const AnalyzeSecurityLogUser = `Log Content to Analyze:
` + "```" + `
{{ .LogContent }}
` + "```" + `

Based on your analysis, provide a structured response with a summary, the potential threats you identified, an overall risk level, key observations, and general actionable recommendations.
`

// AnalyzeSecurityLogFormat is the JSON-schema directive to the API.
var AnalyzeSecurityLogFormat = map[string]interface{}{
	"type": "json_schema",
	"json_schema": map[string]interface{}{
		"name":        "SecurityLogAnalysis",
		"description": "A JSON schema for a structured analysis of security log content.",
		"schema": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"summary": map[string]interface{}{
					"type":        "string",
					"description": "A concise summary of the findings, highlighting the most critical issues found, if any.",
				},
				"potentialThreats": map[string]interface{}{
					"type":        "array",
					"description": "Potential threats, anomalies, or suspicious activities identified in the logs.",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"description": map[string]interface{}{
								"type":        "string",
								"description": "Description of the potential threat or anomaly found in the logs.",
							},
							"severity": map[string]interface{}{
								"type":        "string",
								"enum":        []string{"low", "medium", "high", "critical"},
								"description": "The assessed severity of the threat.",
							},
							"recommendation": map[string]interface{}{
								"type":        "string",
								"description": "Recommended action to mitigate or investigate this specific threat.",
							},
							"evidence": map[string]interface{}{
								"type":        "array",
								"items":       map[string]interface{}{"type": "string"},
								"description": "Specific log lines or patterns that indicate this threat.",
							},
						},
						"required": []string{"description", "severity", "recommendation", "evidence"},
					},
				},
				"overallRiskLevel": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"low", "medium", "high", "critical", "informational"},
					"description": "Overall risk level assessed from the log analysis. Informational if no specific threats are found but there are points of interest.",
				},
				"keyObservations": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Key observations or patterns noted, even if not direct threats.",
				},
				"actionableRecommendations": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "General actionable recommendations for improving security based on the log review.",
				},
			},
			"required": []string{"summary", "potentialThreats", "overallRiskLevel", "keyObservations", "actionableRecommendations"},
		},
	},
}

// AnalyzeSecurityLogTmpl is the compiled user template.
var AnalyzeSecurityLogTmpl = template.Must(template.New("analyzeSecurityLog").Parse(AnalyzeSecurityLogUser))
