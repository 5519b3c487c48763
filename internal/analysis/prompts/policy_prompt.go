package prompts

import "text/template"

// AnalyzePolicySystem frames the privacy-policy review flow.
const AnalyzePolicySystem = `You are a meticulous privacy and cybersecurity analyst. Your task is to analyze the provided privacy policy text.
Your goal is to simplify the complex legal language into a clear, understandable summary for an average user.

Your Analysis Must Include:
1. Overall Summary: A brief, high-level overview of the policy. Is it generally good, bad, or standard?
2. Overall Score: A score from 0 (extremely bad) to 10 (excellent), representing how privacy-friendly the policy is. A higher score means better privacy practices.
3. Key Findings: Identify and list the most important clauses, each classified into one of the finding categories with a one-sentence description and a risk level.
4. Red Flags: Explicitly list any clauses or missing information that are concerning from a privacy perspective (e.g. vague language, sharing with advertisers, no mention of encryption). If none, return an empty array.
5. Positive Points: Explicitly list any clauses that are good for the user (e.g. clear data deletion processes, strong security commitments, opt-out options). If none, return an empty array.
`

// AnalyzePolicyUser is the user-role template.
const AnalyzePolicyUser = `Policy Text to Analyze:
` + "```" + `
{{ .PolicyText }}
` + "```" + `
{{- if .PolicyURL }}

Source URL (for context):
{{ .PolicyURL }}
{{- end }}

Provide your structured analysis of this policy.
`

// AnalyzePolicyFormat is the JSON-schema directive to the API.
var AnalyzePolicyFormat = map[string]interface{}{
	"type": "json_schema",
	"json_schema": map[string]interface{}{
		"name":        "PolicyAnalysis",
		"description": "A JSON schema for a structured privacy assessment of a policy document.",
		"schema": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"overallSummary": map[string]interface{}{
					"type":        "string",
					"description": "A brief, high-level overview of the policy.",
				},
				"overallScore": map[string]interface{}{
					"type":        "number",
					"minimum":     0,
					"maximum":     10,
					"description": "How privacy-friendly the policy is, from 0 (extremely bad) to 10 (excellent).",
				},
				"keyFindings": map[string]interface{}{
					"type":        "array",
					"description": "The most important clauses found in the policy.",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"findingType": map[string]interface{}{
								"type":        "string",
								"enum":        []string{"DataCollection", "DataSharing", "DataSecurity", "UserRights", "DataRetention", "PolicyChanges", "Other"},
								"description": "The category of the finding.",
							},
							"description": map[string]interface{}{
								"type":        "string",
								"description": "A simple, one-sentence explanation of what the clause means for the user.",
							},
							"riskLevel": map[string]interface{}{
								"type":        "string",
								"enum":        []string{"low", "medium", "high"},
								"description": "The risk associated with this clause.",
							},
						},
						"required": []string{"findingType", "description", "riskLevel"},
					},
				},
				"redFlags": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Clauses or missing information that are concerning from a privacy perspective. Empty if none.",
				},
				"positivePoints": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Clauses that are good for the user. Empty if none.",
				},
			},
			"required": []string{"overallSummary", "overallScore", "keyFindings", "redFlags", "positivePoints"},
		},
	},
}

// AnalyzePolicyTmpl is the compiled user template.
var AnalyzePolicyTmpl = template.Must(template.New("analyzePolicy").Parse(AnalyzePolicyUser))
