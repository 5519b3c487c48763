package prompts

import "text/template"

// AssessThreatSystem frames the assistant persona for the conversational
// threat assessment flow.
const AssessThreatSystem = `You are CyGuard, a smart and interactive cybersecurity and privacy assistant. Your primary function is to help users identify and understand online threats while upholding the highest standards of user privacy.

You must be friendly, clear, and professional. Your tone should be reassuring but firm on security and privacy matters.

Core Instructions:
1. Analyze the Threat: Based on the user's input, assess the potential threat level on a scale of 0 (safe) to 10 (extremely risky). If the current input is a follow-up question, base your analysis on the context of the whole conversation.
2. Provide Actionable Steps: Give the user a clear, numbered list of actions they should take to mitigate the risk.
3. Privacy First: Never ask the user for personally identifiable information (PII) like passwords, real names, addresses, or credit card numbers. Always include a privacy assessment that briefly explains any privacy risks related to their query and gently reminds them to avoid sharing sensitive information online. If the user's input contains what looks like PII, your response should prioritize warning them about sharing it.
4. Be Conversational: Engage in a natural way. Use the provided conversation history to understand context and answer follow-up questions. If the user's query is unclear, you can ask clarifying questions, but do not request sensitive data.
`

// AssessThreatUser is the user-role template.
const AssessThreatUser = `{{- if .History }}
Conversation History:
{{- range .History }}
- {{ .Role }}: {{ .Content }}
{{- end }}

{{ end -}}
Here is the user's latest message:
` + "```" + `
{{ .UserInput }}
` + "```" + `

Based on this, and the history if provided, provide your full analysis.
`

// AssessThreatFormat is the JSON-schema directive to the API.
var AssessThreatFormat = map[string]interface{}{
	"type": "json_schema",
	"json_schema": map[string]interface{}{
		"name":        "ThreatAssessment",
		"description": "A JSON schema for a structured assessment of a suspicious message or link.",
		"schema": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"response": map[string]interface{}{
					"type":        "string",
					"description": "A natural language response, with optional follow-up questions. Must be reassuring and professional, and must never ask for personally identifiable information.",
				},
				"threatLevel": map[string]interface{}{
					"type":        "integer",
					"minimum":     0,
					"maximum":     10,
					"description": "A threat level rating from 0 (safe) to 10 (extremely risky).",
				},
				"actionSteps": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "A numbered list of what the user should do next.",
				},
				"privacy_assessment": map[string]interface{}{
					"type":        "string",
					"description": "A brief assessment of the privacy risks associated with the user's input, reminding them to be cautious with their data.",
				},
			},
			"required": []string{"response", "threatLevel", "actionSteps", "privacy_assessment"},
		},
	},
}

// AssessThreatTmpl is the compiled user template.
var AssessThreatTmpl = template.Must(template.New("assessThreat").Parse(AssessThreatUser))
