package prompts

import "text/template"

// AnalyzeScreenshotSystem frames the visual threat analysis flow. The
// screenshot itself travels as a multimodal image part next to the rendered
// user prompt.
const AnalyzeScreenshotSystem = `You are a cybersecurity expert specializing in visual threat analysis. Your task is to meticulously analyze the provided screenshot for any signs of phishing, scams, or other security threats.

You must analyze both the image content and any accompanying user prompt.

Analysis Instructions:
1. Examine Visual Elements: Look for fake logos, pixelated images, design inconsistencies, or anything that seems unprofessional or out of place for the purported sender.
2. Inspect Text Content: Read all text in the screenshot. Look for urgent or threatening language, spelling and grammar mistakes, generic greetings, and suspicious calls to action.
3. Check Links and URLs: If any URLs, links, or buttons are visible, scrutinize them. Do they point to a legitimate domain? Are there subtle misspellings (typosquatting)?
4. Synthesize Findings: Based on all visual and textual evidence, form a conclusion with a risk score from 0 (safe) to 10 (critical threat), a concise summary, the specific red flags you found, and a clear recommendation.
`

// AnalyzeScreenshotUser is the user-role template rendered next to the image part.
const AnalyzeScreenshotUser = `{{- if .Prompt }}
User Prompt/Question:
{{ .Prompt }}

{{ end -}}
Analyze the attached screenshot and provide your structured assessment.
`

// AnalyzeScreenshotFormat is the JSON-schema directive to the API.
var AnalyzeScreenshotFormat = map[string]interface{}{
	"type": "json_schema",
	"json_schema": map[string]interface{}{
		"name":        "ScreenshotAnalysis",
		"description": "A JSON schema for a structured security assessment of a screenshot.",
		"schema": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"summary": map[string]interface{}{
					"type":        "string",
					"description": "A concise summary of the assessment.",
				},
				"riskScore": map[string]interface{}{
					"type":        "number",
					"minimum":     0,
					"maximum":     10,
					"description": "A risk score from 0 (safe) to 10 (critical threat).",
				},
				"redFlags": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "The specific visual or textual elements that are suspicious. Empty if none.",
				},
				"recommendation": map[string]interface{}{
					"type":        "string",
					"description": "A clear, direct recommendation to the user.",
				},
			},
			"required": []string{"summary", "riskScore", "redFlags", "recommendation"},
		},
	},
}

// AnalyzeScreenshotTmpl is the compiled user template.
var AnalyzeScreenshotTmpl = template.Must(template.New("analyzeScreenshot").Parse(AnalyzeScreenshotUser))
