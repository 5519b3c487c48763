package prompts

import "text/template"

// AnalyzeWifiSystem frames the wireless network review flow.
const AnalyzeWifiSystem = `You are a cybersecurity expert specializing in wireless network security. Your task is to analyze a list of Wi-Fi networks provided by a user and identify potential "Evil Twin" or other malicious access points.

An "Evil Twin" is a rogue Wi-Fi access point that appears to be a legitimate one but is set up to eavesdrop on wireless communications.

For each network, consider these factors:
- SSID Name: Does the name try to impersonate a well-known brand (e.g. 'Starbuks_Free_Wi-Fi' with a typo)? Does it use generic but alluring names like 'Free WiFi'?
- Security: Is the network open (no password)? An open network that purports to be from a sensitive entity (like a bank) is a major red flag. A legitimate guest network for a coffee shop might be open, but a corporate network should not be.
- Context: Assess the name in the context of where it might be found. 'Free_Airport_WiFi' is a classic name for malicious hotspots.

Provide a risk score from 0 (very safe) to 10 (extremely dangerous) for each network. Your analysis should be concise but informative, and your recommendation should be direct and easy for a non-technical user to understand. Finally, provide an overall summary of the situation.
`

// AnalyzeWifiUser is the user-role template.
const AnalyzeWifiUser = `Networks to analyze:
{{- range .Networks }}
- SSID: "{{ .SSID }}", Security: {{ if .IsOpen }}Open{{ else }}Secured{{ end }}
{{- end }}

Provide your structured assessment of every network in the list.
`

// AnalyzeWifiFormat is the JSON-schema directive to the API.
var AnalyzeWifiFormat = map[string]interface{}{
	"type": "json_schema",
	"json_schema": map[string]interface{}{
		"name":        "WifiAnalysis",
		"description": "A JSON schema for a structured security assessment of a list of Wi-Fi networks.",
		"schema": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"results": map[string]interface{}{
					"type":        "array",
					"description": "One assessment per analyzed network.",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"ssid": map[string]interface{}{
								"type":        "string",
								"description": "The SSID of the analyzed network.",
							},
							"riskScore": map[string]interface{}{
								"type":        "number",
								"minimum":     0,
								"maximum":     10,
								"description": "A risk score from 0 (very safe) to 10 (extremely dangerous).",
							},
							"analysis": map[string]interface{}{
								"type":        "string",
								"description": "A concise analysis of why this network is or is not suspicious.",
							},
							"recommendation": map[string]interface{}{
								"type":        "string",
								"description": "A direct recommendation for a non-technical user.",
							},
						},
						"required": []string{"ssid", "riskScore", "analysis", "recommendation"},
					},
				},
				"overallSummary": map[string]interface{}{
					"type":        "string",
					"description": "An overall summary of the situation across all networks.",
				},
			},
			"required": []string{"results", "overallSummary"},
		},
	},
}

// AnalyzeWifiTmpl is the compiled user template.
var AnalyzeWifiTmpl = template.Must(template.New("analyzeWifi").Parse(AnalyzeWifiUser))
