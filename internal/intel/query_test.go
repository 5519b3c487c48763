package intel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyguard-backend/pkg/api"
)

var sampleAlerts = []api.IntelAlert{
	{
		ID:       "a1",
		Title:    "Critical RCE Vulnerability in Apache Struts",
		Summary:  "Remote code execution vulnerability. Immediate patching required.",
		Date:     "2026-08-28T00:00:00Z",
		Severity: "critical",
		Source:   "NVD",
		Tags:     []string{"rce", "apache", "vulnerability"},
	},
	{
		ID:       "a2",
		Title:    "Phishing Campaign Impersonating Microsoft 365 Login",
		Summary:  "Credential stealing campaign against corporate users.",
		Date:     "2026-08-27T00:00:00Z",
		Severity: "high",
		Source:   "CyGuard Labs",
		Tags:     []string{"phishing", "microsoft365", "credentials"},
	},
	{
		ID:       "a3",
		Title:    "Routine Security Advisory: Update Your Browsers",
		Summary:  "Low severity browser vulnerabilities fixed in latest updates.",
		Date:     "2026-08-22T00:00:00Z",
		Severity: "low",
		Source:   "Vendor Advisories",
		Tags:     []string{"browser", "update", "patch"},
	},
}

func matchingIDs(t *testing.T, query string) []string {
	t.Helper()
	filter, err := ParseQuery(query)
	require.NoError(t, err)

	var ids []string
	for _, alert := range sampleAlerts {
		if filter.Matches(alert) {
			ids = append(ids, alert.ID)
		}
	}
	return ids
}

func TestQueryEquality(t *testing.T) {
	assert.Equal(t, []string{"a2"}, matchingIDs(t, `severity = "high"`))
	assert.Equal(t, []string{"a2"}, matchingIDs(t, `severity = "HIGH"`))
	assert.Empty(t, matchingIDs(t, `severity = "medium"`))
}

func TestQueryContains(t *testing.T) {
	assert.Equal(t, []string{"a1"}, matchingIDs(t, `title CONTAINS "apache struts"`))
	assert.Equal(t, []string{"a1", "a3"}, matchingIDs(t, `summary CONTAINS "vulnerabilit"`))
}

func TestQueryTagsMatchAnyValue(t *testing.T) {
	assert.Equal(t, []string{"a2"}, matchingIDs(t, `tags = "phishing"`))
	assert.Equal(t, []string{"a2"}, matchingIDs(t, `tags CONTAINS "micro"`))
}

func TestQueryDateRange(t *testing.T) {
	assert.Equal(t, []string{"a1", "a2"}, matchingIDs(t, `date > "2026-08-25"`))
	assert.Equal(t, []string{"a3"}, matchingIDs(t, `date < "2026-08-25"`))
}

func TestQueryBooleanOperators(t *testing.T) {
	assert.Equal(t, []string{"a2"},
		matchingIDs(t, `severity = "high" AND tags CONTAINS "phishing"`))
	assert.Equal(t, []string{"a1", "a2"},
		matchingIDs(t, `severity = "critical" OR severity = "high"`))
	assert.Equal(t, []string{"a1", "a3"},
		matchingIDs(t, `NOT tags = "phishing"`))
	assert.Equal(t, []string{"a1", "a2"},
		matchingIDs(t, `NOT (severity = "low" OR source = "Vendor Advisories")`))
	assert.Equal(t, []string{"a1"},
		matchingIDs(t, `(severity = "critical" OR severity = "low") AND tags = "rce"`))
}

func TestQueryErrors(t *testing.T) {
	for _, query := range []string{
		``,
		`severity =`,
		`severity LIKE "high"`,
		`cvss = "9.8"`,
		`(severity = "high"`,
	} {
		_, err := ParseQuery(query)
		assert.Error(t, err, "query: %q", query)
	}
}
