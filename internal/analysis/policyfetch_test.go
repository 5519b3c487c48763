package analysis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyguard-backend/pkg/api"
)

func TestPolicyFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><style>body { color: red; }</style>
			<script>console.log("tracker")</script></head>
			<body><h1>Privacy Policy</h1><p>We collect &amp; share your data.</p></body></html>`))
	}))
	defer server.Close()

	text, err := NewPolicyFetcher().Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "Privacy Policy")
	assert.Contains(t, text, "We collect & share your data.")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "tracker")
}

func TestPolicyFetcherRejectsBadURLs(t *testing.T) {
	fetcher := NewPolicyFetcher()
	ctx := context.Background()

	for _, rawURL := range []string{"", "not a url", "ftp://example.com/policy", "/relative/path"} {
		_, err := fetcher.Fetch(ctx, rawURL)
		assert.ErrorIs(t, err, ErrInvalidInput, "url: %q", rawURL)
	}
}

func TestPolicyFetcherRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := NewPolicyFetcher().Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorContains(t, err, "404")
}

func TestPolicyFetcherRejectsOversizedDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, maxPolicyFetchBytes+1))
	}))
	defer server.Close()

	_, err := NewPolicyFetcher().Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnalyzePolicyFetchesFromURL(t *testing.T) {
	policy := strings.Repeat("We collect your browsing history and sell it. ", 5)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>" + policy + "</body></html>"))
	}))
	defer server.Close()

	mock := &mockCollaborator{response: `{"overallSummary": "Invasive policy.", "overallScore": 2}`}
	svc := NewService(mock, NewPolicyFetcher())

	res, err := svc.AnalyzePolicy(context.Background(), api.AnalyzePolicyRequest{PolicyURL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.OverallScore)
	assert.Contains(t, mock.lastPrompt, "sell it")
}

func TestExtractTextPlain(t *testing.T) {
	assert.Equal(t, "plain text, no markup", extractText("plain   text,\n no markup"))
}
