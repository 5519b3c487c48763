package analysis

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const maxPolicyFetchBytes = 1 << 20

// PolicyFetcher downloads a policy document and reduces it to plain text so it
// can be fed to the collaborator like pasted input.
type PolicyFetcher struct {
	client *resty.Client
}

func NewPolicyFetcher() *PolicyFetcher {
	return &PolicyFetcher{
		client: resty.New().SetTimeout(15 * time.Second),
	}
}

func (f *PolicyFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", invalidf("policyUrl must be an absolute http(s) URL")
	}

	res, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		return "", fmt.Errorf("fetch policy from %s: %w", parsed.Host, err)
	}
	defer res.RawBody().Close()

	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return "", invalidf("policy URL returned status %d", res.StatusCode())
	}

	body, err := io.ReadAll(io.LimitReader(res.RawBody(), maxPolicyFetchBytes+1))
	if err != nil {
		return "", fmt.Errorf("read policy body: %w", err)
	}
	if len(body) > maxPolicyFetchBytes {
		return "", invalidf("policy document exceeds %d bytes", maxPolicyFetchBytes)
	}

	return extractText(string(body)), nil
}

// extractText strips markup from an HTML document, dropping script and style
// blocks entirely. Plain text passes through unchanged apart from whitespace
// normalization.
func extractText(doc string) string {
	var out strings.Builder
	lower := strings.ToLower(doc)

	inTag := false
	skipUntil := ""
	for i := 0; i < len(doc); i++ {
		if skipUntil != "" {
			if strings.HasPrefix(lower[i:], skipUntil) {
				i += len(skipUntil) - 1
				skipUntil = ""
				inTag = false
			}
			continue
		}
		switch {
		case doc[i] == '<':
			inTag = true
			if strings.HasPrefix(lower[i:], "<script") {
				skipUntil = "</script>"
			} else if strings.HasPrefix(lower[i:], "<style") {
				skipUntil = "</style>"
			}
		case doc[i] == '>' && inTag:
			inTag = false
			out.WriteByte(' ')
		case !inTag:
			out.WriteByte(doc[i])
		}
	}

	return strings.Join(strings.Fields(html.UnescapeString(out.String())), " ")
}
