// File: internal/services/label/fetcher.go
package label

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Logger is the logging interface used by the fetcher.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Fetcher retrieves drug label records from the openFDA label API and
// normalizes them to plain text. It keeps no state between requests; the
// normalized text lives in memory for the lifetime of one pipeline run.
type Fetcher struct {
	config *Config
	client *http.Client
	logger Logger
}

func NewFetcher(config *Config, logger Logger) (*Fetcher, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}
	return &Fetcher{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}, nil
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// FetchLabelText looks up a single label record whose brand name matches the
// term and returns its content flattened to one normalized text blob.
// A non-success status or an empty result set yields ErrNoResults.
func (f *Fetcher) FetchLabelText(ctx context.Context, term string) (string, error) {
	query := url.Values{}
	query.Set("search", fmt.Sprintf(`openfda.brand_name:%q`, strings.ToLower(strings.TrimSpace(term))))
	query.Set("limit", "1")
	endpoint := fmt.Sprintf("%s/drug/label.json?%s", strings.TrimRight(f.config.BaseURL, "/"), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", NewRequestError("building label request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("label API request failed", "term", term, "error", err)
		return "", NewRequestError("label API request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		f.logger.Info("no label data for term", "term", term)
		return "", ErrNoResults
	}
	if resp.StatusCode != http.StatusOK {
		f.logger.Error("label API returned non-success status", "term", term, "status", resp.StatusCode)
		return "", NewRequestError(fmt.Sprintf("label API returned HTTP %d", resp.StatusCode), nil)
	}

	var payload struct {
		Results []map[string]interface{} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", NewDecodeError("decoding label response", err)
	}
	if len(payload.Results) == 0 {
		return "", ErrNoResults
	}

	text := normalize(flatten(payload.Results[0]))
	if text == "" {
		return "", ErrNoResults
	}

	f.logger.Debug("label fetched", "term", term, "text_length", len(text))
	return text, nil
}

// flatten walks a decoded JSON value and joins its string leaves. Map keys are
// visited in sorted order so the same record always flattens the same way.
func flatten(value interface{}) string {
	var b strings.Builder
	walk(value, &b)
	return b.String()
}

func walk(value interface{}, b *strings.Builder) {
	switch v := value.(type) {
	case string:
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(v)
	case []interface{}:
		for _, item := range v {
			walk(item, b)
		}
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walk(v[k], b)
		}
	}
}

// normalize strips markup tags and collapses runs of whitespace.
func normalize(text string) string {
	text = tagPattern.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

// IsNotFound reports whether err represents a missing label record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoResults)
}
