// Package translate is the optional translation collaborator for event
// text. The feed is authored in Portuguese; the UI may ask for English.
// Translations go through an injected expiring cache so repeat loads of
// the same feed cost no API calls.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// accentedRe detects Portuguese text worth translating. Text without
// accented characters is assumed to already be English and returned
// as-is, saving the API's per-day quota for real work.
var accentedRe = regexp.MustCompile(`[àáâãäçèéêëìíîïñòóôõöùúûü]`)

// labels are recurring feed phrases translated without an API call.
var labels = map[string]string{
	"culto de adoração":  "Worship Service",
	"culto de oração":    "Prayer Service",
	"estudo bíblico":     "Bible Study",
	"reunião de jovens":  "Youth Meeting",
	"encontro de casais": "Couples Retreat",
	"santa ceia":         "Communion",
	"vigília":            "Vigil",
}

// Translator translates text via the MyMemory API, consulting the
// injected cache first.
type Translator struct {
	client  HTTPClient
	cache   Cache
	baseURL string
}

// New creates a Translator. cache may be nil to disable caching.
func New(client HTTPClient, cache Cache) *Translator {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Translator{
		client:  client,
		cache:   cache,
		baseURL: "https://api.mymemory.translated.net",
	}
}

// SetBaseURL overrides the API endpoint; used by tests.
func (t *Translator) SetBaseURL(u string) { t.baseURL = u }

type myMemoryResponse struct {
	ResponseStatus int `json:"responseStatus"`
	ResponseData   struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
}

// Translate translates text between the given language pair
// (e.g. "pt" to "en"). Empty input, known labels and already-English
// input short circuit; a cached translation is returned without a
// network call.
func (t *Translator) Translate(ctx context.Context, text, from, to string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	if to == "en" {
		lower := strings.ToLower(strings.TrimSpace(text))
		if known, ok := labels[lower]; ok {
			return known, nil
		}
		if !accentedRe.MatchString(lower) {
			return text, nil
		}
	}

	key := from + ":" + to + ":" + text
	if t.cache != nil {
		if cached, ok := t.cache.Get(key); ok {
			return cached, nil
		}
	}

	endpoint := fmt.Sprintf("%s/get?q=%s&langpair=%s|%s",
		t.baseURL, url.QueryEscape(text), url.QueryEscape(from), url.QueryEscape(to))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return text, fmt.Errorf("create request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return text, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return text, fmt.Errorf("read body: %w", err)
	}

	var parsed myMemoryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return text, fmt.Errorf("decode response: %w", err)
	}
	if parsed.ResponseStatus != http.StatusOK || parsed.ResponseData.TranslatedText == "" {
		return text, fmt.Errorf("translation API status %d", parsed.ResponseStatus)
	}

	translated := parsed.ResponseData.TranslatedText
	if t.cache != nil {
		t.cache.Set(key, translated)
	}
	return translated, nil
}
