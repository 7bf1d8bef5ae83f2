package whttp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	stdlog "log"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/stashkit/scenematch/internal/utils"
)

type Header struct {
	Name  string
	Value string
}

type Request struct {
	Method  string
	URL     string
	Headers []Header
	Body    []byte
}

type Response struct {
	StatusCode int
	BodyString string
}

// GetDefaultClient returns a retrying HTTP client with retryablehttp's own
// logging silenced; all request logging goes through the shared logger.
func GetDefaultClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = stdlog.New(io.Discard, "", 0)
	client.RetryMax = 4
	return client
}

func SendHTTPRequest(wReq *Request, client *retryablehttp.Client) (*Response, error) {
	if client == nil {
		client = GetDefaultClient()
	}
	var body io.Reader
	if len(wReq.Body) > 0 {
		body = bytes.NewReader(wReq.Body)
	}
	req, err := retryablehttp.NewRequest(wReq.Method, wReq.URL, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", "scenematch")
	req.Header.Set("Accept", "application/json")
	for _, h := range wReq.Headers {
		req.Header.Set(h.Name, h.Value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, BodyString: string(bodyBytes)}, nil
}

// authVariants returns the header combinations tried for a GraphQL endpoint.
// Local StashApp instances often answer reads unauthenticated, StashDB wants
// an ApiKey header, and some installs use a bearer token instead.
func authVariants(apiKey string) [][]Header {
	variants := [][]Header{nil}
	if apiKey != "" {
		variants = append(variants,
			[]Header{{Name: "ApiKey", Value: apiKey}},
			[]Header{{Name: "Authorization", Value: "Bearer " + apiKey}},
			[]Header{{Name: "apiKey", Value: apiKey}},
		)
	}
	return variants
}

// SendGraphQL posts a GraphQL query and returns the "data" payload. Auth
// header variants are tried in order until one stops producing 401/403 or
// GraphQL-level authorization errors.
func SendGraphQL(client *retryablehttp.Client, url, apiKey, query string, variables map[string]interface{}) (gjson.Result, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return gjson.Result{}, err
	}

	var lastStatus int
	for attempt, headers := range authVariants(apiKey) {
		req := &Request{
			Method:  "POST",
			URL:     url,
			Headers: append([]Header{{Name: "Content-Type", Value: "application/json"}}, headers...),
			Body:    payload,
		}
		utils.Log.WithFields(map[string]interface{}{
			"url":     url,
			"attempt": attempt + 1,
		}).Debug("graphql request")

		res, err := SendHTTPRequest(req, client)
		if err != nil {
			return gjson.Result{}, err
		}
		lastStatus = res.StatusCode

		if res.StatusCode == 401 || res.StatusCode == 403 {
			continue
		}
		if res.StatusCode >= 300 {
			return gjson.Result{}, fmt.Errorf("graphql HTTP %d from %s: %s", res.StatusCode, url, preview(res.BodyString))
		}
		if !gjson.Valid(res.BodyString) {
			return gjson.Result{}, fmt.Errorf("graphql returned non-JSON from %s: %s", url, preview(res.BodyString))
		}

		parsed := gjson.Parse(res.BodyString)
		if errs := parsed.Get("errors"); errs.Exists() && len(errs.Array()) > 0 {
			msgs := strings.ToLower(errs.Get("#.message").Raw)
			if strings.Contains(msgs, "not authorized") || strings.Contains(msgs, "unauthorized") || strings.Contains(msgs, "forbidden") {
				continue
			}
			return gjson.Result{}, fmt.Errorf("graphql errors from %s: %s", url, preview(errs.Raw))
		}

		data := parsed.Get("data")
		if !data.Exists() {
			return gjson.Result{}, fmt.Errorf("graphql response missing data from %s: %s", url, preview(res.BodyString))
		}
		return data, nil
	}
	return gjson.Result{}, fmt.Errorf("graphql auth failed for %s (last status %d)", url, lastStatus)
}

func preview(s string) string {
	if len(s) > 700 {
		return s[:700]
	}
	return s
}
