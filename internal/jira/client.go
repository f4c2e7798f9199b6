package jira

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gtempel/jiragraph/internal/config"
	"github.com/gtempel/jiragraph/internal/logger"
)

// apiPath is the REST API prefix; "latest" tracks whatever version the
// server speaks, matching the endpoints this tool depends on.
const apiPath = "/rest/api/latest"

// issueFieldList limits issue payloads to the fields the traversal needs.
const issueFieldList = "key,summary,status,issuetype,issuelinks,subtasks"

// Client wraps remote issue lookup by key. It performs one request per
// call and no caching: deduplication is the traversal's responsibility.
type Client struct {
	baseURL    string
	user       string
	password   string
	cookie     string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a Client from the Jira connection configuration.
func NewClient(cfg *config.JiraConfig, log *logger.Logger) *Client {
	httpClient := &http.Client{}
	if cfg.Insecure {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	if log == nil {
		log = logger.NewDefault()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		user:       cfg.User,
		password:   cfg.Password,
		cookie:     cfg.Cookie,
		httpClient: httpClient,
		log:        log,
	}
}

// Issue fetches a single issue by key and returns the normalized record.
// Returns *NotFoundError when the server does not know the key,
// *AuthError on credential rejection, *TransportError (or *ParseError)
// otherwise. No retries are performed here.
func (c *Client) Issue(ctx context.Context, key string) (*Issue, error) {
	c.log.Debugw("Fetching issue", "issue", key)

	params := url.Values{}
	params.Set("fields", issueFieldList)

	body, requestURL, err := c.get(ctx, apiPath+"/issue/"+url.PathEscape(key), params, key)
	if err != nil {
		return nil, err
	}

	var doc issueDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &ParseError{URL: requestURL, Err: err}
	}
	if doc.Key == "" {
		return nil, &ParseError{URL: requestURL, Err: fmt.Errorf("issue document has no key")}
	}

	return doc.normalize(), nil
}

// Search runs a JQL query and returns the matching issues. Used to
// resolve label selectors into seed keys.
func (c *Client) Search(ctx context.Context, jql string) ([]*Issue, error) {
	c.log.Debugw("Searching issues", "jql", jql)

	params := url.Values{}
	params.Set("jql", jql)
	params.Set("fields", issueFieldList)

	body, requestURL, err := c.get(ctx, apiPath+"/search", params, "")
	if err != nil {
		return nil, err
	}

	var doc searchDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &ParseError{URL: requestURL, Err: err}
	}

	issues := make([]*Issue, 0, len(doc.Issues))
	for i := range doc.Issues {
		issues = append(issues, doc.Issues[i].normalize())
	}
	return issues, nil
}

// BrowseURL returns the human-facing URL for an issue key, used as the
// href attribute on graph nodes.
func (c *Client) BrowseURL(key string) string {
	return c.baseURL + "/browse/" + key
}

// get performs one GET request and maps failure statuses onto the error
// taxonomy. keyHint names the issue for NotFoundError messages and is
// empty for non-issue endpoints.
func (c *Client) get(ctx context.Context, path string, params url.Values, keyHint string) ([]byte, string, error) {
	requestURL := c.baseURL + path
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, requestURL, &TransportError{URL: requestURL, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	// A session cookie wins over basic credentials when both are set.
	if c.cookie != "" {
		req.AddCookie(&http.Cookie{Name: "JSESSIONID", Value: c.cookie})
	} else if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, requestURL, &TransportError{URL: requestURL, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, requestURL, &AuthError{URL: requestURL, StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
		return nil, requestURL, &NotFoundError{Key: keyHint, URL: requestURL}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, requestURL, &TransportError{URL: requestURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, requestURL, &TransportError{URL: requestURL, Err: err}
	}
	return body, requestURL, nil
}
