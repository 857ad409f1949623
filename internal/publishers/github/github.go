package github

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"boxlink/internal/collectors"
	"boxlink/internal/logger"
	"boxlink/internal/publishers"
)

// Publisher commits the document into a repository through the contents API.
type Publisher struct{}

type githubFileRequest struct {
	Message string `json:"message"`
	Content string `json:"content"` // Base64 encoded content
	Sha     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type githubFileResponse struct {
	Sha string `json:"sha"`
}

type settings struct {
	token, owner, repo, path, branch, message string
	apiBase                                   string
	timeout                                   time.Duration
	retries                                   int
	proxyURL                                  string
}

func readSettings(name string, config map[string]interface{}) (settings, error) {
	s := settings{timeout: 30 * time.Second}
	s.token, _ = config["token"].(string)
	s.owner, _ = config["owner"].(string)
	s.repo, _ = config["repo"].(string)
	s.path, _ = config["path"].(string)
	s.branch, _ = config["branch"].(string)
	s.message, _ = config["message"].(string)
	s.apiBase, _ = config["api_url"].(string)
	s.proxyURL, _ = config["_proxy_url"].(string)

	if s.apiBase == "" {
		s.apiBase = "https://api.github.com"
	}
	s.apiBase = strings.TrimRight(s.apiBase, "/")

	s.timeout = collectors.DurationParam(config, "timeout", s.timeout)
	if r, ok := config["retries"].(int); ok && r > 0 {
		s.retries = r
	}

	if s.path == "" {
		s.path = publishers.ExportFileName(name)
	}
	if s.token == "" || s.owner == "" || s.repo == "" {
		return s, fmt.Errorf("github publisher requires token, owner and repo")
	}
	if s.message == "" {
		s.message = fmt.Sprintf("Update %s [boxlink]", s.path)
	}
	s.path = strings.TrimPrefix(s.path, "/")
	return s, nil
}

func (p *Publisher) Publish(name string, doc []byte, config map[string]interface{}) error {
	payload, err := publishers.Payload(doc, config)
	if err != nil {
		return err
	}

	s, err := readSettings(name, config)
	if err != nil {
		return err
	}
	apiURL := fmt.Sprintf("%s/repos/%s/%s/contents/%s", s.apiBase, s.owner, s.repo, s.path)

	client, err := collectors.NewHTTPClient(map[string]interface{}{
		"_proxy_url": s.proxyURL,
		"timeout":    s.timeout,
	})
	if err != nil {
		return err
	}

	currentSha, err := fetchSha(client, apiURL, s)
	if err != nil {
		return err
	}

	reqBody := githubFileRequest{
		Message: s.message,
		Content: base64.StdEncoding.EncodeToString(payload),
		Sha:     currentSha,
		Branch:  s.branch,
	}
	jsonBody, _ := json.Marshal(reqBody)

	for i := 0; i <= s.retries; i++ {
		reqPut, _ := http.NewRequest(http.MethodPut, apiURL, bytes.NewReader(jsonBody))
		reqPut.Header.Set("Authorization", "Bearer "+s.token)
		reqPut.Header.Set("Content-Type", "application/json")
		reqPut.Header.Set("Accept", "application/vnd.github.v3+json")

		logger.Log.Debugf("Git: Uploading file (Attempt %d/%d)", i+1, s.retries+1)
		var respPut *http.Response
		respPut, err = client.Do(reqPut)
		if err == nil {
			bodyBytes, _ := io.ReadAll(respPut.Body)
			respPut.Body.Close()
			if respPut.StatusCode >= 200 && respPut.StatusCode < 300 {
				return nil
			}
			err = fmt.Errorf("status %d: %s", respPut.StatusCode, string(bodyBytes))
		}

		if i < s.retries {
			time.Sleep(time.Second)
		}
	}
	return fmt.Errorf("git upload failed after retries: %w", err)
}

// fetchSha returns the blob sha of the existing file, or "" if it is new.
func fetchSha(client *http.Client, apiURL string, s settings) (string, error) {
	var err error
	for i := 0; i <= s.retries; i++ {
		reqGet, _ := http.NewRequest(http.MethodGet, apiURL, nil)
		reqGet.Header.Set("Authorization", "Bearer "+s.token)
		reqGet.Header.Set("Accept", "application/vnd.github.v3+json")
		if s.branch != "" {
			q := reqGet.URL.Query()
			q.Add("ref", s.branch)
			reqGet.URL.RawQuery = q.Encode()
		}

		logger.Log.Debugf("Git: Fetching file info (Attempt %d/%d)", i+1, s.retries+1)
		var resp *http.Response
		resp, err = client.Do(reqGet)
		if err == nil {
			switch resp.StatusCode {
			case http.StatusOK:
				defer resp.Body.Close()
				var existing githubFileResponse
				if err := json.NewDecoder(resp.Body).Decode(&existing); err != nil {
					return "", fmt.Errorf("failed to parse git response: %w", err)
				}
				logger.Log.Debugf("Git: File exists (SHA: %s), updating...", existing.Sha)
				return existing.Sha, nil
			case http.StatusNotFound:
				resp.Body.Close()
				logger.Log.Debugf("Git: File not found, creating new...")
				return "", nil
			}
			resp.Body.Close()
			err = fmt.Errorf("status %d", resp.StatusCode)
		}

		if i < s.retries {
			time.Sleep(time.Second)
		}
	}
	return "", fmt.Errorf("git fetch failed after retries: %w", err)
}

func init() {
	publishers.Register("github", func() publishers.Publisher { return &Publisher{} })
}
