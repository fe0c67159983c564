package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// CheckResult is the outcome of one connectivity check.
type CheckResult struct {
	Name    string
	Status  int
	Success bool
	Message string
	Body    string
}

const maxBodyPreview = 500

type diagnosticCheck struct {
	name   string
	method string
	path   string
	body   any
	accept []int
}

func (d diagnosticCheck) accepts(status int) bool {
	for _, s := range d.accept {
		if s == status {
			return true
		}
	}
	return false
}

func (d diagnosticCheck) message(status int) string {
	switch d.path {
	case "/":
		if status == http.StatusOK {
			return "server online"
		}
		return "server responded with a problem"
	case "/user/signin":
		switch status {
		case http.StatusOK:
			return "sign in working"
		case http.StatusMethodNotAllowed:
			return "method not allowed (405): the route exists but does not accept POST"
		case http.StatusUnauthorized:
			return "invalid credentials (401): the endpoint works, try other credentials"
		}
	case "/posts":
		if status == http.StatusOK {
			return "posts reachable"
		}
	case "/docs":
		if status == http.StatusOK {
			return "docs available"
		}
		return fmt.Sprintf("status %d", status)
	}
	return fmt.Sprintf("error %d", status)
}

// Diagnose probes the backend the same way a user would: root page,
// sign-in, post listing and the API docs. Checks run in order and never
// touch any session. pause is waited between checks.
func (c *Client) Diagnose(ctx context.Context, creds Credentials, pause time.Duration) []CheckResult {
	checks := []diagnosticCheck{
		{"server online", http.MethodGet, "/", nil, []int{http.StatusOK}},
		{"sign in (POST /user/signin)", http.MethodPost, "/user/signin", creds, []int{http.StatusOK}},
		{"posts (GET /posts)", http.MethodGet, "/posts", nil, []int{http.StatusOK}},
		{"API docs (GET /docs)", http.MethodGet, "/docs", nil, []int{http.StatusOK, http.StatusMovedPermanently, http.StatusFound}},
	}

	// Redirects are reported, not followed.
	hc := *c.http
	hc.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	results := make([]CheckResult, 0, len(checks))
	for i, chk := range checks {
		if i > 0 && pause > 0 {
			select {
			case <-ctx.Done():
				return results
			case <-time.After(pause):
			}
		}

		res := CheckResult{Name: chk.name}
		status, body, err := probe(ctx, &hc, chk.method, c.baseURL+chk.path, chk.body)
		if err != nil {
			res.Message = networkMessage(err)
		} else {
			res.Status = status
			res.Success = chk.accepts(status)
			res.Message = chk.message(status)
			res.Body = body
		}
		results = append(results, res)
	}
	return results
}

func probe(ctx context.Context, hc *http.Client, method, u string, body any) (int, string, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, "", err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, "", err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyPreview+1))
	return resp.StatusCode, bodyPreview(data), nil
}

// bodyPreview trims data to at most maxBodyPreview bytes without splitting
// a UTF-8 sequence.
func bodyPreview(data []byte) string {
	preview := strings.TrimSpace(string(data))
	if len(preview) <= maxBodyPreview {
		return preview
	}
	cut := maxBodyPreview
	for cut > 0 && !utf8.RuneStart(preview[cut]) {
		cut--
	}
	return preview[:cut] + "..."
}

func networkMessage(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "network timeout"
	}
	return "network error: " + err.Error()
}
