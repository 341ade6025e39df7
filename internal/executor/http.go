package executor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nextlevelbuilder/toolspace/internal/model"
	"github.com/nextlevelbuilder/toolspace/internal/security"
	"github.com/nextlevelbuilder/toolspace/internal/toolerr"
	"github.com/nextlevelbuilder/toolspace/internal/toolparse"
)

// egressLimiter throttles outbound requests across every HTTP tool
// invocation in the process, independent of any single call's timeout —
// grounded on the teacher's web_fetch.go client tuning (MaxIdleConns,
// IdleConnTimeout) but addressing a concern that client does not: a
// document whose frontmatter authorizes many http specs should not be
// able to turn the runtime into a request cannon.
var egressLimiter = rate.NewLimiter(rate.Limit(20), 20)

// sharedClient is reused across calls so connections pool the way the
// teacher's web fetch tool intends, with CheckRedirect re-running the
// SSRF gate on every hop (spec.md §4.5/§9) rather than only on the
// initial URL.
var sharedClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 15 * time.Second,
	},
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		if len(via) >= 5 {
			return fmt.Errorf("stopped after %d redirects", len(via))
		}
		if err := security.CheckURL(req.Context(), req.URL.String(), nil); err != nil {
			return err
		}
		return nil
	},
}

// RunHTTP executes an HttpGet/HttpPost/HttpMethod tool: the URL and
// every redirect hop are re-checked against the egress policy, the
// response body is capped the same way process stdout is, and the
// result is reported through the same ToolOutput shape as a process
// execution (Stdout carries the response body, ExitCode carries the
// HTTP status).
func RunHTTP(ctx context.Context, tool *toolparse.BuiltinTool, execCtx *model.ExecutionContext) (*model.ToolOutput, error) {
	if tool.URL == "" {
		return nil, toolerr.New(toolerr.KindInvalidCommand, "missing url")
	}

	timeout := execCtx.Limits.Timeout
	if timeout <= 0 {
		timeout = model.DefaultLimits().Timeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := egressLimiter.Wait(runCtx); err != nil {
		return nil, toolerr.Wrap(toolerr.KindBlockedNetwork, "egress rate limit exceeded", err)
	}

	if err := security.CheckURL(runCtx, tool.URL, nil); err != nil {
		return nil, err
	}

	method := tool.Method
	if method == "" {
		method = "GET"
	}

	var body io.Reader
	if tool.Body != "" {
		body = strings.NewReader(tool.Body)
	}

	req, err := http.NewRequestWithContext(runCtx, method, tool.URL, body)
	if err != nil {
		return nil, toolerr.Wrap(toolerr.KindInvalidCommand, "cannot build request", err)
	}
	for k, v := range tool.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := sharedClient.Do(req)
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, toolerr.New(toolerr.KindTimeout, fmt.Sprintf("request timed out after %s", timeout))
		}
		return nil, toolerr.Wrap(toolerr.KindBlockedNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	cap := execCtx.Limits.MaxOutputBytes
	if cap <= 0 {
		cap = model.DefaultLimits().MaxOutputBytes
	}
	limited := io.LimitReader(resp.Body, int64(cap)+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, toolerr.Wrap(toolerr.KindInternal, "failed to read response body", err)
	}
	elapsed := time.Since(start)

	truncated := false
	if len(data) > cap {
		data = trimIncompleteRune(data[:cap])
		truncated = true
	}

	return &model.ToolOutput{
		Stdout:      string(data),
		ExitCode:    resp.StatusCode,
		Truncated:   truncated,
		Duration:    elapsed,
		ElapsedWall: elapsed,
	}, nil
}
