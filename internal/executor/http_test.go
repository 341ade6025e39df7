package executor

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/nextlevelbuilder/toolspace/internal/model"
	"github.com/nextlevelbuilder/toolspace/internal/toolerr"
	"github.com/nextlevelbuilder/toolspace/internal/toolparse"
)

func TestRunHTTPRejectsMissingURL(t *testing.T) {
	tool := &toolparse.BuiltinTool{Kind: toolparse.KindHTTPGet}
	execCtx := &model.ExecutionContext{Env: map[string]string{}, Limits: model.DefaultLimits()}
	_, err := RunHTTP(context.Background(), tool, execCtx)
	if !toolerr.As(err, toolerr.KindInvalidCommand) {
		t.Fatalf("expected InvalidCommand, got %v", err)
	}
}

func TestRunHTTPBlocksLoopbackTarget(t *testing.T) {
	srv := httptest.NewServer(nil)
	defer srv.Close()

	tool := &toolparse.BuiltinTool{Kind: toolparse.KindHTTPGet, URL: srv.URL}
	execCtx := &model.ExecutionContext{Env: map[string]string{}, Limits: model.DefaultLimits()}
	_, err := RunHTTP(context.Background(), tool, execCtx)
	if !toolerr.As(err, toolerr.KindBlockedNetwork) {
		t.Fatalf("expected BlockedNetwork for loopback target, got %v", err)
	}
}
