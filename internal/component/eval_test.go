package component

import (
	"context"
	"strings"
	"testing"

	"github.com/nextlevelbuilder/toolspace/internal/model"
)

func testExecCtx() *model.ExecutionContext {
	return &model.ExecutionContext{Env: map[string]string{}, Limits: model.DefaultLimits()}
}

func TestProcessReturnsContentUnchangedWithoutBlocks(t *testing.T) {
	content := "just some markdown, no fences"
	got := Process(context.Background(), content, testExecCtx())
	if got != content {
		t.Errorf("Process modified content with no blocks: %q", got)
	}
}

func TestProcessSplicesSingleBlockOutput(t *testing.T) {
	content := "before\n```component\necho -n hi\n```\nafter"
	got := Process(context.Background(), content, testExecCtx())
	want := "before\nhi\nafter"
	if got != want {
		t.Errorf("Process = %q, want %q", got, want)
	}
}

func TestProcessSplicesMultipleBlocksPreservingOrder(t *testing.T) {
	content := "```component\necho -n one\n```\nmiddle\n```component\necho -n two\n```\n"
	got := Process(context.Background(), content, testExecCtx())
	want := "one\nmiddle\ntwo\n"
	if got != want {
		t.Errorf("Process = %q, want %q", got, want)
	}
}

func TestProcessReportsNonZeroExit(t *testing.T) {
	content := "```component\nexit 3\n```\n"
	got := Process(context.Background(), content, testExecCtx())
	if !strings.Contains(got, "[eval error: exit 3") {
		t.Errorf("Process = %q, want exit-3 error marker", got)
	}
}

func TestProcessTruncatesExcessBlocks(t *testing.T) {
	content := "```component\necho -n a\n```\n```component\necho -n b\n```\n```component\necho -n c\n```\n"
	execCtx := testExecCtx()
	execCtx.Limits.MaxComponentBlocks = 2
	got := Process(context.Background(), content, execCtx)
	if strings.Contains(got, "```component") == false {
		t.Fatalf("expected third block to remain unevaluated: %q", got)
	}
	if strings.Count(got, "```component") != 1 {
		t.Errorf("expected exactly one untouched block left, got %q", got)
	}
}

func TestTruncateUTF8RespectsRuneBoundary(t *testing.T) {
	s := "héllo"
	got := truncateUTF8(s, 2)
	if got != "h" {
		t.Errorf("truncateUTF8 = %q, want %q (should not split the 2-byte é)", got, "h")
	}
}
