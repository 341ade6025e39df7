package component

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/semaphore"

	"github.com/nextlevelbuilder/toolspace/internal/model"
)

// Per-block limits are fixed, not configurable by the document or the
// caller (spec.md §4.7): a component block is untrusted document
// content, not an author-authorized tool call, so it gets the tightest
// budget in the system regardless of the governing ExecutionLimits.
const (
	blockTimeout   = 5 * time.Second
	blockMaxOutput = 1 << 20 // 1MiB
	errorDetailMax = 256
)

// EvalResult is the outcome of running one block.
type EvalResult struct {
	Output  string
	Success bool
}

// Process scans content for component blocks and replaces each with
// its execution output, honoring ExecutionLimits.MaxComponentBlocks and
// MaxConcurrentComponents from ctx. A single block's failure never
// aborts the whole document — a failing block is replaced with an
// "[eval error: ...]" marker (spec.md §6 error taxonomy for component
// evaluation is intentionally out of band from the §7 taxonomy used by
// tool calls).
func Process(ctx context.Context, content string, execCtx *model.ExecutionContext) string {
	blocks := ParseBlocks(content)
	if len(blocks) == 0 {
		return content
	}

	limits := execCtx.Limits
	maxBlocks := limits.MaxComponentBlocks
	if maxBlocks <= 0 {
		maxBlocks = model.DefaultLimits().MaxComponentBlocks
	}
	if len(blocks) > maxBlocks {
		blocks = blocks[:maxBlocks]
	}

	concurrency := limits.MaxConcurrentComponents
	if concurrency <= 0 {
		concurrency = model.DefaultLimits().MaxConcurrentComponents
	}
	sem := semaphore.NewWeighted(int64(concurrency))

	results := make([]EvalResult, len(blocks))
	var wg sync.WaitGroup
	for i, block := range blocks {
		wg.Add(1)
		go func(i int, block EvalBlock) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = EvalResult{Output: "[eval error: internal]"}
				return
			}
			defer sem.Release(1)
			results[i] = executeBlock(ctx, block, execCtx)
		}(i, block)
	}
	wg.Wait()

	return splice(content, blocks, results)
}

// splice replaces each block's byte range with its result, processing
// in descending start-offset order so earlier offsets in the document
// remain valid as later (rightward) ranges are replaced first. When a
// block's range absorbed the newline after its closing fence, that
// newline is written back after the output so the following line stays
// on its own line.
func splice(content string, blocks []EvalBlock, results []EvalResult) string {
	order := make([]int, len(blocks))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return blocks[order[a]].Start > blocks[order[b]].Start
	})

	out := content
	for _, i := range order {
		block := blocks[i]
		replacement := results[i].Output
		if strings.HasSuffix(content[block.Start:block.End], "\n") {
			replacement += "\n"
		}
		out = out[:block.Start] + replacement + out[block.End:]
	}
	return out
}

// executeBlock runs a single block's code under sh -c with a sanitized
// environment, matching the original's env_clear + fixed PATH/HOME/LANG
// plus scratch/workspace overlay (original_source
// crates/statespace-tool-runtime/src/eval.rs execute_eval_block).
func executeBlock(ctx context.Context, block EvalBlock, execCtx *model.ExecutionContext) EvalResult {
	runCtx, cancel := context.WithTimeout(ctx, blockTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", block.Code)
	cmd.Dir = blockWorkingDir(execCtx)
	cmd.Env = blockEnv(execCtx)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		return EvalResult{Output: fmt.Sprintf("[eval error: timed out after %s]", blockTimeout)}
	}

	if err == nil {
		out := strings.TrimRight(stdout.String(), "\n \t")
		return EvalResult{Output: truncateUTF8(out, blockMaxOutput), Success: true}
	}

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return EvalResult{Output: fmt.Sprintf("[eval error: %s]", err)}
	}

	combined := strings.TrimRight(stderr.String(), "\n")
	if combined == "" {
		combined = strings.TrimRight(stdout.String(), "\n")
	}
	msg := fmt.Sprintf("[eval error: exit %d", exitErr.ExitCode())
	if combined != "" {
		msg += " — " + truncateWithEllipsis(combined, errorDetailMax)
	}
	msg += "]"
	return EvalResult{Output: msg}
}

func blockWorkingDir(execCtx *model.ExecutionContext) string {
	if execCtx.WorkspaceDir != "" {
		return execCtx.WorkspaceDir
	}
	return execCtx.ContentRoot
}

func blockEnv(execCtx *model.ExecutionContext) []string {
	env := []string{
		"PATH=/usr/local/bin:/usr/bin:/bin",
		"HOME=/tmp",
		"LANG=C.UTF-8",
	}
	if execCtx.ScratchDir != "" {
		env = append(env, "STATESPACE_SCRATCH="+execCtx.ScratchDir)
	}
	if execCtx.WorkspaceDir != "" {
		env = append(env, "STATESPACE_WORKSPACE="+execCtx.WorkspaceDir)
	}
	return env
}

func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func truncateWithEllipsis(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return truncateUTF8(s, limit) + "…"
}
