// Package component implements spec.md §4.7: scanning a markdown
// document for fenced ```component blocks, executing each concurrently
// under a fixed, small resource budget, and splicing the results back
// into the document.
//
// The fence scanner is a direct Go port of the original Rust
// find_next_eval_block/find_closing_fence pair (original_source
// crates/statespace-tool-runtime/src/eval.rs): a fence only counts at
// the start of a line, and the block's info string must be exactly
// "component" — any other fenced block (```rust, ```json, a bare
// ```) is left untouched.
package component

import "strings"

// EvalBlock is a single fenced component block found in a document.
type EvalBlock struct {
	// Start and End are byte offsets into the source document; End is
	// exclusive and includes the trailing newline after the closing
	// fence, if present.
	Start, End int
	Code       string
}

// ParseBlocks returns every ```component block in content, in document
// order.
func ParseBlocks(content string) []EvalBlock {
	var blocks []EvalBlock
	searchFrom := 0
	for {
		block, ok := findNextEvalBlock(content, searchFrom)
		if !ok {
			break
		}
		searchFrom = block.End
		blocks = append(blocks, block)
	}
	return blocks
}

func findNextEvalBlock(content string, start int) (EvalBlock, bool) {
	pos := start
	for {
		fenceOffset := indexFrom(content, "```", pos)
		if fenceOffset < 0 {
			return EvalBlock{}, false
		}

		if fenceOffset > 0 && content[fenceOffset-1] != '\n' {
			pos = fenceOffset + 3
			continue
		}

		afterFence := fenceOffset + 3
		newlineOffset := indexFrom(content, "\n", afterFence)
		if newlineOffset < 0 {
			pos = fenceOffset + 3
			continue
		}

		infoString := strings.TrimSpace(content[afterFence:newlineOffset])
		if infoString != "component" {
			pos = fenceOffset + 3
			continue
		}

		codeStart := newlineOffset + 1
		closeOffset, ok := findClosingFence(content[codeStart:])
		if !ok {
			return EvalBlock{}, false
		}

		code := strings.TrimRight(content[codeStart:codeStart+closeOffset], "\n")
		blockEnd := codeStart + closeOffset + 3
		if blockEnd < len(content) && content[blockEnd] == '\n' {
			blockEnd++
		}

		return EvalBlock{Start: fenceOffset, End: blockEnd, Code: code}, true
	}
}

// findClosingFence finds the first line-starting ``` in content,
// returning its offset.
func findClosingFence(content string) (int, bool) {
	pos := 0
	for {
		fenceOffset := indexFrom(content, "```", pos)
		if fenceOffset < 0 {
			return 0, false
		}
		if fenceOffset == 0 || content[fenceOffset-1] == '\n' {
			return fenceOffset, true
		}
		pos = fenceOffset + 3
	}
}

func indexFrom(s, substr string, from int) int {
	if from >= len(s) {
		return -1
	}
	idx := strings.Index(s[from:], substr)
	if idx < 0 {
		return -1
	}
	return from + idx
}
