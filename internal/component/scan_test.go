package component

import "testing"

func TestParseBlocksFindsSingleBlock(t *testing.T) {
	content := "before\n```component\necho hi\n```\nafter"
	blocks := ParseBlocks(content)
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].Code != "echo hi" {
		t.Errorf("Code = %q, want %q", blocks[0].Code, "echo hi")
	}
	if content[blocks[0].Start:blocks[0].Start+3] != "```" {
		t.Errorf("Start does not point at opening fence")
	}
}

func TestParseBlocksIgnoresOtherLanguageFences(t *testing.T) {
	content := "```rust\nfn main() {}\n```\n"
	blocks := ParseBlocks(content)
	if len(blocks) != 0 {
		t.Fatalf("got %d blocks, want 0", len(blocks))
	}
}

func TestParseBlocksIgnoresBareFence(t *testing.T) {
	content := "```\nplain text\n```\n"
	blocks := ParseBlocks(content)
	if len(blocks) != 0 {
		t.Fatalf("got %d blocks, want 0", len(blocks))
	}
}

func TestParseBlocksIgnoresMidLineFence(t *testing.T) {
	content := "some text ```component\nnope\n```\n"
	blocks := ParseBlocks(content)
	if len(blocks) != 0 {
		t.Fatalf("got %d blocks, want 0 (fence mid-line)", len(blocks))
	}
}

func TestParseBlocksFindsMultipleBlocksInOrder(t *testing.T) {
	content := "```component\nfirst\n```\nmiddle\n```component\nsecond\n```\n"
	blocks := ParseBlocks(content)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if blocks[0].Code != "first" || blocks[1].Code != "second" {
		t.Errorf("blocks = %+v", blocks)
	}
	if blocks[0].Start >= blocks[1].Start {
		t.Errorf("blocks out of order: %+v", blocks)
	}
}

func TestParseBlocksUnclosedFenceYieldsNone(t *testing.T) {
	content := "```component\nno closing fence here\n"
	blocks := ParseBlocks(content)
	if len(blocks) != 0 {
		t.Fatalf("got %d blocks, want 0 for unclosed fence", len(blocks))
	}
}
