// internal/codeblock/extract_test.go
package codeblock

import (
	"strings"
	"testing"
)

func TestExtractSingleBlock(t *testing.T) {
	content := "Some text\n```go\nfmt.Println(\"hi\")\n```\nmore text"
	blocks := Extract(content)

	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Language != "go" {
		t.Errorf("Expected language go, got %q", blocks[0].Language)
	}
	if blocks[0].Code != "fmt.Println(\"hi\")" {
		t.Errorf("Unexpected code: %q", blocks[0].Code)
	}
}

func TestExtractMultipleBlocks(t *testing.T) {
	content := "```python\nprint(1)\n```\ntext\n```\nplain\n```"
	blocks := Extract(content)

	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Language != "python" {
		t.Errorf("Expected python, got %q", blocks[0].Language)
	}
	if blocks[1].Language != "" {
		t.Errorf("Expected empty language, got %q", blocks[1].Language)
	}
	if blocks[1].Code != "plain" {
		t.Errorf("Unexpected code: %q", blocks[1].Code)
	}
}

func TestExtractUnclosedFence(t *testing.T) {
	content := "intro\n```sh\necho hello"
	blocks := Extract(content)

	if len(blocks) != 1 {
		t.Fatalf("Expected the unclosed block, got %d", len(blocks))
	}
	if blocks[0].Code != "echo hello" {
		t.Errorf("Unexpected code: %q", blocks[0].Code)
	}
}

func TestExtractNoBlocks(t *testing.T) {
	if blocks := Extract("just prose, no fences"); len(blocks) != 0 {
		t.Errorf("Expected no blocks, got %d", len(blocks))
	}
}

func TestExtractPreservesInnerLines(t *testing.T) {
	content := "```\nline one\n\nline three\n```"
	blocks := Extract(content)
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Code != "line one\n\nline three" {
		t.Errorf("Expected blank lines preserved, got %q", blocks[0].Code)
	}
}

func TestExtractAllOrdering(t *testing.T) {
	contents := []string{
		"```\nfirst\n```",
		"no block here",
		"```\nsecond\n```\n```\nthird\n```",
	}
	blocks := ExtractAll(contents)

	if len(blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d", len(blocks))
	}
	for i, want := range []string{"first", "second", "third"} {
		if blocks[i].Code != want {
			t.Errorf("Block %d: expected %q, got %q", i, want, blocks[i].Code)
		}
	}
}

func TestSplitInterleavesProseAndCode(t *testing.T) {
	content := "intro text\n```go\nfmt.Println(1)\n```\nclosing text"
	segs := Split(content)

	if len(segs) != 3 {
		t.Fatalf("Expected 3 segments, got %d", len(segs))
	}
	if segs[0].Block != nil || segs[0].Prose != "intro text" {
		t.Errorf("Unexpected first segment: %+v", segs[0])
	}
	if segs[1].Block == nil {
		t.Fatal("Expected a code segment second")
	}
	if segs[1].Block.Language != "go" || segs[1].Block.Code != "fmt.Println(1)" {
		t.Errorf("Unexpected block: %+v", segs[1].Block)
	}
	if segs[2].Block != nil || segs[2].Prose != "closing text" {
		t.Errorf("Unexpected last segment: %+v", segs[2])
	}
}

func TestSplitProseOnly(t *testing.T) {
	segs := Split("just prose, no fences")
	if len(segs) != 1 || segs[0].Block != nil {
		t.Fatalf("Expected a single prose segment, got %+v", segs)
	}
	if segs[0].Prose != "just prose, no fences" {
		t.Errorf("Unexpected prose: %q", segs[0].Prose)
	}
}

func TestSplitAdjacentBlocks(t *testing.T) {
	content := "```\nfirst\n```\n```\nsecond\n```"
	segs := Split(content)

	var codes []string
	for _, seg := range segs {
		if seg.Block != nil {
			codes = append(codes, seg.Block.Code)
		} else if strings.TrimSpace(seg.Prose) != "" {
			t.Errorf("Expected no prose between the fences, got %q", seg.Prose)
		}
	}
	if len(codes) != 2 || codes[0] != "first" || codes[1] != "second" {
		t.Errorf("Expected both blocks in order, got %v", codes)
	}
}

func TestSplitUnclosedFence(t *testing.T) {
	segs := Split("intro\n```sh\necho hello")

	if len(segs) != 2 {
		t.Fatalf("Expected prose then the unclosed block, got %+v", segs)
	}
	if segs[1].Block == nil || segs[1].Block.Code != "echo hello" {
		t.Errorf("Expected the unclosed block's code, got %+v", segs[1])
	}
}

func TestHighlightReturnsCode(t *testing.T) {
	code := "func main() {}"
	out := Highlight(code, "go")
	if out == "" {
		t.Error("Expected highlighted output")
	}
	// stripped of escape sequences the code must survive intact
	if !strings.Contains(out, "main") {
		t.Errorf("Expected the code text to survive, got %q", out)
	}
}

func TestHighlightUnknownLanguage(t *testing.T) {
	code := "completely ordinary text"
	if out := Highlight(code, "nosuchlang"); out == "" {
		t.Error("Expected output for an unknown language")
	}
}
