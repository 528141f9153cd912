// internal/codeblock/extract.go
package codeblock

import (
	"strings"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Block is one fenced code block lifted from a message
type Block struct {
	Language string
	Code     string
}

// Extract returns the fenced code blocks in content, in order of
// appearance. An unclosed trailing fence still yields a block.
func Extract(content string) []Block {
	var blocks []Block
	var current strings.Builder
	var language string
	inBlock := false

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inBlock {
				blocks = append(blocks, Block{Language: language, Code: current.String()})
				current.Reset()
				inBlock = false
				continue
			}
			language = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			inBlock = true
			continue
		}
		if inBlock {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}

	if inBlock && current.Len() > 0 {
		blocks = append(blocks, Block{Language: language, Code: current.String()})
	}
	return blocks
}

// Segment is one slice of a message: prose, or a fenced code block
type Segment struct {
	Prose string
	Block *Block
}

// Split partitions content into prose and fenced code segments in
// order of appearance, so code can go through the highlighter while
// prose keeps its own rendering.
func Split(content string) []Segment {
	var segs []Segment
	var prose, code strings.Builder
	var language string
	inBlock := false

	flushProse := func() {
		if prose.Len() > 0 {
			segs = append(segs, Segment{Prose: prose.String()})
			prose.Reset()
		}
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inBlock {
				segs = append(segs, Segment{Block: &Block{Language: language, Code: code.String()}})
				code.Reset()
				inBlock = false
				continue
			}
			flushProse()
			language = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			inBlock = true
			continue
		}
		if inBlock {
			if code.Len() > 0 {
				code.WriteString("\n")
			}
			code.WriteString(line)
		} else {
			if prose.Len() > 0 {
				prose.WriteString("\n")
			}
			prose.WriteString(line)
		}
	}

	if inBlock && code.Len() > 0 {
		segs = append(segs, Segment{Block: &Block{Language: language, Code: code.String()}})
	} else if !inBlock {
		flushProse()
	}
	return segs
}

// ExtractAll collects the blocks across several messages, preserving
// message order
func ExtractAll(contents []string) []Block {
	var blocks []Block
	for _, c := range contents {
		blocks = append(blocks, Extract(c)...)
	}
	return blocks
}

// Highlight renders code with ANSI colors for terminal display. On
// any failure the original code comes back unstyled.
func Highlight(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return code
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var sb strings.Builder
	if err := formatter.Format(&sb, style, iterator); err != nil {
		return code
	}
	return sb.String()
}
