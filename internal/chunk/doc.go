package chunk

import (
	"regexp"
	"strings"
)

// DocChunkConfig configures the Markdown chunker (C1).
type DocChunkConfig struct {
	TargetSize int // target prose chunk size in characters
	Overlap    int // prose chunk overlap in characters
	// DocTypeByDir maps a file path's top-level (or, failing that, second)
	// directory segment to a DocType. Unmatched or missing segments
	// resolve to DocOther.
	DocTypeByDir map[string]DocType
}

// DefaultDocChunkConfig matches spec.md's stated defaults (1000/100).
func DefaultDocChunkConfig() DocChunkConfig {
	return DocChunkConfig{
		TargetSize: 1000,
		Overlap:    100,
		DocTypeByDir: map[string]DocType{
			"flows":          DocFlow,
			"flow":           DocFlow,
			"sdlc":           DocSDLC,
			"policies":       DocPolicy,
			"policy":         DocPolicy,
			"infrastructure": DocInfrastructure,
			"infra":          DocInfrastructure,
		},
	}
}

var (
	headingPattern   = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	numberedListLine = regexp.MustCompile(`^\s*\d+\.\s`)
	tableRowPattern  = regexp.MustCompile(`^\s*\|.*\|\s*$`)
	tableSepPattern  = regexp.MustCompile(`^\s*\|?[\s:|-]+\|?\s*$`)
	fencePattern     = regexp.MustCompile("^\\s*```\\s*([A-Za-z0-9_+-]*)")
)

// docBlock is a structurally-detected span within one heading section:
// a numbered list, a table, a fenced code block, or a run of plain prose.
type docBlock struct {
	kind       ContentType
	lines      []string
	startLine  int
	endLine    int
	language   string
	listLength int
}

// ChunkMarkdown splits a Markdown document into chunks per spec.md §4.1:
// heading-bounded sections, with numbered lists, tables, and fenced code
// blocks carved out whole before the remaining prose is packed by size.
func ChunkMarkdown(filePath, content string, cfg DocChunkConfig) []Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	lines := strings.Split(content, "\n")
	docType := deriveDocType(filePath, cfg.DocTypeByDir)

	var chunks []Chunk
	section := ""
	i := 0
	n := len(lines)

	for i < n {
		if m := headingPattern.FindStringSubmatch(lines[i]); m != nil {
			headingLine := i + 1 // 1-based
			section = strings.TrimSpace(m[2])
			i++
			if headingHasEmptyBody(lines, i) {
				c := Chunk{
					FilePath:    filePath,
					LineStart:   headingLine,
					LineEnd:     headingLine,
					ContentType: ContentText,
					Language:    "markdown",
					Section:     section,
					DocType:     docType,
					Content:     section,
				}
				c.AssignID()
				c.HashContent()
				chunks = append(chunks, c)
			}
			continue
		}

		if strings.TrimSpace(lines[i]) == "" {
			i++
			continue
		}

		block, next := scanBlock(lines, i)
		chunks = append(chunks, blocksToChunks(filePath, section, docType, block, cfg)...)
		i = next
	}

	return chunks
}

// scanBlock identifies the structural block starting at index i (list,
// table, fenced code, or a run of prose ending at the next heading,
// blank line run into a structural block, or end of input) and returns
// it along with the index to resume scanning from.
func scanBlock(lines []string, i int) (docBlock, int) {
	lineNo := i + 1 // 1-based

	if numberedListLine.MatchString(lines[i]) {
		start := i
		count := 0
		for i < len(lines) && numberedListLine.MatchString(lines[i]) {
			count++
			i++
		}
		return docBlock{
			kind:       ContentList,
			lines:      lines[start:i],
			startLine:  lineNo,
			endLine:    i,
			listLength: count,
		}, i
	}

	if isTableStart(lines, i) {
		start := i
		for i < len(lines) && (tableRowPattern.MatchString(lines[i]) || tableSepPattern.MatchString(lines[i])) {
			i++
		}
		return docBlock{
			kind:      ContentTable,
			lines:     lines[start:i],
			startLine: lineNo,
			endLine:   i,
		}, i
	}

	if m := fencePattern.FindStringSubmatch(lines[i]); m != nil {
		start := i
		lang := m[1]
		i++
		for i < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
			i++
		}
		if i < len(lines) {
			i++ // consume closing fence
		}
		return docBlock{
			kind:      ContentCode,
			lines:     lines[start:i],
			startLine: lineNo,
			endLine:   i,
			language:  lang,
		}, i
	}

	// Prose run: until next heading, blank line, or structural block start.
	start := i
	for i < len(lines) {
		line := lines[i]
		if headingPattern.MatchString(line) || strings.TrimSpace(line) == "" {
			break
		}
		if numberedListLine.MatchString(line) || isTableStart(lines, i) || fencePattern.MatchString(line) {
			break
		}
		i++
	}
	if i == start {
		i++ // never stall
	}
	return docBlock{
		kind:      ContentText,
		lines:     lines[start:i],
		startLine: lineNo,
		endLine:   i,
	}, i
}

// headingHasEmptyBody reports whether the heading ending just before
// index i is followed only by blank lines before the next heading or
// end of input, per spec.md §8 Scenario S1 (a bare heading still
// contributes its own one-line text chunk).
func headingHasEmptyBody(lines []string, i int) bool {
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) {
		return true
	}
	return headingPattern.MatchString(lines[i])
}

func isTableStart(lines []string, i int) bool {
	if !tableRowPattern.MatchString(lines[i]) {
		return false
	}
	if i+1 >= len(lines) {
		return false
	}
	return tableSepPattern.MatchString(lines[i+1])
}

func blocksToChunks(filePath, section string, docType DocType, block docBlock, cfg DocChunkConfig) []Chunk {
	switch block.kind {
	case ContentList:
		c := Chunk{
			FilePath:    filePath,
			LineStart:   block.startLine,
			LineEnd:     block.endLine,
			ContentType: ContentList,
			Language:    "markdown",
			Section:     section,
			DocType:     docType,
			Content:     strings.Join(block.lines, "\n"),
			ListLength:  block.listLength,
			IsComplete:  true,
		}
		c.AssignID()
		c.HashContent()
		return []Chunk{c}
	case ContentTable:
		c := Chunk{
			FilePath:    filePath,
			LineStart:   block.startLine,
			LineEnd:     block.endLine,
			ContentType: ContentTable,
			Language:    "markdown",
			Section:     section,
			DocType:     docType,
			Content:     strings.Join(block.lines, "\n"),
		}
		c.AssignID()
		c.HashContent()
		return []Chunk{c}
	case ContentCode:
		lang := block.language
		if lang == "" {
			lang = "text"
		}
		c := Chunk{
			FilePath:    filePath,
			LineStart:   block.startLine,
			LineEnd:     block.endLine,
			ContentType: ContentCode,
			Language:    lang,
			Section:     section,
			DocType:     docType,
			Content:     strings.Join(block.lines, "\n"),
		}
		c.AssignID()
		c.HashContent()
		return []Chunk{c}
	default:
		return packProse(filePath, section, docType, block, cfg)
	}
}

// packProse packs a prose block into target-sized, overlapping chunks,
// never splitting a line in two.
func packProse(filePath, section string, docType DocType, block docBlock, cfg DocChunkConfig) []Chunk {
	target := cfg.TargetSize
	if target <= 0 {
		target = 1000
	}
	overlap := cfg.Overlap

	var chunks []Chunk
	start := 0
	for start < len(block.lines) {
		size := 0
		end := start
		for end < len(block.lines) {
			size += len(block.lines[end]) + 1
			end++
			if size >= target {
				break
			}
		}

		text := strings.TrimSpace(strings.Join(block.lines[start:end], "\n"))
		if text != "" {
			c := Chunk{
				FilePath:    filePath,
				LineStart:   block.startLine + start,
				LineEnd:     block.startLine + end - 1,
				ContentType: ContentText,
				Language:    "markdown",
				Section:     section,
				DocType:     docType,
				Content:     text,
			}
			c.AssignID()
			c.HashContent()
			chunks = append(chunks, c)
		}

		if end >= len(block.lines) {
			break
		}

		// Walk back from end to build the overlap window for the next chunk.
		back := end
		backSize := 0
		for back > start && backSize < overlap {
			back--
			backSize += len(block.lines[back]) + 1
		}
		if back <= start {
			back = end // guarantee forward progress
		}
		start = back
	}

	return chunks
}

// deriveDocType maps a file path's top-level directory segment (e.g.
// "docs/flows/checkout.md" -> "docs") to a DocType via mapping; when
// that segment is unmapped it tries the second segment ("flows"), and
// falls back to DocOther when neither is mapped or the path has no
// directory.
func deriveDocType(filePath string, mapping map[string]DocType) DocType {
	clean := strings.TrimPrefix(strings.ReplaceAll(filePath, "\\", "/"), "/")
	parts := strings.SplitN(clean, "/", 2)
	if len(parts) < 2 {
		return DocOther
	}
	if dt, ok := mapping[strings.ToLower(parts[0])]; ok {
		return dt
	}
	// Also check the second segment, since a common layout nests docs
	// under a shared "docs/" root (e.g. "docs/sdlc/onboarding.md").
	if len(parts) == 2 {
		rest := strings.SplitN(parts[1], "/", 2)
		if dt, ok := mapping[strings.ToLower(rest[0])]; ok {
			return dt
		}
	}
	return DocOther
}
