// Package synthesize implements the answer synthesizer (C8): it turns a
// reranked chunk pool into a textual answer plus a citation list, using
// an intent-specific strategy (spec §4.8).
package synthesize

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/open-rag/reporag/internal/chunk"
	"github.com/open-rag/reporag/internal/classify"
	"github.com/open-rag/reporag/internal/store"
)

// Citation is one emitted-chunk provenance record (spec §4.8: "every
// emitted chunk contributes one citation record").
type Citation struct {
	FilePath  string
	LineStart int
	LineEnd   int
	Section   string
}

// Result is the synthesizer's output.
type Result struct {
	Answer    string
	Citations []Citation
}

// Group is one operand's chunk pool. Every intent but comparison
// synthesizes from a single Group; comparison synthesizes two, one per
// operand, and renders them side by side (spec §4.8).
type Group struct {
	Label  string // operand name for comparison; empty otherwise
	Chunks []store.ScoredChunk
}

// citationTracker appends citations in first-reference order, one per
// distinct chunk id.
type citationTracker struct {
	seen  map[uint64]bool
	order []Citation
}

func newCitationTracker() *citationTracker {
	return &citationTracker{seen: make(map[uint64]bool)}
}

func (t *citationTracker) add(c *chunk.Chunk) {
	if t.seen[c.ID] {
		return
	}
	t.seen[c.ID] = true
	t.order = append(t.order, Citation{
		FilePath:  c.FilePath,
		LineStart: c.LineStart,
		LineEnd:   c.LineEnd,
		Section:   c.Section,
	})
}

// Synthesize runs C8 for the given intent over groups.
func Synthesize(intent classify.Intent, query string, groups []Group) (Result, error) {
	if len(groups) == 0 || len(groups[0].Chunks) == 0 {
		return Result{Answer: "No relevant content was found."}, nil
	}

	switch intent {
	case classify.IntentEnumeration:
		return synthesizeEnumeration(groups[0].Chunks)
	case classify.IntentCodeSearch:
		return synthesizeCodeSearch(groups[0].Chunks)
	case classify.IntentFactual:
		return synthesizeFactual(groups[0].Chunks)
	case classify.IntentComparison:
		return synthesizeComparison(groups)
	case classify.IntentExplanation:
		fallthrough
	default:
		return synthesizeExplanation(groups[0].Chunks)
	}
}

var enumerationLine = regexp.MustCompile(`^\s*(\d+)\.\s(.*)$`)

type enumEntry struct {
	n     int
	text  string
	chunk *chunk.Chunk
}

// synthesizeEnumeration implements spec §4.8's enumeration strategy.
func synthesizeEnumeration(chunks []store.ScoredChunk) (Result, error) {
	var entries []enumEntry
	tracker := newCitationTracker()

	for i := range chunks {
		c := &chunks[i].Chunk
		for _, line := range strings.Split(c.Content, "\n") {
			m := enumerationLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			entries = append(entries, enumEntry{n: n, text: strings.TrimSpace(m[2]), chunk: c})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].n < entries[j].n })

	seen := make(map[int]bool)
	var deduped []enumEntry
	for _, e := range entries {
		if seen[e.n] {
			continue
		}
		seen[e.n] = true
		deduped = append(deduped, e)
	}

	var b strings.Builder
	for _, e := range deduped {
		fmt.Fprintf(&b, "%d. %s\n", e.n, e.text)
		tracker.add(e.chunk)
	}

	if len(deduped) == 0 {
		return Result{Answer: "No enumerable items were found in the retrieved content.", Citations: nil}, nil
	}

	if isContiguous(deduped) {
		fmt.Fprintf(&b, "\ncomplete (1..%d)\n", deduped[len(deduped)-1].n)
	} else {
		missing := missingIndices(deduped)
		fmt.Fprintf(&b, "\nincomplete; missing: %s\n", joinInts(missing))
	}

	return Result{Answer: strings.TrimRight(b.String(), "\n"), Citations: tracker.order}, nil
}

func isContiguous(entries []enumEntry) bool {
	if len(entries) == 0 {
		return true
	}
	if entries[0].n != 1 {
		return false
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].n != entries[i-1].n+1 {
			return false
		}
	}
	return true
}

func missingIndices(entries []enumEntry) []int {
	if len(entries) == 0 {
		return nil
	}
	present := make(map[int]bool, len(entries))
	max := entries[0].n
	for _, e := range entries {
		present[e.n] = true
		if e.n > max {
			max = e.n
		}
	}
	var missing []int
	for i := 1; i <= max; i++ {
		if !present[i] {
			missing = append(missing, i)
		}
	}
	return missing
}

func joinInts(ints []int) string {
	parts := make([]string, len(ints))
	for i, n := range ints {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

// synthesizeExplanation implements spec §4.8's explanation strategy.
func synthesizeExplanation(chunks []store.ScoredChunk) (Result, error) {
	byFile := make(map[string][]*chunk.Chunk)
	var fileOrder []string
	for i := range chunks {
		c := &chunks[i].Chunk
		if _, ok := byFile[c.FilePath]; !ok {
			fileOrder = append(fileOrder, c.FilePath)
		}
		byFile[c.FilePath] = append(byFile[c.FilePath], c)
	}

	tracker := newCitationTracker()
	var b strings.Builder

	for _, path := range fileOrder {
		group := byFile[path]
		sort.SliceStable(group, func(i, j int) bool { return group[i].LineStart < group[j].LineStart })
		group = dropOverlapped(group)

		fmt.Fprintf(&b, "## %s\n\n", path)
		for _, c := range group {
			b.WriteString(c.Content)
			b.WriteString("\n\n")
			tracker.add(c)
		}
	}

	return Result{Answer: strings.TrimRight(b.String(), "\n"), Citations: tracker.order}, nil
}

// dropOverlapped keeps the longer chunk whenever two line ranges
// intersect, per spec §4.8. group must already be sorted by LineStart.
func dropOverlapped(group []*chunk.Chunk) []*chunk.Chunk {
	var out []*chunk.Chunk
	for _, c := range group {
		if len(out) == 0 {
			out = append(out, c)
			continue
		}
		last := out[len(out)-1]
		if c.LineStart <= last.LineEnd { // overlap
			if length(c) > length(last) {
				out[len(out)-1] = c
			}
			continue
		}
		out = append(out, c)
	}
	return out
}

func length(c *chunk.Chunk) int { return c.LineEnd - c.LineStart }

// synthesizeCodeSearch implements spec §4.8's code search strategy.
func synthesizeCodeSearch(chunks []store.ScoredChunk) (Result, error) {
	byFile := make(map[string][]*chunk.Chunk)
	var fileOrder []string
	for i := range chunks {
		c := &chunks[i].Chunk
		if _, ok := byFile[c.FilePath]; !ok {
			fileOrder = append(fileOrder, c.FilePath)
		}
		byFile[c.FilePath] = append(byFile[c.FilePath], c)
	}

	tracker := newCitationTracker()
	var b strings.Builder

	for _, path := range fileOrder {
		group := byFile[path]
		sort.SliceStable(group, func(i, j int) bool { return group[i].LineStart < group[j].LineStart })
		for _, c := range group {
			locator := fmt.Sprintf("%s:%d-%d", c.FilePath, c.LineStart, c.LineEnd)
			if c.ClassName != "" && c.Name != "" {
				locator += " " + c.ClassName + "." + c.Name
			} else if c.Name != "" {
				locator += " " + c.Name
			}
			fmt.Fprintf(&b, "%s\n```%s\n%s\n```\n\n", locator, c.Language, c.Content)
			tracker.add(c)
		}
	}

	return Result{Answer: strings.TrimRight(b.String(), "\n"), Citations: tracker.order}, nil
}

// synthesizeFactual implements spec §4.8's factual strategy: the single
// highest-ranked chunk verbatim.
func synthesizeFactual(chunks []store.ScoredChunk) (Result, error) {
	best := chunks[0]
	for _, c := range chunks[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	tracker := newCitationTracker()
	tracker.add(&best.Chunk)
	return Result{Answer: best.Chunk.Content, Citations: tracker.order}, nil
}

// synthesizeComparison implements spec §4.8's comparison strategy: two
// explanation syntheses, one per operand, side by side under headings.
func synthesizeComparison(groups []Group) (Result, error) {
	var b strings.Builder
	tracker := newCitationTracker()

	for _, g := range groups {
		label := g.Label
		if label == "" {
			label = "operand"
		}
		fmt.Fprintf(&b, "# %s\n\n", label)

		sub, err := synthesizeExplanation(g.Chunks)
		if err != nil {
			return Result{}, err
		}
		b.WriteString(sub.Answer)
		b.WriteString("\n\n")
		for _, c := range sub.Citations {
			if !tracker.seen[citationKey(c)] {
				tracker.seen[citationKey(c)] = true
				tracker.order = append(tracker.order, c)
			}
		}
	}

	return Result{Answer: strings.TrimRight(b.String(), "\n"), Citations: tracker.order}, nil
}

// citationKey derives a synthetic tracking key for already-built Citation
// values (comparison merges two independently-tracked citation lists, so
// it dedups on the citation's own identity rather than a chunk id).
func citationKey(c Citation) uint64 {
	h := uint64(14695981039346656037)
	for _, s := range []string{c.FilePath, strconv.Itoa(c.LineStart), strconv.Itoa(c.LineEnd), c.Section} {
		for _, r := range s {
			h ^= uint64(r)
			h *= 1099511628211
		}
	}
	return h
}
