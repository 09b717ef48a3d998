// Package chunker splits loaded documents into bounded, semantically
// coherent chunks ready for embedding and retrieval.
package chunker

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"document-qa/internal/config"
	"document-qa/internal/helper"
	"document-qa/internal/models"
)

const (
	DefaultChunkSize      = 800
	DefaultChunkOverlap   = 100
	DefaultMinChunkLength = 50

	// When a window end falls mid-word, the cut is moved back to the last
	// space, but only if that space lies beyond this fraction of the
	// chunk size. Keeps word-safe cuts from producing tiny chunks.
	wordSafeCutFraction = 0.6
)

// headingRe matches lines that start a new section: markdown headings
// (1-6 '#' followed by whitespace) or ALL-CAPS lines of at least six
// characters starting with an uppercase letter.
var headingRe = regexp.MustCompile(`^(?:#{1,6}\s|[A-Z][A-Z\s]{5,})`)

// Chunker is a pure, stateless splitter; all behavior comes from its
// configuration.
type Chunker struct {
	chunkSize      int
	overlap        int
	minChunkLength int
}

// New creates a chunker from config, falling back to defaults for unset
// or unusable values. Overlap is clamped below half the chunk size so
// every window is guaranteed to advance.
func New(cfg *config.ChunkerConfig) *Chunker {
	c := &Chunker{
		chunkSize:      DefaultChunkSize,
		overlap:        DefaultChunkOverlap,
		minChunkLength: DefaultMinChunkLength,
	}
	if cfg != nil {
		if cfg.ChunkSize > 0 {
			c.chunkSize = cfg.ChunkSize
		}
		if cfg.Overlap >= 0 {
			c.overlap = cfg.Overlap
		}
		if cfg.MinChunkLength > 0 {
			c.minChunkLength = cfg.MinChunkLength
		}
	}
	if c.overlap*2 >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}
	return c
}

// ChunkDocuments splits every document by its type, filters out chunks
// below the minimum length, and stamps survivors with a fresh ID, the
// parent source and a doc_type metadata entry. It never fails; malformed
// input just yields fewer chunks.
func (c *Chunker) ChunkDocuments(documents []models.Document) []models.Chunk {
	var all []models.Chunk

	for _, doc := range documents {
		var raw []string
		switch doc.Type {
		case models.DocTypeCSV:
			raw = c.chunkCSV(doc.Content)
		case models.DocTypePDF:
			raw = c.chunkPDF(doc.Content)
		default:
			raw = c.chunkTextByHeading(doc.Content)
		}

		for _, text := range raw {
			text = strings.TrimSpace(text)
			if len(text) < c.minChunkLength {
				continue
			}
			id, err := helper.GenerateUUID()
			if err != nil {
				log.Warn().Err(err).Str("source", doc.Source).Msg("Skipping chunk without ID")
				continue
			}
			all = append(all, models.Chunk{
				ChunkID: id,
				Source:  doc.Source,
				Content: text,
				Metadata: map[string]string{
					models.MetadataDocType: string(doc.Type),
				},
			})
		}
	}

	return all
}

// chunkTextByHeading partitions text at section boundaries and passes
// sections through verbatim when they fit the chunk size; oversized
// sections go through the size-bounded splitter.
func (c *Chunker) chunkTextByHeading(text string) []string {
	var chunks []string
	for _, section := range splitSections(text) {
		if len(section) <= c.chunkSize {
			chunks = append(chunks, strings.TrimSpace(section))
		} else {
			chunks = append(chunks, c.chunkBySize(section)...)
		}
	}
	return chunks
}

// splitSections cuts text before every heading line. The first section
// keeps any preamble that precedes the first heading.
func splitSections(text string) []string {
	lines := strings.Split(text, "\n")
	var sections []string
	var cur strings.Builder
	for i, line := range lines {
		if i > 0 && headingRe.MatchString(line) {
			sections = append(sections, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	sections = append(sections, cur.String())
	return sections
}

// chunkBySize walks the text in chunk-size windows with overlap carried
// into the next window. A window that would cut mid-word is trimmed back
// to its last space when that space sits past 60% of the chunk size.
func (c *Chunker) chunkBySize(text string) []string {
	var chunks []string
	start := 0
	for start < len(text) {
		end := start + c.chunkSize
		if end > len(text) {
			end = len(text)
		}
		window := text[start:end]
		if end < len(text) {
			if cut := strings.LastIndexByte(window, ' '); float64(cut) > wordSafeCutFraction*float64(c.chunkSize) {
				window = window[:cut]
				end = start + cut
			}
		}
		chunks = append(chunks, strings.TrimSpace(window))
		if end >= len(text) {
			break
		}
		start = end - c.overlap
	}
	return chunks
}

// chunkCSV greedily packs whole rows into chunks up to the chunk size.
// Rows are never split across chunks.
func (c *Chunker) chunkCSV(text string) []string {
	var rows []string
	for _, row := range strings.Split(text, "\n") {
		row = strings.TrimSpace(row)
		if row != "" {
			rows = append(rows, row)
		}
	}

	var chunks []string
	var current strings.Builder
	for _, row := range rows {
		if current.Len()+len(row) < c.chunkSize {
			current.WriteString(row)
			current.WriteByte('\n')
		} else {
			if s := strings.TrimSpace(current.String()); s != "" {
				chunks = append(chunks, s)
			}
			current.Reset()
			current.WriteString(row)
			current.WriteByte('\n')
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}

// chunkPDF separates extracted table rows from the main text. Text
// chunks come first, then table chunks grouped by CSV rules.
func (c *Chunker) chunkPDF(text string) []string {
	mainText, tableText, found := strings.Cut(text, models.TableMarker)
	if !found {
		return c.chunkTextByHeading(text)
	}
	chunks := c.chunkTextByHeading(strings.TrimSpace(mainText))
	return append(chunks, c.chunkCSV(strings.TrimSpace(tableText))...)
}
