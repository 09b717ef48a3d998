// Package loader reads documents from a data directory, detects their
// type by extension or content sniffing, and produces plain-text
// Document values for the chunker. Unreadable, binary and undersized
// files are skipped, never surfaced as errors.
package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"

	"document-qa/internal/helper"
	"document-qa/internal/models"
)

// MinContentLength is the smallest content size worth indexing; anything
// shorter is treated as noise and dropped.
const MinContentLength = 50

const sniffLen = 1024

var (
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	scriptRe     = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	whitespaceRe = regexp.MustCompile(`[ \t]+`)
)

type Loader struct {
	dataDir string
}

func New(dataDir string) *Loader {
	return &Loader{dataDir: dataDir}
}

// Load reads every regular file in the data directory. Per-file failures
// are logged and skipped; only an unreadable directory is an error.
func (l *Loader) Load(ctx context.Context) ([]models.Document, error) {
	entries, err := os.ReadDir(l.dataDir)
	if err != nil {
		return nil, err
	}

	var documents []models.Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(l.dataDir, entry.Name())
		docType := detectFileType(path)
		if docType == models.DocTypeBinary || docType == models.DocTypeUnknown {
			log.Debug().Str("file", entry.Name()).Str("type", string(docType)).Msg("Skipping file")
			continue
		}

		content, readErr := l.readFile(path, docType)
		if readErr != nil {
			log.Warn().Err(readErr).Str("file", entry.Name()).Msg("Skipping unreadable file")
			continue
		}

		content = strings.TrimSpace(content)
		if len(content) < MinContentLength {
			log.Debug().Str("file", entry.Name()).Msg("Skipping undersized content")
			continue
		}

		id, err := helper.GenerateUUID()
		if err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping file without ID")
			continue
		}
		documents = append(documents, models.Document{
			ID:      id,
			Source:  entry.Name(),
			Type:    docType,
			Content: content,
		})
	}

	log.Info().Int("count", len(documents)).Str("dir", l.dataDir).Msg("Loaded documents")
	return documents, nil
}

func (l *Loader) readFile(path string, docType models.DocType) (string, error) {
	switch docType {
	case models.DocTypeCSV:
		return readCSV(path)
	case models.DocTypePDF:
		return readPDF(path)
	case models.DocTypeHTML:
		return readHTML(path)
	default:
		return readText(path)
	}
}

// detectFileType trusts csv/text/markdown/docx extensions and sniffs the
// first KB of everything else: PDF magic bytes, an html tag, valid UTF-8
// as text, anything else as binary.
func detectFileType(path string) models.DocType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return models.DocTypeCSV
	case ".txt", ".md":
		return models.DocTypeText
	case ".docx":
		// DOCX is a zip container; sniffing would misread it as binary.
		return models.DocTypeText
	}

	f, err := os.Open(path)
	if err != nil {
		return models.DocTypeUnknown
	}
	defer f.Close()

	header := make([]byte, sniffLen)
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		return models.DocTypeUnknown
	}
	header = header[:n]

	if bytes.HasPrefix(header, []byte("%PDF")) {
		return models.DocTypePDF
	}
	if bytes.Contains(bytes.ToLower(header), []byte("<html")) {
		return models.DocTypeHTML
	}
	if utf8.Valid(header) {
		return models.DocTypeText
	}
	return models.DocTypeBinary
}

func readText(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".docx") {
		return readDOCX(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readCSV renders each row as "Header: value | Header: value" semantic
// text, which grounds retrieval better than raw comma-separated cells.
func readCSV(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}

	headers := records[0]
	var rows []string
	for _, record := range records[1:] {
		var parts []string
		for i, cell := range record {
			cell = strings.TrimSpace(cell)
			if cell == "" || i >= len(headers) {
				continue
			}
			parts = append(parts, strings.TrimSpace(headers[i])+": "+cell)
		}
		if len(parts) > 0 {
			rows = append(rows, strings.Join(parts, " | "))
		}
	}
	return strings.Join(rows, "\n"), nil
}

func readPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", err
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			log.Warn().Err(err).Str("file", filepath.Base(path)).Int("page", i).Msg("Skipping PDF page")
			continue
		}
		if strings.TrimSpace(pageText) != "" {
			pages = append(pages, pageText)
		}
	}
	return strings.Join(pages, "\n"), nil
}

func readDOCX(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	content = stripTags(content)

	var paragraphs []string
	for _, p := range strings.Split(content, "\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, strings.TrimSpace(p))
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}

func readHTML(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return stripTags(string(data)), nil
}

// stripTags removes script/style blocks and all markup, unescapes
// entities and collapses runs of spaces.
func stripTags(s string) string {
	s = scriptRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = whitespaceRe.ReplaceAllString(s, " ")

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}
