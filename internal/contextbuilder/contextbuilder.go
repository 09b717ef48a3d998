// Package contextbuilder turns ranked retrieval hits into a single
// prompt-ready text blob. Pure string formatting; ranking is the
// pipeline's responsibility.
package contextbuilder

import (
	"fmt"
	"strings"

	"document-qa/internal/models"
)

const blockSeparator = "\n\n-----------------------------\n\n"

// Build concatenates one labeled block per hit, in result order, joined
// by a blank line.
func Build(hits []models.Hit) string {
	blocks := make([]string, len(hits))
	for i, hit := range hits {
		blocks[i] = fmt.Sprintf("[Source %d] %s", i+1, strings.TrimSpace(hit.Text))
	}
	return strings.Join(blocks, "\n\n")
}

// BuildDetailed renders each hit with its source file and document type,
// separated by dashed lines. Used for verbose logging of what grounded
// an answer.
func BuildDetailed(hits []models.Hit) string {
	blocks := make([]string, len(hits))
	for i, hit := range hits {
		source := hit.Metadata[models.MetadataSource]
		if source == "" {
			source = "Unknown Source"
		}
		docType := hit.Metadata[models.MetadataDocType]
		if docType == "" {
			docType = "Unknown Type"
		}
		blocks[i] = fmt.Sprintf("[Context Block %d]\nSource File: %s\nDocument Type: %s\n\n%s",
			i+1, source, docType, strings.TrimSpace(hit.Text))
	}
	return strings.Join(blocks, blockSeparator)
}
