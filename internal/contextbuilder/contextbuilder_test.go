package contextbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"document-qa/internal/models"
)

func TestBuild(t *testing.T) {
	hits := []models.Hit{
		{Text: "  first block  "},
		{Text: "second block"},
	}
	assert.Equal(t, "[Source 1] first block\n\n[Source 2] second block", Build(hits))
}

func TestBuild_Empty(t *testing.T) {
	assert.Equal(t, "", Build(nil))
}

func TestBuildDetailed(t *testing.T) {
	hits := []models.Hit{
		{Text: "pricing text", Metadata: map[string]string{
			models.MetadataSource:  "pricing.csv",
			models.MetadataDocType: "csv",
		}},
		{Text: "no metadata"},
	}

	out := BuildDetailed(hits)
	assert.Contains(t, out, "[Context Block 1]\nSource File: pricing.csv\nDocument Type: csv\n\npricing text")
	assert.Contains(t, out, "Source File: Unknown Source")
	assert.Contains(t, out, "-----------------------------")
}
