package models

const (
	// FallbackAnswer is returned whenever retrieval or generation cannot
	// produce a grounded answer. The generator prompt instructs the model
	// to emit this exact sentence, so the two must stay in sync.
	FallbackAnswer = "I do not have enough information to answer this question."

	// TableMarker separates extracted table rows from the main text in
	// PDF content produced by the loader.
	TableMarker = "=== EXTRACTED TABLE DATA ==="

	// MetadataDocType is the metadata key carrying the document type on
	// every chunk.
	MetadataDocType = "doc_type"

	// MetadataSource is the metadata key carrying the source filename on
	// every indexed entry.
	MetadataSource = "source"
)

var (
	GroundedPromptTemplate = `You MUST answer using ONLY the provided context blocks.

CRITICAL RULES:
1. Do NOT use any external knowledge.
2. Do NOT invent missing details.
3. If the answer is not clearly found in the context, respond:
   "I do not have enough information to answer this question."
4. If the question is ambiguous (e.g., asks about pricing or features without specifying product or plan tier):
   - Identify relevant products or plan tiers mentioned in the context.
   - Briefly list the possible options found.
   - Ask the user to clarify which specific product or plan they mean.
5. If information differs across context blocks, clearly distinguish them by product or plan tier.
6. Do NOT say "According to the context".
7. Keep answers concise, structured, and factual.
8. Prefer bullet points for multiple features or comparisons.

Context Blocks:
%s

User Question:
%s

Final Answer:
`
)
