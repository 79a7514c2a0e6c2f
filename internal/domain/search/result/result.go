// Package result holds the normalized search response returned to API callers.
//
// Field names follow the vendor's JSON form so existing clients keep working,
// but the shape is owned here and versioned by SchemaVersion.
package result

// SchemaVersion identifies the response contract.
const SchemaVersion = "v1"

// Response is a normalized search response.
type Response struct {
	Results            []Item              `json:"results,omitempty"`
	TotalSize          int32               `json:"totalSize,omitempty"`
	AttributionToken   string              `json:"attributionToken,omitempty"`
	NextPageToken      string              `json:"nextPageToken,omitempty"`
	CorrectedQuery     string              `json:"correctedQuery,omitempty"`
	Summary            *Summary            `json:"summary,omitempty"`
	QueryExpansionInfo *QueryExpansionInfo `json:"queryExpansionInfo,omitempty"`
}

// Item is a single search hit.
type Item struct {
	ID       string    `json:"id,omitempty"`
	Document *Document `json:"document,omitempty"`
}

// Document is the indexed document attached to a hit.
// StructData and DerivedStructData are free-form; derived data carries
// snippets, link, title and extractive answers/segments.
type Document struct {
	Name              string         `json:"name,omitempty"`
	ID                string         `json:"id,omitempty"`
	StructData        map[string]any `json:"structData,omitempty"`
	DerivedStructData map[string]any `json:"derivedStructData,omitempty"`
	Content           *Content       `json:"content,omitempty"`
}

// Content points at the stored document body.
type Content struct {
	MimeType string `json:"mimeType,omitempty"`
	URI      string `json:"uri,omitempty"`
}

// Summary is the generated answer over the top results.
type Summary struct {
	SummaryText           string               `json:"summaryText,omitempty"`
	SummarySkippedReasons []string             `json:"summarySkippedReasons,omitempty"`
	SummaryWithMetadata   *SummaryWithMetadata `json:"summaryWithMetadata,omitempty"`
}

// SummaryWithMetadata is the summary with citation and reference data.
type SummaryWithMetadata struct {
	Summary          string            `json:"summary,omitempty"`
	CitationMetadata *CitationMetadata `json:"citationMetadata,omitempty"`
	References       []Reference       `json:"references,omitempty"`
}

// CitationMetadata lists the citations of a summary.
type CitationMetadata struct {
	Citations []Citation `json:"citations,omitempty"`
}

// Citation maps a summary span to its sources.
type Citation struct {
	StartIndex int64            `json:"startIndex,omitempty"`
	EndIndex   int64            `json:"endIndex,omitempty"`
	Sources    []CitationSource `json:"sources,omitempty"`
}

// CitationSource points into References.
type CitationSource struct {
	ReferenceIndex int64 `json:"referenceIndex"`
}

// Reference is a document cited by the summary.
type Reference struct {
	Title         string         `json:"title,omitempty"`
	Document      string         `json:"document,omitempty"`
	URI           string         `json:"uri,omitempty"`
	ChunkContents []ChunkContent `json:"chunkContents,omitempty"`
}

// ChunkContent is a cited chunk of a referenced document.
type ChunkContent struct {
	Content        string `json:"content,omitempty"`
	PageIdentifier string `json:"pageIdentifier,omitempty"`
}

// QueryExpansionInfo reports whether the query was expanded.
type QueryExpansionInfo struct {
	ExpandedQuery     bool  `json:"expandedQuery,omitempty"`
	PinnedResultCount int64 `json:"pinnedResultCount,omitempty"`
}
