package discoveryengine

import (
	"cloud.google.com/go/discoveryengine/apiv1/discoveryenginepb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/kailas-cloud/cymbalsearch/internal/domain/search/result"
)

// toResult maps a vendor search page to the v1 response shape.
func toResult(resp *discoveryenginepb.SearchResponse) *result.Response {
	out := &result.Response{
		TotalSize:        resp.GetTotalSize(),
		AttributionToken: resp.GetAttributionToken(),
		NextPageToken:    resp.GetNextPageToken(),
		CorrectedQuery:   resp.GetCorrectedQuery(),
		Summary:          toSummary(resp.GetSummary()),
	}

	if results := resp.GetResults(); len(results) > 0 {
		out.Results = make([]result.Item, 0, len(results))
		for _, r := range results {
			out.Results = append(out.Results, result.Item{
				ID:       r.GetId(),
				Document: toDocument(r.GetDocument()),
			})
		}
	}

	if qe := resp.GetQueryExpansionInfo(); qe != nil {
		out.QueryExpansionInfo = &result.QueryExpansionInfo{
			ExpandedQuery:     qe.GetExpandedQuery(),
			PinnedResultCount: qe.GetPinnedResultCount(),
		}
	}
	return out
}

func toDocument(d *discoveryenginepb.Document) *result.Document {
	if d == nil {
		return nil
	}
	doc := &result.Document{
		Name:              d.GetName(),
		ID:                d.GetId(),
		StructData:        structToMap(d.GetStructData()),
		DerivedStructData: structToMap(d.GetDerivedStructData()),
	}
	if c := d.GetContent(); c != nil {
		doc.Content = &result.Content{MimeType: c.GetMimeType(), URI: c.GetUri()}
	}
	return doc
}

func toSummary(s *discoveryenginepb.SearchResponse_Summary) *result.Summary {
	if s == nil {
		return nil
	}
	out := &result.Summary{SummaryText: s.GetSummaryText()}

	for _, r := range s.GetSummarySkippedReasons() {
		out.SummarySkippedReasons = append(out.SummarySkippedReasons, r.String())
	}

	if m := s.GetSummaryWithMetadata(); m != nil {
		out.SummaryWithMetadata = &result.SummaryWithMetadata{
			Summary:          m.GetSummary(),
			CitationMetadata: toCitationMetadata(m.GetCitationMetadata()),
			References:       toReferences(m.GetReferences()),
		}
	}
	return out
}

func toCitationMetadata(cm *discoveryenginepb.SearchResponse_Summary_CitationMetadata) *result.CitationMetadata {
	if cm == nil {
		return nil
	}
	out := &result.CitationMetadata{}
	for _, c := range cm.GetCitations() {
		cit := result.Citation{StartIndex: c.GetStartIndex(), EndIndex: c.GetEndIndex()}
		for _, src := range c.GetSources() {
			cit.Sources = append(cit.Sources, result.CitationSource{ReferenceIndex: src.GetReferenceIndex()})
		}
		out.Citations = append(out.Citations, cit)
	}
	return out
}

func toReferences(refs []*discoveryenginepb.SearchResponse_Summary_Reference) []result.Reference {
	if len(refs) == 0 {
		return nil
	}
	out := make([]result.Reference, 0, len(refs))
	for _, r := range refs {
		ref := result.Reference{Title: r.GetTitle(), Document: r.GetDocument(), URI: r.GetUri()}
		for _, cc := range r.GetChunkContents() {
			ref.ChunkContents = append(ref.ChunkContents, result.ChunkContent{
				Content:        cc.GetContent(),
				PageIdentifier: cc.GetPageIdentifier(),
			})
		}
		out = append(out, ref)
	}
	return out
}

// structToMap converts a protobuf Struct to plain JSON-compatible values.
func structToMap(s *structpb.Struct) map[string]any {
	if s == nil || len(s.GetFields()) == 0 {
		return nil
	}
	return s.AsMap()
}
