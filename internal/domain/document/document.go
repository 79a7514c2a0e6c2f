package document

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/kailas-cloud/cymbalsearch/internal/domain"
)

// PDFMimeType is the content type of every ingested document.
const PDFMimeType = "application/pdf"

// RecordExt is the extension of the uploaded descriptor record.
const RecordExt = ".json"

// IDPrefix prefixes generated descriptor ids.
const IDPrefix = "doc-"

// Metadata is the caller-supplied part of a descriptor.
type Metadata struct {
	Category    string
	Tenant      string
	Description string
	Year        string
}

// StructData is the structured block indexed alongside the document.
type StructData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Year        string `json:"year"`
	Category    string `json:"category"`
	Tenant      string `json:"tenant"`
}

// Content points the index at the stored PDF.
type Content struct {
	MimeType string `json:"mimeType"`
	URI      string `json:"uri"`
}

// Descriptor is the per-document import record.
type Descriptor struct {
	ID         string     `json:"id"`
	StructData StructData `json:"structData"`
	Content    Content    `json:"content"`
}

// NewDescriptor builds a descriptor for a PDF already stored at pdfObjectPath in bucket.
// id is used as-is and must already carry IDPrefix.
func NewDescriptor(id, bucket, pdfObjectPath string, meta Metadata) (Descriptor, error) {
	if id == "" {
		return Descriptor{}, fmt.Errorf("descriptor id is required")
	}
	if bucket == "" {
		return Descriptor{}, fmt.Errorf("bucket is required")
	}
	if _, err := RecordName(pdfObjectPath); err != nil {
		return Descriptor{}, err
	}

	return Descriptor{
		ID: id,
		StructData: StructData{
			Title:       pdfObjectPath,
			Description: meta.Description,
			Year:        meta.Year,
			Category:    meta.Category,
			Tenant:      meta.Tenant,
		},
		Content: Content{
			MimeType: PDFMimeType,
			URI:      GCSURI(bucket, pdfObjectPath),
		},
	}, nil
}

// Marshal serializes the descriptor as a single JSON line without a trailing newline.
func (d Descriptor) Marshal() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal descriptor %s: %w", d.ID, err)
	}
	return data, nil
}

// RecordName derives the descriptor record name from the PDF object path:
// last path segment, extension stripped, ".json" appended.
// "folder/report.pdf" -> "report.json".
func RecordName(pdfObjectPath string) (string, error) {
	p := strings.TrimSpace(pdfObjectPath)
	if p == "" {
		return "", fmt.Errorf("%w: pdf_gcs_filename is required", domain.ErrInvalidInput)
	}
	if strings.HasSuffix(p, "/") {
		return "", fmt.Errorf("%w: pdf_gcs_filename %q does not name a file", domain.ErrInvalidInput, pdfObjectPath)
	}

	base := path.Base(p)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if stem == "" {
		return "", fmt.Errorf("%w: pdf_gcs_filename %q has an empty file name", domain.ErrInvalidInput, pdfObjectPath)
	}
	return stem + RecordExt, nil
}

// GCSURI returns the gs:// URI of an object.
func GCSURI(bucket, object string) string {
	return "gs://" + bucket + "/" + strings.TrimPrefix(object, "/")
}
