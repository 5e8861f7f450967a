package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"docaudit-backend/internal/shared/storage/object"
)

const (
	MimePDF  = "application/pdf"
	MimeText = "text/plain"
	MimeWord = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	minWordTextLen = 50
)

// SupportedMimeTypes lists every type ExtractTextFromBytes understands.
var SupportedMimeTypes = []string{MimePDF, MimeText, MimeWord, MimeDOCX}

var (
	nonPrintable = regexp.MustCompile(`[^\x20-\x7E\n\r\t]`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Source is the stored-document metadata the extractor needs.
type Source struct {
	StorageKey string
	MimeType   string
	FileName   string
}

// DocumentLookup resolves a document owned by ownerID. It returns ErrNotFound otherwise.
type DocumentLookup interface {
	LookupDocument(ctx context.Context, ownerID, documentID string) (Source, error)
}

// Extractor turns stored documents into plain text.
type Extractor struct {
	Docs  DocumentLookup
	Store object.ObjectStore
}

// ExtractText resolves, downloads and parses a document. It has no side effects.
func (e *Extractor) ExtractText(ctx context.Context, documentID, ownerID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := e.Docs.LookupDocument(ctx, ownerID, documentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("lookup document %s: %w", documentID, err)
	}

	body, err := e.Store.Open(ctx, src.StorageKey)
	if err != nil {
		return "", fmt.Errorf("%w: key=%s: %v", ErrStorage, src.StorageKey, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("%w: read key=%s: %v", ErrStorage, src.StorageKey, err)
	}

	return ExtractTextFromBytes(ctx, raw, NormalizeMimeType(src.MimeType, src.FileName))
}

// ExtractTextFromBytes extracts text from an in-memory payload of the given MIME type.
func ExtractTextFromBytes(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch clean := cleanMime(mimeType); clean {
	case MimePDF:
		return extractPDF(data)
	case MimeText:
		return strings.ToValidUTF8(string(data), "\uFFFD"), nil
	case MimeWord:
		return extractLossy(data)
	case MimeDOCX:
		text, err := extractDOCX(data)
		if err != nil {
			return extractLossy(data)
		}
		if len(strings.TrimSpace(text)) < minWordTextLen {
			return "", &ExtractionError{Reason: "Unable to extract meaningful text from Word document"}
		}
		return text, nil
	default:
		return "", &UnsupportedTypeError{MimeType: mimeType}
	}
}

// IsSupported reports whether mimeType has an extractor.
func IsSupported(mimeType string) bool {
	clean := cleanMime(mimeType)
	for _, m := range SupportedMimeTypes {
		if m == clean {
			return true
		}
	}
	return false
}

// NormalizeMimeType maps generic upload types to a supported type using the file extension.
func NormalizeMimeType(mimeType, fileName string) string {
	clean := cleanMime(mimeType)
	switch clean {
	case "", "application/octet-stream", "application/zip", "binary/octet-stream":
	default:
		return clean
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".txt":
		return MimeText
	case ".doc":
		return MimeWord
	case ".docx":
		return MimeDOCX
	default:
		return clean
	}
}

func cleanMime(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ExtractionError{Reason: "Failed to extract text from PDF", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Reason: "Failed to extract text from PDF", Err: err}
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", &ExtractionError{Reason: "Failed to extract text from PDF", Err: err}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", &ExtractionError{Reason: "Failed to extract text from PDF", Err: err}
	}
	return buf.String(), nil
}

// extractLossy keeps printable ASCII from a binary Word file.
func extractLossy(data []byte) (string, error) {
	clean := nonPrintable.ReplaceAllString(string(data), " ")
	clean = strings.TrimSpace(whitespace.ReplaceAllString(clean, " "))
	if len(clean) < minWordTextLen {
		return "", &ExtractionError{Reason: "Unable to extract meaningful text from Word document"}
	}
	return clean, nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return stripDocxXML(raw)
}

func stripDocxXML(raw []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && buf.Len() > 0 {
				buf.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}
