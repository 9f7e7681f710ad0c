package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"

	"github.com/karolswdev/reqsmith/internal/session"
)

const (
	DefaultFilename        = "requirements.pdf"
	DefaultMIMEType        = "application/pdf"
	DefaultFontFamily      = "Arial"
	DefaultFontSize        = 12.0
	DefaultLineHeight      = 10.0
	DefaultPageBreakMargin = 15.0
	DefaultCharset         = "iso-8859-1"
	DefaultSubstitute      = "?"
)

// pinnedDate is stamped on documents that carry no generation time so output
// stays reproducible.
var pinnedDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Options controls the rendered document. Zero values fall back to the defaults.
type Options struct {
	Filename        string
	MIMEType        string
	FontFamily      string
	FontSize        float64
	LineHeight      float64
	PageBreakMargin float64
	Charset         string
	Substitute      string
	// DisableCompression leaves page streams readable; used by tests and debugging.
	DisableCompression bool
}

// File is one rendered export, produced fresh for every request.
type File struct {
	Name     string `json:"name" yaml:"name"`
	MIMEType string `json:"mime_type" yaml:"mime_type"`
	Data     []byte `json:"-" yaml:"-"`
	Pages    int    `json:"pages" yaml:"pages"`
	// Substituted counts characters replaced because the charset lacks them.
	Substituted int `json:"substituted" yaml:"substituted"`
}

// Exporter renders stored text as a paginated PDF.
type Exporter struct {
	opts       Options
	charmap    *charmap.Charmap
	substitute byte
}

// NewExporter validates opts and fills in defaults.
func NewExporter(opts Options) (*Exporter, error) {
	if opts.Filename == "" {
		opts.Filename = DefaultFilename
	}
	if opts.MIMEType == "" {
		opts.MIMEType = DefaultMIMEType
	}
	if opts.FontFamily == "" {
		opts.FontFamily = DefaultFontFamily
	}
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultFontSize
	}
	if opts.LineHeight <= 0 {
		opts.LineHeight = DefaultLineHeight
	}
	if opts.PageBreakMargin <= 0 {
		opts.PageBreakMargin = DefaultPageBreakMargin
	}
	if opts.Charset == "" {
		opts.Charset = DefaultCharset
	}
	if opts.Substitute == "" {
		opts.Substitute = DefaultSubstitute
	}

	cm, err := LookupCharset(opts.Charset)
	if err != nil {
		return nil, err
	}
	sub, err := ParseSubstitute(opts.Substitute)
	if err != nil {
		return nil, err
	}
	return &Exporter{opts: opts, charmap: cm, substitute: sub}, nil
}

// Options returns the effective options.
func (e *Exporter) Options() Options {
	return e.opts
}

// Export renders doc. Dates embedded in the file come from doc.GeneratedAt,
// so exporting the same document twice yields identical bytes.
func (e *Exporter) Export(doc session.Document) (*File, error) {
	text, replaced := Transcode(doc.Text, e.charmap, e.substitute)
	if replaced > 0 {
		log.Debug().Int("substituted", replaced).Str("charset", e.opts.Charset).Msg("Replaced characters outside export charset")
	}

	stamp := doc.GeneratedAt
	if stamp.IsZero() {
		stamp = pinnedDate
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetCompression(!e.opts.DisableCompression)
	if doc.ProjectName != "" {
		pdf.SetTitle(doc.ProjectName, true)
	}
	pdf.SetAutoPageBreak(true, e.opts.PageBreakMargin)
	pdf.AddPage()
	pdf.SetFont(e.opts.FontFamily, "", e.opts.FontSize)
	pdf.MultiCell(0, e.opts.LineHeight, text, "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		log.Error().Err(err).Msg("PDF rendering failed")
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	file := &File{
		Name:        e.opts.Filename,
		MIMEType:    e.opts.MIMEType,
		Data:        buf.Bytes(),
		Pages:       pdf.PageCount(),
		Substituted: replaced,
	}
	log.Debug().Int("bytes", len(file.Data)).Int("pages", file.Pages).Msg("Rendered PDF export")
	return file, nil
}
