package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"olwlg-nametags/internal/config"
	"olwlg-nametags/internal/models"
)

// Sheet geometry, in inches on US Letter. Sized for off-the-shelf 4x2
// shipping label stock, two columns of five.
const (
	pageWidth   = 8.5
	pageHeight  = 11.0
	topMargin   = 0.5
	leftMargin  = 0.18
	labelWidth  = 4.0
	labelHeight = 2.0
)

// Font sizes in points.
const (
	titleFontSize    = 45
	headerFontSize   = 25
	nameFontSize     = 25
	realNameFontSize = 20
	itemFontSize     = 14
	senderFontSize   = 10
	listFontSize     = 12
	rangeFontSize    = 20
	sideFontSize     = 6
)

const (
	usernameMaxLen = 16
	realNameMaxLen = 25
	itemMaxLen     = 34
)

// doc couples the pdf with the translator the core fonts need: BGG names
// and game titles arrive as UTF-8, Helvetica draws cp1252.
type doc struct {
	*fpdf.Fpdf
	tr func(string) string
}

// centered draws txt horizontally centered on x at baseline y.
func (d doc) centered(x, y float64, txt string) {
	s := d.tr(txt)
	d.Fpdf.Text(x-d.GetStringWidth(s)/2, y, s)
}

// Renderer lays out nametag labels as a single PDF.
type Renderer struct {
	logger         *zap.Logger
	labels         config.Labels
	outputDir      string
	printNamelists bool
}

// NewRenderer creates a new label renderer writing into outputDir.
func NewRenderer(labels config.Labels, outputDir string, printNamelists bool, logger *zap.Logger) *Renderer {
	return &Renderer{
		logger:         logger,
		labels:         labels,
		outputDir:      outputDir,
		printNamelists: printNamelists,
	}
}

// Render produces traders_<tradeID>.pdf from the enriched nametags and the
// moderator preamble. The document is written to a temporary file first and
// renamed into place, so a failed run never leaves a partial PDF behind.
// An existing PDF for the same trade id is overwritten.
func (r *Renderer) Render(tradeID int, tags []models.Nametag, preamble []string) (string, error) {
	if len(tags) == 0 {
		return "", fmt.Errorf("no trade records to render for trade %d", tradeID)
	}

	sorted := sortTags(tags)
	secs := sections(sorted, r.labels.Groups)

	pdf := fpdf.New("P", "in", "Letter", "")
	pdf.SetTitle(fmt.Sprintf("Math trade %d nametags", tradeID), false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	d := doc{Fpdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	if r.printNamelists {
		for _, sec := range secs {
			r.drawChecklist(d, sorted[sec.start:sec.end])
		}
	}

	for _, sec := range secs {
		secTags := sorted[sec.start:sec.end]
		r.drawSectionCover(d, secTags, preamble)
		r.drawLabelPages(d, secTags)
	}

	r.logger.Info("Rendered label pages",
		zap.Int("trade_id", tradeID),
		zap.Int("labels", len(sorted)),
		zap.Int("sections", len(secs)),
		zap.Int("pages", pdf.PageCount()),
	)

	return r.writeAtomic(pdf, tradeID)
}

// writeAtomic writes the document next to its final path and renames it in.
func (r *Renderer) writeAtomic(pdf *fpdf.Fpdf, tradeID int) (string, error) {
	final := filepath.Join(r.outputDir, fmt.Sprintf("traders_%d.pdf", tradeID))
	tmp := final + "." + uuid.NewString() + ".tmp"

	if err := pdf.OutputFileAndClose(tmp); err != nil {
		return "", fmt.Errorf("write label pdf %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("finalize label pdf %s: %w", final, err)
	}

	r.logger.Info("Saved nametags", zap.String("path", final))
	return final, nil
}

// drawChecklist draws the per-section sign-in pages: one checkbox line per
// recipient, continued onto extra pages for large sections.
func (r *Renderer) drawChecklist(d doc, secTags []models.Nametag) {
	traders := sectionTraders(secTags)

	d.AddPage()
	d.SetFont("Helvetica", "", headerFontSize)
	d.centered(pageWidth/2, 0.9, letterRange(secTags))

	d.SetFont("Helvetica", "", listFontSize)
	y := 1.4
	for _, trader := range traders {
		if y > pageHeight-topMargin {
			d.AddPage()
			d.SetFont("Helvetica", "", listFontSize)
			y = 0.9
		}
		d.Rect(2.0, y-0.12, 0.14, 0.14, "D")
		d.Text(2.35, y, d.tr(trader.ID+"  "+trader.DisplayName))
		y += 0.25
	}
}

// drawSectionCover draws the page taped to each pickup table: the moderator
// preamble and the big letter range for the section.
func (r *Renderer) drawSectionCover(d doc, secTags []models.Nametag, preamble []string) {
	d.AddPage()

	d.SetFont("Helvetica", "", listFontSize)
	y := 3.0
	for _, line := range preamble {
		d.centered(pageWidth/2, y, line)
		y += 0.28
	}

	d.centered(pageWidth/2, y+0.56, "Traders with usernames starting with letters:")

	d.SetFont("Helvetica", "", titleFontSize)
	d.centered(pageWidth/2, pageHeight/2, letterRange(secTags))
}

// drawLabelPages lays a section's nametags onto label sheets.
func (r *Renderer) drawLabelPages(d doc, secTags []models.Nametag) {
	perPage := r.labels.PerPage
	perRow := r.labels.PerRow

	for start := 0; start < len(secTags); start += perPage {
		end := start + perPage
		if end > len(secTags) {
			end = len(secTags)
		}
		page := secTags[start:end]

		d.AddPage()

		// Divider and the letter range at both ends, visible from across
		// the room when the sheets are pinned up.
		d.Line(pageWidth/2, topMargin, pageWidth/2, pageHeight-topMargin)
		d.SetFont("Helvetica", "", rangeFontSize)
		d.centered(pageWidth/2, 0.35, letterRange(page))
		d.centered(pageWidth/2, pageHeight-0.16, letterRange(page))

		for i, tag := range page {
			col := i % perRow
			row := i / perRow
			x0 := leftMargin + float64(col)*(labelWidth+leftMargin)
			y0 := topMargin + float64(row)*labelHeight
			r.drawNametag(d, tag, x0, y0, col == 0)
		}
	}
}

// drawNametag draws one label with its top-left corner at (x0, y0).
func (r *Renderer) drawNametag(d doc, tag models.Nametag, x0, y0 float64, onLeft bool) {
	cx := x0 + labelWidth/2

	d.SetFont("Helvetica", "", nameFontSize)
	d.centered(cx, y0+0.70, truncate(tag.Recipient.ID, usernameMaxLen))

	d.SetFont("Helvetica", "", realNameFontSize)
	d.centered(cx, y0+1.10, truncate(tag.Recipient.DisplayName, realNameMaxLen))

	d.SetFont("Helvetica", "", itemFontSize)
	d.centered(cx, y0+1.45, truncate(tag.Item.DisplayName, itemMaxLen))

	d.SetFont("Helvetica", "", senderFontSize)
	d.centered(cx, y0+1.70, "from "+tag.Sender.ID)

	// Tiny username along the outer edge so a label is findable while the
	// sheet is still folded in the stack.
	sideX := x0 + 0.10
	angle := 90.0
	if !onLeft {
		sideX = x0 + labelWidth - 0.10
		angle = -90.0
	}
	d.SetFont("Helvetica", "", sideFontSize)
	d.TransformBegin()
	d.TransformRotate(angle, sideX, y0+labelHeight/2)
	d.centered(sideX, y0+labelHeight/2, tag.Recipient.ID)
	d.TransformEnd()
}

// truncate clips a string to max runes for the fixed label geometry.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
