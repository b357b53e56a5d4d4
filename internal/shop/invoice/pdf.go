package invoice

import (
	"io"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfFont       = "Helvetica"
	pdfLeading    = 1.4
	pdfPageFormat = "A4"
)

// PDFDocument implements DocumentWriter on top of gofpdf.
type PDFDocument struct {
	pdf *gofpdf.Fpdf
}

func NewPDFDocument() *PDFDocument {
	pdf := gofpdf.New("P", "mm", pdfPageFormat, "")
	pdf.AddPage()
	return &PDFDocument{pdf: pdf}
}

func (d *PDFDocument) Text(fontSize float64, line string) {
	d.pdf.SetFont(pdfFont, "", fontSize)
	_, unitSize := d.pdf.GetFontSize()
	d.pdf.MultiCell(0, unitSize*pdfLeading, line, "", "L", false)
}

// Output writes the finished document to w. It may be called with a
// MultiWriter to stream the same bytes to an HTTP response and to disk.
func (d *PDFDocument) Output(w io.Writer) error {
	return d.pdf.Output(w)
}
