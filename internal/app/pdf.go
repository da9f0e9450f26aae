package app

import (
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/quotegen/internal/subject"
)

// writeQuotesPDF renders every candidate of s as a numbered list. The core
// fonts only cover Latin-1, so runes outside it are replaced by the
// translator.
func writeQuotesPDF(outPath string, s subject.Subject, list []string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(s.Name, true)
	pdf.SetCreator("quotegen "+BuildVersion, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(s.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.WriteLinkString(5, tr(s.URL), s.URL)
	pdf.Ln(5)
	pdf.CellFormat(0, 5, fmt.Sprintf("%d quotations, exported %s", len(list), time.Now().Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	for i, q := range list {
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("%d. %s", i+1, q)), "", "L", false)
		pdf.Ln(2)
	}
	return pdf.OutputFileAndClose(outPath)
}
