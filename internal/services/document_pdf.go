package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"

	"returns-backend/internal/models"
	"returns-backend/internal/timeutil"
	"returns-backend/pkg/thaibaht"
)

// DocumentPDFService renders return notes and NCR reports as PDFs.
// Thai text (the amount-in-words line) needs a registered UTF-8 font;
// without one the line falls back to the numeric amount.
type DocumentPDFService struct {
	// ThaiFontPath points at a TTF with Thai glyphs (e.g. THSarabun).
	// Empty disables the Thai words line.
	ThaiFontPath string
}

func NewDocumentPDFService(thaiFontPath string) *DocumentPDFService {
	return &DocumentPDFService{ThaiFontPath: thaiFontPath}
}

const thaiFontName = "thai"

func (s *DocumentPDFService) registerThaiFont(pdf *gofpdf.Fpdf) bool {
	if s.ThaiFontPath == "" {
		return false
	}
	pdf.AddUTF8Font(thaiFontName, "", s.ThaiFontPath)
	return !pdf.Err()
}

// RenderReturnNote builds the return-note PDF for a documented batch.
func (s *DocumentPDFService) RenderReturnNote(records []*models.ReturnRecord, result *models.DocumentBatchResult, disposition models.Disposition) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	hasThai := s.registerThaiFont(pdf)

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Return Note", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Disposition: %s", disposition), "", 1, "C", false, 0, "")
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Items table
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(32, 8, "Record", "1", 0, "C", true, 0, "")
	pdf.CellFormat(28, 8, "Code", "1", 0, "C", true, 0, "")
	pdf.CellFormat(60, 8, "Product", "1", 0, "C", true, 0, "")
	pdf.CellFormat(15, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 8, "Price", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, "Amount", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, rec := range records {
		pdf.CellFormat(32, 7, rec.ID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(28, 7, rec.ProductCode, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, rec.ProductName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", rec.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, rec.PriceBill.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, rec.Amount.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	// Totals
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(160, 7, "Subtotal", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, result.Subtotal.StringFixed(2), "1", 1, "R", false, 0, "")
	if !result.VAT.IsZero() {
		pdf.CellFormat(160, 7, "VAT 7%", "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, result.VAT.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.CellFormat(160, 7, "Net Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, result.Net.StringFixed(2), "1", 1, "R", false, 0, "")
	pdf.Ln(3)

	// Amount in words
	words := thaibaht.Text(result.Net)
	if hasThai && words != thaibaht.Sentinel {
		pdf.SetFont(thaiFontName, "", 11)
		pdf.CellFormat(190, 8, "("+words+")", "1", 1, "C", false, 0, "")
	} else {
		pdf.SetFont("Arial", "I", 10)
		pdf.CellFormat(190, 8, fmt.Sprintf("(Total: %s Baht)", result.Net.StringFixed(2)), "1", 1, "C", false, 0, "")
	}

	// Signature boxes
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 7, "Prepared by: ______________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, "Approved by: ______________________", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render return note: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderNCR builds a single-page PDF of one NCR report.
func (s *DocumentPDFService) RenderNCR(rep *models.NCRReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Non-Conformance Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, rep.NCRNo, "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// Header block
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(190, 8, "Report", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 7, fmt.Sprintf("Date: %s", rep.Date), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("To: %s", rep.ToDept), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Found by: %s", rep.Founder), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("PO No: %s", rep.PONo), "RB", 1, "L", false, 0, "")
	pdf.Ln(3)

	// Item block
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(190, 8, "Item", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 7, fmt.Sprintf("Branch: %s", rep.Item.Branch), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Ref No: %s", rep.Item.RefNo), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Product: %s %s", rep.Item.ProductCode, rep.Item.ProductName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Customer: %s", rep.Item.Customer), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Quantity: %d %s", rep.Item.Quantity, rep.Item.Unit), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Price: %s", rep.Item.PriceBill.StringFixed(2)), "RB", 1, "L", false, 0, "")
	pdf.Ln(3)

	// Problem block
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(190, 8, "Problem", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	summary := problemSummary(rep.Problem)
	if summary == "" {
		summary = "-"
	}
	pdf.MultiCell(190, 7, summary, "LRB", "L", false)
	if rep.ProblemDetail != "" {
		pdf.MultiCell(190, 7, rep.ProblemDetail, "LRB", "L", false)
	}
	pdf.Ln(3)

	// QA verdict
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(190, 8, "QA Verdict", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	verdict := "Pending"
	if rep.Status == models.NCRClosed {
		if rep.QAAccept {
			verdict = "Accepted"
		} else {
			verdict = "Rejected"
		}
	}
	pdf.CellFormat(95, 7, fmt.Sprintf("Verdict: %s", verdict), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Reason: %s", rep.QAReason), "RB", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render ncr %s: %w", rep.NCRNo, err)
	}
	return buf.Bytes(), nil
}
