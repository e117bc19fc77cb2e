package services

import (
	"bytes"
	"fmt"
	"strings"

	"klaimportal/internal/domain"
	"klaimportal/internal/domain/models"
	"klaimportal/internal/repositories"
	"klaimportal/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService menghasilkan PDF surat keterangan klaim & tanda terima transfer.
type DocsService struct {
	ClaimRepo repositories.ClaimRepository
	RequestID string
	Loader    func(string) (models.Claim, error)
}

// GenerateClaimSummary builds the printable claim letter: applicant data,
// incident summary, current status and the timeline so far.
func (s DocsService) GenerateClaimSummary(claimID string) ([]byte, string, error) {
	c, err := s.loadClaim(claimID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_claim_summary", "claim_id="+c.ID)
	return buildClaimSummaryPDF(c)
}

// GenerateTransferReceipt builds the payout receipt. Only completed claims
// have one; anything else is refused.
func (s DocsService) GenerateTransferReceipt(claimID string) ([]byte, string, error) {
	c, err := s.loadClaim(claimID)
	if err != nil {
		return nil, "", err
	}
	if c.Status != domain.ClaimCompleted {
		return nil, "", domain.InvalidStateError{
			Resource: "klaim",
			Current:  string(c.Status),
			Msg:      "tanda terima transfer hanya tersedia untuk klaim yang sudah selesai",
		}
	}
	utils.LogEvent(s.RequestID, "docs", "generate_transfer_receipt", "claim_id="+c.ID)
	return buildTransferReceiptPDF(c)
}

func (s DocsService) loadClaim(claimID string) (models.Claim, error) {
	if s.Loader != nil {
		return s.Loader(claimID)
	}
	c, err := s.ClaimRepo.GetByID(claimID)
	if err != nil {
		return models.Claim{}, err
	}
	if timeline, err := s.ClaimRepo.LoadTimeline(c.ID); err == nil {
		c.Timeline = timeline
	}
	return c, nil
}

func buildClaimSummaryPDF(c models.Claim) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Surat Keterangan Klaim", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "SURAT KETERANGAN KLAIM SANTUNAN")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Nomor Klaim     : %s", c.ID),
		fmt.Sprintf("Status          : %s", safe(c.Status.Label(), "-")),
		fmt.Sprintf("Nama Pemohon    : %s", safe(c.FullName, "-")),
		fmt.Sprintf("NIK             : %s", safe(c.NIK, "-")),
		fmt.Sprintf("No HP           : %s", safe(c.Phone, "-")),
		fmt.Sprintf("Tanggal Kejadian: %s", safe(c.IncidentDate, "-")),
		fmt.Sprintf("Lokasi          : %s", safe(c.IncidentLocation, "-")),
		fmt.Sprintf("Rumah Sakit     : %s", safe(c.HospitalName, "-")),
		fmt.Sprintf("Estimasi Biaya  : %s", formatRupiah(c.EstimatedCost)),
		fmt.Sprintf("Diajukan        : %s", utils.FormatDateTime(c.SubmittedAt)),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Kronologi:")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, safe(c.IncidentDescription, "-"), "", "", false)

	if len(c.Timeline) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Riwayat Status:")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, entry := range c.Timeline {
			date := "-"
			if entry.Date != nil && strings.TrimSpace(*entry.Date) != "" {
				date = *entry.Date
			}
			pdf.MultiCell(0, 6, fmt.Sprintf("%s  %s - %s", date, entry.Status, entry.Description), "", "", false)
		}
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Dokumen ini dicetak otomatis dari sistem dan sah tanpa tanda tangan.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("KLAIM_%s.pdf", utils.SafeFilenamePart(c.ID))
	return buf.Bytes(), filename, nil
}

func buildTransferReceiptPDF(c models.Claim) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Tanda Terima Transfer", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TANDA TERIMA TRANSFER SANTUNAN")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Nomor Klaim      : %s", c.ID),
		fmt.Sprintf("Penerima         : %s", safe(c.AccountHolder, safe(c.FullName, "-"))),
		fmt.Sprintf("Bank             : %s %s", safe(c.BankName, "-"), c.BankBranch),
		fmt.Sprintf("No Rekening      : %s", safe(c.AccountNumber, "-")),
		fmt.Sprintf("Jumlah Transfer  : %s", formatRupiah(c.TransferAmount)),
		fmt.Sprintf("Tanggal Transfer : %s", safe(c.TransferDate, "-")),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	if strings.TrimSpace(c.TransferNotes) != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Catatan:")
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, c.TransferNotes, "", "", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Simpan tanda terima ini sebagai bukti pencairan dana santunan.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("TRANSFER_%s.pdf", utils.SafeFilenamePart(c.ID))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func formatRupiah(v int64) string {
	if v <= 0 {
		return "Rp 0"
	}
	s := fmt.Sprintf("%d", v)
	var out []byte
	n := len(s)
	for i := 0; i < n; i++ {
		out = append(out, s[i])
		pos := n - i - 1
		if pos > 0 && pos%3 == 0 {
			out = append(out, '.')
		}
	}
	return "Rp " + string(out)
}
