package handlers

import (
	"net/http"
	"strconv"

	"klaimportal/internal/http/middleware"
	"klaimportal/internal/repositories"
	"klaimportal/internal/services"
	"klaimportal/internal/storage"

	"github.com/gin-gonic/gin"
)

func docsService(c *gin.Context) services.DocsService {
	return services.DocsService{
		ClaimRepo: repositories.ClaimRepository{},
		RequestID: middleware.GetRequestID(c),
	}
}

// GET /api/claims/:id/pdf
func GetClaimSummaryPDF(c *gin.Context) {
	pdfBytes, filename, err := docsService(c).GenerateClaimSummary(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// GET /api/claims/:id/transfer-receipt-pdf
func GetTransferReceiptPDF(c *gin.Context) {
	pdfBytes, filename, err := docsService(c).GenerateTransferReceipt(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// GET /api/claims/:id/documents/:docID
// Download dokumen pendukung klaim dengan nama file aslinya.
func DownloadClaimDocument(c *gin.Context) {
	docID, err := strconv.ParseInt(c.Param("docID"), 10, 64)
	if err != nil || docID <= 0 {
		RespondError(c, http.StatusBadRequest, "id dokumen tidak valid", err)
		return
	}

	repo := repositories.ClaimRepository{}
	doc, err := repo.GetDocument(c.Param("id"), docID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	store := storage.FileStore{BaseDir: currentEnv().UploadDir}
	full, err := store.Resolve(doc.Path)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.FileAttachment(full, doc.FileName)
}

// GET /api/files/*path
// Admin viewer untuk dokumen tersimpan (KTP, laporan polisi, bukti transfer).
func ServeStoredFile(c *gin.Context) {
	store := storage.FileStore{BaseDir: currentEnv().UploadDir}
	full, err := store.Resolve(c.Param("path"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.File(full)
}
