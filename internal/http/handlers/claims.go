package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"klaimportal/internal/http/middleware"
	"klaimportal/internal/repositories"
	"klaimportal/internal/services"
	"klaimportal/internal/storage"

	"github.com/gin-gonic/gin"
)

func claimService(c *gin.Context) services.ClaimService {
	return services.ClaimService{
		Repo:      repositories.ClaimRepository{},
		NotifRepo: repositories.NotificationRepository{},
		Files:     storage.FileStore{BaseDir: currentEnv().UploadDir},
		RequestID: middleware.GetRequestID(c),
	}
}

// claimDocFields maps multipart field names to stored doc types. Form fields
// mengikuti frontend lama (camelCase).
var claimDocFields = []struct {
	field   string
	docType string
}{
	{"ktpFile", "ktp"},
	{"policeReportFile", "police_report"},
	{"stnkFile", "stnk"},
	{"medicalReportFile", "medical_report"},
}

// POST /api/claims
// Multipart: data klaim + dokumen pendukung. Boleh tanpa login; kalau ada
// token, klaim terikat ke user tersebut dan dapat notifikasi.
func CreateClaim(c *gin.Context) {
	in := services.ClaimInput{
		FullName:             c.PostForm("fullName"),
		NIK:                  c.PostForm("nik"),
		Phone:                c.PostForm("phone"),
		Address:              c.PostForm("address"),
		IncidentDate:         c.PostForm("incidentDate"),
		IncidentTime:         c.PostForm("incidentTime"),
		IncidentLocation:     c.PostForm("incidentLocation"),
		IncidentDescription:  c.PostForm("incidentDescription"),
		VehicleType:          c.PostForm("vehicleType"),
		VehicleNumber:        c.PostForm("vehicleNumber"),
		HospitalName:         c.PostForm("hospitalName"),
		TreatmentDescription: c.PostForm("treatmentDescription"),
		BankName:             c.PostForm("bankName"),
		BankBranch:           c.PostForm("bankBranch"),
		AccountNumber:        c.PostForm("accountNumber"),
		AccountHolder:        c.PostForm("accountHolder"),
	}
	if raw := strings.TrimSpace(c.PostForm("estimatedCost")); raw != "" {
		cost, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "estimatedCost harus angka", err)
			return
		}
		in.EstimatedCost = cost
	}
	if rc, ok := middleware.GetAuthUser(c); ok {
		in.UserID = rc.UserID
	}

	uploads := []services.DocumentUpload{}
	for _, df := range claimDocFields {
		if fh := formFile(c, df.field); fh != nil {
			uploads = append(uploads, services.DocumentUpload{DocType: df.docType, File: fh})
		}
	}

	claim, err := claimService(c).Create(in, uploads)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "klaim berhasil diajukan", "claim": claim})
}

// GET /api/claims?status=
func ListClaims(c *gin.Context) {
	claims, err := claimService(c).List(c.Query("status"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": claims})
}

// GET /api/claims/my-claims
func ListMyClaims(c *gin.Context) {
	rc, _ := middleware.GetAuthUser(c)
	claims, err := claimService(c).ListMine(rc.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": claims})
}

// GET /api/claims/search/:query (nomor klaim atau NIK)
func SearchClaim(c *gin.Context) {
	claim, err := claimService(c).Search(c.Param("query"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claim": claim})
}

// GET /api/claims/:id
func GetClaim(c *gin.Context) {
	claim, err := claimService(c).Detail(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claim": claim})
}

type transitionRequest struct {
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes"`
	Nonce      string `json:"nonce"`
}

// PUT /api/claims/:id/status
func TransitionClaim(c *gin.Context) {
	var req transitionRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	nonce := strings.TrimSpace(req.Nonce)
	if nonce == "" {
		nonce = strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	}

	claim, err := claimService(c).RequestTransition(c.Param("id"), req.Status, req.AdminNotes, nonce)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status klaim diperbarui", "claim": claim})
}

// POST /api/claims/:id/transfer-proof
// Multipart: transferProof (file), transferAmount, transferDate, transferNotes.
func UploadTransferProof(c *gin.Context) {
	proof := formFile(c, "transferProof")
	amount, err := strconv.ParseInt(strings.TrimSpace(c.PostForm("transferAmount")), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "transferAmount harus angka", err)
		return
	}

	claim, svcErr := claimService(c).UploadTransferProof(
		c.Param("id"), proof, amount,
		c.PostForm("transferDate"), c.PostForm("transferNotes"),
	)
	if svcErr != nil {
		RespondDomainError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bukti transfer tersimpan, klaim selesai", "claim": claim})
}

// DELETE /api/claims/:id
func DeleteClaim(c *gin.Context) {
	if err := claimService(c).Delete(c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "klaim dihapus"})
}

// formFile returns nil (instead of an error) when the field is absent.
func formFile(c *gin.Context, field string) *multipart.FileHeader {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return fh
}
