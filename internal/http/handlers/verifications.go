package handlers

import (
	"net/http"

	"klaimportal/internal/http/middleware"
	"klaimportal/internal/repositories"
	"klaimportal/internal/services"
	"klaimportal/internal/storage"

	"github.com/gin-gonic/gin"
)

func verificationService(c *gin.Context) services.VerificationService {
	return services.VerificationService{
		Repo:      repositories.VerificationRepository{},
		NotifRepo: repositories.NotificationRepository{},
		Files:     storage.FileStore{BaseDir: currentEnv().UploadDir},
		RequestID: middleware.GetRequestID(c),
	}
}

var verificationDocFields = []struct {
	field   string
	docType string
}{
	{"ktpFile", "ktp"},
	{"policeReportFile", "police_report"},
	{"stnkFile", "stnk"},
	{"medicalReportFile", "medical_report"},
}

// POST /api/verifications
// Multipart: data pemohon + dokumen + preCheckResults (JSON string opsional).
func CreateVerification(c *gin.Context) {
	in := services.VerificationInput{
		FullName:        c.PostForm("fullName"),
		NIK:             c.PostForm("nik"),
		Phone:           c.PostForm("phone"),
		Email:           c.PostForm("email"),
		PreCheckResults: c.PostForm("preCheckResults"),
	}
	if rc, ok := middleware.GetAuthUser(c); ok {
		in.UserID = rc.UserID
	}

	uploads := []services.DocumentUpload{}
	for _, df := range verificationDocFields {
		if fh := formFile(c, df.field); fh != nil {
			uploads = append(uploads, services.DocumentUpload{DocType: df.docType, File: fh})
		}
	}

	v, err := verificationService(c).Create(in, uploads)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "verifikasi berhasil diajukan", "verification": v})
}

// GET /api/verifications?status=
func ListVerifications(c *gin.Context) {
	out, err := verificationService(c).List(c.Query("status"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verifications": out})
}

// GET /api/verifications/search/:query (ID verifikasi atau NIK)
func SearchVerifications(c *gin.Context) {
	out, err := verificationService(c).Search(c.Param("query"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verifications": out})
}

// GET /api/verifications/:id
func GetVerification(c *gin.Context) {
	v, err := verificationService(c).Detail(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verification": v})
}

type decisionRequest struct {
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes"`
}

// PUT /api/verifications/:id/status
func DecideVerification(c *gin.Context) {
	var req decisionRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	rc, _ := middleware.GetAuthUser(c)

	v, err := verificationService(c).Decide(c.Param("id"), req.Status, req.AdminNotes, rc.Name)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "verifikasi direview", "verification": v})
}

// DELETE /api/verifications/:id
func DeleteVerification(c *gin.Context) {
	if err := verificationService(c).Delete(c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "verifikasi dihapus"})
}
