package controllers

import (
	"fmt"

	"courseplatform/backend/apperr"
	"courseplatform/backend/middleware"
	"courseplatform/backend/services"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CertificateController struct {
	Certificates *services.CertificateService
}

func NewCertificateController(certs *services.CertificateService) *CertificateController {
	return &CertificateController{Certificates: certs}
}

// GenerateCertificate godoc
// @Summary Issue a certificate for a completed enrollment
// @Description Returns the existing certificate when one was already issued
// @Tags certificates
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /students/enrollments/{id}/certificate [post]
func (cc *CertificateController) GenerateCertificate(c *fiber.Ctx) error {
	enrollmentID, err := paramID(c, "id")
	if err != nil {
		return utils.HandleError(c, err)
	}
	view, err := cc.Certificates.GenerateCertificate(c.UserContext(), middleware.CurrentUser(c).ID, enrollmentID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, view)
}

// DownloadCertificate godoc
// @Summary Download a certificate
// @Tags certificates
// @Produce application/pdf
// @Param id path string true "Certificate ID"
// @Success 200 {file} file
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /students/certificates/{id}/download [get]
func (cc *CertificateController) DownloadCertificate(c *fiber.Ctx) error {
	certID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.HandleError(c, apperr.Validation("Invalid certificate id"))
	}
	view, body, err := cc.Certificates.DownloadCertificate(c.UserContext(), middleware.CurrentUser(c).ID, certID.String())
	if err != nil {
		return utils.HandleError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="certificate-%s.pdf"`, view.ID))
	return c.SendStream(body)
}
