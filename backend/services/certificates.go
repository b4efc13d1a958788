package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"courseplatform/backend/apperr"
	"courseplatform/backend/certificates"
	"courseplatform/backend/models"
	"courseplatform/backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CertificateView struct {
	ID           string    `json:"id"`
	EnrollmentID uint      `json:"enrollment_id"`
	IssuedAt     time.Time `json:"issued_at"`
	StudentName  string    `json:"student_name"`
	CourseTitle  string    `json:"course_title"`
	TotalHours   float64   `json:"total_hours"`
	DownloadURL  string    `json:"download_url"`

	studentID uint
}

func (v *CertificateView) document() certificates.Document {
	return certificates.Document{
		CertificateID: v.ID,
		StudentName:   v.StudentName,
		CourseTitle:   v.CourseTitle,
		IssuedAt:      v.IssuedAt,
		TotalHours:    v.TotalHours,
	}
}

type CertificateService struct {
	db       *gorm.DB
	log      *utils.Logger
	renderer certificates.Renderer
	store    certificates.Store
}

func NewCertificateService(db *gorm.DB, log *utils.Logger, renderer certificates.Renderer, store certificates.Store) *CertificateService {
	return &CertificateService{db: db, log: log.With("service", "CertificateService"), renderer: renderer, store: store}
}

// GenerateCertificate issues the certificate of a completed enrollment. Calling it
// again returns the certificate issued the first time.
func (s *CertificateService) GenerateCertificate(ctx context.Context, studentID, enrollmentID uint) (view *CertificateView, err error) {
	ctx, span := startSpan(ctx, "CertificateService.GenerateCertificate")
	defer func() { endSpan(span, err) }()

	db := s.db.WithContext(ctx)
	var cert models.Certificate
	err = db.Transaction(func(tx *gorm.DB) error {
		var enrollment models.Enrollment
		if err := tx.Where("id = ? AND student_id = ?", enrollmentID, studentID).First(&enrollment).Error; err != nil {
			return notFoundOr(err, "Enrollment not found")
		}
		if !enrollment.IsCompleted {
			return apperr.Validation("Complete the course to receive a certificate")
		}
		err := tx.Where("enrollment_id = ?", enrollmentID).First(&cert).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		cert = models.Certificate{ID: uuid.NewString(), EnrollmentID: enrollmentID, IssuedAt: time.Now().UTC()}
		return tx.Create(&cert).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent request issued it first.
		err = db.Where("enrollment_id = ?", enrollmentID).First(&cert).Error
	}
	if err != nil {
		return nil, logInternal(s.log, "GenerateCertificate", err)
	}

	view, err = s.view(db, &cert)
	if err != nil {
		return nil, logInternal(s.log, "GenerateCertificate", err)
	}
	return view, nil
}

// DownloadCertificate returns the certificate document, rendering and storing it on
// first access.
func (s *CertificateService) DownloadCertificate(ctx context.Context, studentID uint, certificateID string) (view *CertificateView, body io.ReadCloser, err error) {
	ctx, span := startSpan(ctx, "CertificateService.DownloadCertificate")
	defer func() { endSpan(span, err) }()

	db := s.db.WithContext(ctx)
	var cert models.Certificate
	err = db.Joins("JOIN enrollments ON enrollments.id = certificates.enrollment_id").
		Where("certificates.id = ? AND enrollments.student_id = ?", certificateID, studentID).
		First(&cert).Error
	if err != nil {
		return nil, nil, logInternal(s.log, "DownloadCertificate", notFoundOr(err, "Certificate not found"))
	}
	if view, err = s.view(db, &cert); err != nil {
		return nil, nil, logInternal(s.log, "DownloadCertificate", err)
	}

	key := certificates.Key(view.studentID, view.ID)
	body, err = s.store.Open(ctx, key)
	if err == nil {
		return view, body, nil
	}
	if !errors.Is(err, certificates.ErrNotExist) {
		return nil, nil, logInternal(s.log, "DownloadCertificate", err)
	}

	data, err := s.renderer.Render(view.document())
	if err != nil {
		return nil, nil, logInternal(s.log, "DownloadCertificate", fmt.Errorf("render certificate %s: %w", view.ID, err))
	}
	switch err := s.store.Create(ctx, key, data); {
	case err == nil:
		s.log.Info("certificate rendered", "certificate_id", view.ID, "bytes", len(data))
	case errors.Is(err, certificates.ErrExists):
	default:
		return nil, nil, logInternal(s.log, "DownloadCertificate", fmt.Errorf("store certificate %s: %w", view.ID, err))
	}

	body, err = s.store.Open(ctx, key)
	if err != nil {
		return nil, nil, logInternal(s.log, "DownloadCertificate", err)
	}
	return view, body, nil
}

func (s *CertificateService) view(db *gorm.DB, cert *models.Certificate) (*CertificateView, error) {
	var row struct {
		StudentID   uint
		StudentName string
		CourseID    uint
		CourseTitle string
	}
	err := db.Table("enrollments").
		Select("enrollments.student_id, users.full_name AS student_name, courses.id AS course_id, courses.title AS course_title").
		Joins("JOIN users ON users.id = enrollments.student_id").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("enrollments.id = ?", cert.EnrollmentID).
		Take(&row).Error
	if err != nil {
		return nil, notFoundOr(err, "Enrollment not found")
	}

	var minutes int64
	err = db.Model(&models.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ?", row.CourseID).
		Select("COALESCE(SUM(lessons.duration_minutes), 0)").
		Scan(&minutes).Error
	if err != nil {
		return nil, err
	}

	return &CertificateView{
		ID:           cert.ID,
		EnrollmentID: cert.EnrollmentID,
		IssuedAt:     cert.IssuedAt,
		StudentName:  row.StudentName,
		CourseTitle:  row.CourseTitle,
		TotalHours:   certificates.TotalHours(minutes),
		DownloadURL:  fmt.Sprintf("/api/students/certificates/%s/download", cert.ID),
		studentID:    row.StudentID,
	}, nil
}
