package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vaccitrack/internal/adapters/persistence/models"
	"vaccitrack/internal/adapters/persistence/repositories"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

// Certificate errors
var (
	ErrEntryNotCompleted = errors.New("certificate is only available for completed vaccinations")
)

// Certificate is a verifiable record of one administered dose
type Certificate struct {
	CertificateNumber string     `json:"certificate_number"`
	ChildName         string     `json:"child_name"`
	DateOfBirth       time.Time  `json:"date_of_birth"`
	VaccineName       string     `json:"vaccine_name"`
	Description       string     `json:"description"`
	AdministeredDate  *time.Time `json:"administered_date"`
	ApprovedByName    string     `json:"approved_by,omitempty"`
	IssuedAt          time.Time  `json:"issued_at"`
}

// CertificateService issues vaccination certificates with QR verification codes
type CertificateService struct {
	childRepo *repositories.ChildRepository
}

// NewCertificateService creates a new certificate service
func NewCertificateService(childRepo *repositories.ChildRepository) *CertificateService {
	return &CertificateService{childRepo: childRepo}
}

// IssueCertificate builds a certificate for a completed schedule entry
func (s *CertificateService) IssueCertificate(ctx context.Context, actor Actor, childID, entryID uint) (*Certificate, error) {
	child, err := s.childRepo.GetByID(ctx, childID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChildNotFound
		}
		return nil, err
	}

	if !actor.CanReadAllChildren() && child.ParentID != actor.UserID {
		return nil, ErrNotChildOwner
	}

	entry, err := s.childRepo.GetEntry(ctx, childID, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	if entry.Status != models.EntryStatusCompleted {
		return nil, ErrEntryNotCompleted
	}

	cert := &Certificate{
		CertificateNumber: fmt.Sprintf("VAC-%s", uuid.New().String()),
		ChildName:         child.Name,
		DateOfBirth:       child.DateOfBirth,
		VaccineName:       entry.VaccineName,
		Description:       entry.Description,
		AdministeredDate:  entry.AdministeredDate,
		IssuedAt:          time.Now(),
	}
	if entry.Approver != nil {
		cert.ApprovedByName = entry.Approver.Username
	}

	return cert, nil
}

// GenerateQR renders the certificate's verification payload as a PNG QR code
func (s *CertificateService) GenerateQR(cert *Certificate) ([]byte, error) {
	payload := fmt.Sprintf("%s|%s|%s|%s",
		cert.CertificateNumber,
		cert.ChildName,
		cert.VaccineName,
		cert.IssuedAt.Format("2006-01-02"),
	)
	return qrcode.Encode(payload, qrcode.Medium, 256)
}
