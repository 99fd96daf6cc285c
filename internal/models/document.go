package models

import "time"

// DocumentType enumerates the compliance artifacts a partner can upload.
type DocumentType string

const (
	DocumentTypeMOU                DocumentType = "mou"
	DocumentTypeW9                 DocumentType = "w9"
	DocumentTypeBusinessFormation  DocumentType = "business_formation"
	DocumentTypeLiabilityInsurance DocumentType = "liability_insurance"
	DocumentTypeProgramLicense     DocumentType = "program_license"
)

// KnownDocumentTypes lists every accepted document type.
var KnownDocumentTypes = []DocumentType{
	DocumentTypeMOU,
	DocumentTypeW9,
	DocumentTypeBusinessFormation,
	DocumentTypeLiabilityInsurance,
	DocumentTypeProgramLicense,
}

// IsKnownDocumentType reports whether the value is part of the closed enum.
func IsKnownDocumentType(t DocumentType) bool {
	for _, known := range KnownDocumentTypes {
		if known == t {
			return true
		}
	}
	return false
}

// DocumentStatus is the review state of an uploaded document.
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusAccepted DocumentStatus = "accepted"
	DocumentStatusRejected DocumentStatus = "rejected"
)

// PartnerDocument is one uploaded compliance artifact. At most one document
// per (partner, document type) exists; a new upload replaces the old row.
type PartnerDocument struct {
	ID           string         `db:"id" json:"id"`
	PartnerID    string         `db:"partner_id" json:"partner_id"`
	ProgramID    string         `db:"program_id" json:"program_id"`
	State        string         `db:"state" json:"state"`
	DocumentType DocumentType   `db:"document_type" json:"document_type"`
	FileName     string         `db:"file_name" json:"file_name"`
	FilePath     string         `db:"file_path" json:"-"`
	MimeType     string         `db:"mime_type" json:"mime_type"`
	SizeBytes    int64          `db:"size_bytes" json:"size_bytes"`
	Status       DocumentStatus `db:"status" json:"status"`
	ReviewedBy   *string        `db:"reviewed_by" json:"reviewed_by,omitempty"`
	UploadedAt   time.Time      `db:"uploaded_at" json:"uploaded_at"`
	ReviewedAt   *time.Time     `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ExpiresAt    *time.Time     `db:"expires_at" json:"expires_at,omitempty"`
}

// DocumentStatusView is one row of the requirement-vs-upload join returned by
// the ledger's status listing.
type DocumentStatusView struct {
	RequiredType DocumentType   `json:"required_type"`
	Uploaded     bool           `json:"uploaded"`
	Status       DocumentStatus `json:"status,omitempty"`
}
