package models

import "time"

// DeliveryMode says where an enrollment's coursework is hosted.
type DeliveryMode string

const (
	DeliveryModeInternal DeliveryMode = "internal"
	DeliveryModePartner  DeliveryMode = "partner"
	DeliveryModeHybrid   DeliveryMode = "hybrid"
)

// Enrollment source table identities used by the resolver.
const (
	SourceCourseEnrollments         = "course_enrollments"
	SourcePartnerLMSEnrollments     = "partner_lms_enrollments"
	SourceApprenticeshipEnrollments = "apprenticeship_enrollments"
)

// NormalizedEnrollment is the unified read-model projection of the three
// enrollment storage shapes. It is constructed on read and never persisted.
type NormalizedEnrollment struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	ProgramID    string       `json:"program_id"`
	ProgramName  string       `json:"program_name,omitempty"`
	Status       string       `json:"status"`
	DeliveryMode DeliveryMode `json:"delivery_mode"`
	ModeInferred bool         `json:"mode_inferred"`
	Source       string       `json:"source"`
	ContinueURL  string       `json:"continue_url"`
	CreatedAt    time.Time    `json:"created_at"`
}

// CourseEnrollment is a row from the internal LMS enrollment table.
type CourseEnrollment struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	CourseID   string    `db:"course_id"`
	CourseName string    `db:"course_name"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
}

// PartnerLMSEnrollment is a row from the external partner LMS bridge table.
type PartnerLMSEnrollment struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	ProgramID    string    `db:"program_id"`
	ProgramName  string    `db:"program_name"`
	PartnerID    string    `db:"partner_id"`
	LaunchURL    string    `db:"launch_url"`
	Status       string    `db:"status"`
	DeliveryMode *string   `db:"delivery_mode"`
	CreatedAt    time.Time `db:"created_at"`
}

// ApprenticeshipEnrollment is a row from the hybrid apprenticeship table.
type ApprenticeshipEnrollment struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	ProgramID   string    `db:"program_id"`
	ProgramName string    `db:"program_name"`
	ShopID      *string   `db:"shop_id"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}
