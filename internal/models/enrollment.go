package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. Pending enrollments are waiting on their
// pathway-specific payment setup; further transitions past active are driven
// by external payment webhooks.
const (
	EnrollmentStatusPending   EnrollmentStatus = "pending"
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusPaused    EnrollmentStatus = "paused"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
)

// PaymentStatus tracks the payment side of an enrollment.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPartial PaymentStatus = "partial"
)

// Enrollment captures a user's registration in a program. At most one
// enrollment exists per (user, program).
type Enrollment struct {
	ID              string           `db:"id" json:"id"`
	UserID          string           `db:"user_id" json:"user_id"`
	ProgramID       string           `db:"program_id" json:"program_id"`
	FundingPathway  FundingPathway   `db:"funding_pathway" json:"funding_pathway"`
	IntakeRecordID  string           `db:"intake_record_id" json:"intake_record_id"`
	IntakeCompleted bool             `db:"intake_completed" json:"intake_completed"`
	Status          EnrollmentStatus `db:"status" json:"status"`
	PaymentStatus   PaymentStatus    `db:"payment_status" json:"payment_status"`
	EnrolledAt      time.Time        `db:"enrolled_at" json:"enrolled_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}
