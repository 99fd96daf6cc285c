package models

import "time"

// SponsorshipStatus tracks the lifecycle of an employer sponsorship.
type SponsorshipStatus string

const (
	SponsorshipStatusPendingAgreement SponsorshipStatus = "pending_agreement"
	SponsorshipStatusActive           SponsorshipStatus = "active"
	SponsorshipStatusSeparated        SponsorshipStatus = "separated"
)

// EmployerSponsorship is the side record created for employer-sponsored
// enrollments. It is owned exclusively by the enrollment that spawned it.
type EmployerSponsorship struct {
	ID                     string            `db:"id" json:"id"`
	EnrollmentID           string            `db:"enrollment_id" json:"enrollment_id"`
	UserID                 string            `db:"user_id" json:"user_id"`
	EmployerName           string            `db:"employer_name" json:"employer_name"`
	MonthlyReimbursement   float64           `db:"monthly_reimbursement" json:"monthly_reimbursement"`
	TermMonths             int               `db:"term_months" json:"term_months"`
	Status                 SponsorshipStatus `db:"status" json:"status"`
	EmploymentEnded        bool              `db:"employment_ended" json:"employment_ended"`
	EmploymentEndedAt      *time.Time        `db:"employment_ended_at" json:"employment_ended_at,omitempty"`
	EmploymentEndReason    *string           `db:"employment_end_reason" json:"employment_end_reason,omitempty"`
	ReimbursementStoppedAt *time.Time        `db:"reimbursement_stopped_at" json:"reimbursement_stopped_at,omitempty"`
	CreatedAt              time.Time         `db:"created_at" json:"created_at"`
}

// BridgePlanStatus tracks the lifecycle of a bridge payment plan.
type BridgePlanStatus string

const (
	BridgePlanStatusAwaitingDownPayment BridgePlanStatus = "awaiting_down_payment"
	BridgePlanStatusActive              BridgePlanStatus = "active"
	BridgePlanStatusPaidOff             BridgePlanStatus = "paid_off"
	BridgePlanStatusDefaulted           BridgePlanStatus = "defaulted"
)

// BridgePaymentPlan is the installment plan created for structured-tuition
// enrollments. An enrollment on that pathway must not exist without its plan.
type BridgePaymentPlan struct {
	ID                         string           `db:"id" json:"id"`
	EnrollmentID               string           `db:"enrollment_id" json:"enrollment_id"`
	UserID                     string           `db:"user_id" json:"user_id"`
	DownPaymentAmount          float64          `db:"down_payment_amount" json:"down_payment_amount"`
	MonthlyPaymentAmount       float64          `db:"monthly_payment_amount" json:"monthly_payment_amount"`
	MaxTermMonths              int              `db:"max_term_months" json:"max_term_months"`
	TotalAmount                float64          `db:"total_amount" json:"total_amount"`
	BalanceRemaining           float64          `db:"balance_remaining" json:"balance_remaining"`
	PlanStartDate              time.Time        `db:"plan_start_date" json:"plan_start_date"`
	PlanEndDate                time.Time        `db:"plan_end_date" json:"plan_end_date"`
	AutoPaymentEnabled         bool             `db:"auto_payment_enabled" json:"auto_payment_enabled"`
	CredentialHold             bool             `db:"credential_hold" json:"credential_hold"`
	DownPaymentPaid            bool             `db:"down_payment_paid" json:"down_payment_paid"`
	AcademicAccessPaused       bool             `db:"academic_access_paused" json:"academic_access_paused"`
	AcademicAccessPausedReason *string          `db:"academic_access_paused_reason" json:"academic_access_paused_reason,omitempty"`
	Status                     BridgePlanStatus `db:"status" json:"status"`
	CreatedAt                  time.Time        `db:"created_at" json:"created_at"`
}
