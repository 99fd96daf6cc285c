package models

import "time"

// FundingPathway is the mechanism by which a student's tuition is paid.
type FundingPathway string

const (
	PathwayWorkforceFunded   FundingPathway = "workforce_funded"
	PathwayEmployerSponsored FundingPathway = "employer_sponsored"
	PathwayStructuredTuition FundingPathway = "structured_tuition"
)

// IsKnownPathway reports whether the value is one of the three pathways.
func IsKnownPathway(p FundingPathway) bool {
	switch p {
	case PathwayWorkforceFunded, PathwayEmployerSponsored, PathwayStructuredTuition:
		return true
	}
	return false
}

// IntakeStatus tracks progress through the pre-enrollment workflow.
type IntakeStatus string

const (
	IntakeStatusIdentityPending    IntakeStatus = "identity_pending"
	IntakeStatusWorkforceScreening IntakeStatus = "workforce_screening"
	IntakeStatusEmployerScreening  IntakeStatus = "employer_screening"
	IntakeStatusFinancialReadiness IntakeStatus = "financial_readiness"
	IntakeStatusProgramReadiness   IntakeStatus = "program_readiness"
	IntakeStatusPendingSignature   IntakeStatus = "pending_signature"
	IntakeStatusInProgress         IntakeStatus = "in_progress"
	IntakeStatusCompleted          IntakeStatus = "completed"
)

// IntakeRecord is a completed or in-progress intake workflow for a
// (user, program) pair. It is written by the intake workflow and read-only
// from this service's perspective.
type IntakeRecord struct {
	ID        string       `db:"id" json:"id"`
	UserID    string       `db:"user_id" json:"user_id"`
	ProgramID string       `db:"program_id" json:"program_id"`
	Status    IntakeStatus `db:"status" json:"status"`

	IdentityVerified            bool `db:"identity_verified" json:"identity_verified"`
	WorkforceScreeningCompleted bool `db:"workforce_screening_completed" json:"workforce_screening_completed"`
	EmployerScreeningCompleted  bool `db:"employer_screening_completed" json:"employer_screening_completed"`
	FinancialReadinessCompleted bool `db:"financial_readiness_completed" json:"financial_readiness_completed"`
	CanPayDownPayment           bool `db:"can_pay_down_payment" json:"can_pay_down_payment"`
	CanCommitMonthly            bool `db:"can_commit_monthly" json:"can_commit_monthly"`
	AcceptsAutoPayment          bool `db:"accepts_auto_payment" json:"accepts_auto_payment"`
	Understands90DayLimit       bool `db:"understands_90_day_limit" json:"understands_90_day_limit"`
	ProgramReadinessCompleted   bool `db:"program_readiness_completed" json:"program_readiness_completed"`
	AcknowledgmentSigned        bool `db:"acknowledgment_signed" json:"acknowledgment_signed"`

	FundingPathway           *FundingPathway `db:"funding_pathway" json:"funding_pathway,omitempty"`
	FundingPathwayAssignedAt *time.Time      `db:"funding_pathway_assigned_at" json:"funding_pathway_assigned_at,omitempty"`
	FundingPathwayAssignedBy *string         `db:"funding_pathway_assigned_by" json:"funding_pathway_assigned_by,omitempty"`
	EmployerName             *string         `db:"employer_name" json:"employer_name,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
