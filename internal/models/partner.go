package models

import (
	"time"

	"github.com/lib/pq"
)

// PartnerStatus is the derived lifecycle status of a training partner.
// It is never set directly; the activation engine recomputes it from the
// partner's document ledger after every change.
type PartnerStatus string

const (
	PartnerStatusDraft      PartnerStatus = "draft"
	PartnerStatusSubmitted  PartnerStatus = "submitted"
	PartnerStatusActive     PartnerStatus = "active"
	PartnerStatusRestricted PartnerStatus = "restricted"
)

// Partner is the legal identity of a training-delivery organization.
type Partner struct {
	ID        string         `db:"id" json:"id"`
	LegalName string         `db:"legal_name" json:"legal_name"`
	Programs  pq.StringArray `db:"programs" json:"programs"`
	States    pq.StringArray `db:"states" json:"states"`
	Status    PartnerStatus  `db:"status" json:"status"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// HasProgram reports whether the partner declares the given program.
func (p *Partner) HasProgram(programID string) bool {
	for _, id := range p.Programs {
		if id == programID {
			return true
		}
	}
	return false
}

// HasState reports whether the partner operates in the given state.
func (p *Partner) HasState(state string) bool {
	for _, s := range p.States {
		if s == state {
			return true
		}
	}
	return false
}
