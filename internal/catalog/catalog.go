// Package catalog holds the static requirement catalog mapping
// (program, state) to the compliance documents a partner must file.
package catalog

import "github.com/elevateforhumanity/workforce-api/internal/models"

// DefaultState keys the state-agnostic requirement list for a program.
const DefaultState = "default"

// FallbackProgram is used when a program has no catalog entry at all.
const FallbackProgram = "BARBER"

// requirements maps program id -> state -> required document types. Entries
// without a state-specific list fall back to the program's "default" list;
// unknown programs fall back to the BARBER default set.
var requirements = map[string]map[string][]models.DocumentType{
	"BARBER": {
		DefaultState: {
			models.DocumentTypeMOU,
			models.DocumentTypeW9,
			models.DocumentTypeBusinessFormation,
			models.DocumentTypeLiabilityInsurance,
			models.DocumentTypeProgramLicense,
		},
		"IN": {
			models.DocumentTypeMOU,
			models.DocumentTypeW9,
			models.DocumentTypeBusinessFormation,
			models.DocumentTypeLiabilityInsurance,
			models.DocumentTypeProgramLicense,
		},
	},
	"COSMETOLOGY": {
		DefaultState: {
			models.DocumentTypeMOU,
			models.DocumentTypeW9,
			models.DocumentTypeBusinessFormation,
			models.DocumentTypeLiabilityInsurance,
			models.DocumentTypeProgramLicense,
		},
	},
	"CNA": {
		DefaultState: {
			models.DocumentTypeMOU,
			models.DocumentTypeW9,
			models.DocumentTypeBusinessFormation,
			models.DocumentTypeLiabilityInsurance,
		},
	},
	"CDL": {
		DefaultState: {
			models.DocumentTypeMOU,
			models.DocumentTypeW9,
			models.DocumentTypeBusinessFormation,
			models.DocumentTypeLiabilityInsurance,
		},
	},
}

// RequiredDocuments returns the document types required for a program in a
// state. It never fails: missing states fall back to the program default,
// and unknown programs fall back to the BARBER default set.
func RequiredDocuments(programID, state string) []models.DocumentType {
	program, ok := requirements[programID]
	if !ok {
		program = requirements[FallbackProgram]
	}
	docs, ok := program[state]
	if !ok {
		docs = program[DefaultState]
	}
	if docs == nil {
		return []models.DocumentType{}
	}
	out := make([]models.DocumentType, len(docs))
	copy(out, docs)
	return out
}

// Programs returns the program ids present in the catalog.
func Programs() []string {
	out := make([]string, 0, len(requirements))
	for id := range requirements {
		out = append(out, id)
	}
	return out
}
