package onboarding

import "strings"

// ValidationState classifies metadata completeness.
type ValidationState string

const (
	StateValid   ValidationState = "valid"
	StateWarning ValidationState = "warning"
	StateError   ValidationState = "error"
)

// Missing-field labels shown by the metadata view.
const (
	FieldUnityProject  = "Unity Project"
	FieldAWSRegion     = "AWS Region"
	FieldAWSDevAccount = "AWS Dev Account"
	FieldAWSQAAccount  = "AWS QA Account"
	FieldDeployers     = "Deployers"
)

// Classify derives the validation state of m. The first matching rule wins:
// a missing Unity project or region list is an error; no account at all, no
// deployers, or (for standard accounts) no QA account is a warning.
func Classify(m Metadata, accountType AccountType) ValidationState {
	if blank(m.UnityProjectName) || len(m.AWSRegions) == 0 {
		return StateError
	}
	acc := m.AWSAccounts
	if blank(acc.DevNP) && blank(acc.QA) && blank(acc.Prod) {
		return StateWarning
	}
	if len(m.Deployers) == 0 {
		return StateWarning
	}
	if !accountType.SkipsQA() && blank(acc.QA) {
		return StateWarning
	}
	return StateValid
}

// MissingFields lists the labels of unset fields in display order. The QA
// account is only reported for account types that use the QA tier.
func MissingFields(m Metadata, accountType AccountType) []string {
	missing := []string{}
	if blank(m.UnityProjectName) {
		missing = append(missing, FieldUnityProject)
	}
	if len(m.AWSRegions) == 0 {
		missing = append(missing, FieldAWSRegion)
	}
	if blank(m.AWSAccounts.DevNP) {
		missing = append(missing, FieldAWSDevAccount)
	}
	if !accountType.SkipsQA() && blank(m.AWSAccounts.QA) {
		missing = append(missing, FieldAWSQAAccount)
	}
	if len(m.Deployers) == 0 {
		missing = append(missing, FieldDeployers)
	}
	return missing
}

// Blocks reports whether the state prevents a batch from being submitted.
func (s ValidationState) Blocks() bool { return s == StateError }

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
