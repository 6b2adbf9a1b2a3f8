// Package onboarding holds the Cloud Next onboarding rules: the application
// lifecycle, metadata completeness checks, bulk selection handling and the
// mapping between editable rows and initialization payloads. Everything here
// is pure and synchronous.
package onboarding

import "fmt"

// Status is an application's position in the migration pipeline.
type Status string

const (
	StatusNew         Status = "new"
	StatusInitialized Status = "initialized"
	StatusInDev       Status = "in_dev"
	StatusInStage     Status = "in_stage"
	StatusInProd      Status = "in_prod"
)

// Statuses lists every status in pipeline order.
var Statuses = []Status{StatusNew, StatusInitialized, StatusInDev, StatusInStage, StatusInProd}

var statusLabels = map[Status]string{
	StatusNew:         "New",
	StatusInitialized: "Initialized",
	StatusInDev:       "In Dev",
	StatusInStage:     "In Stage",
	StatusInProd:      "In Prod",
}

// ParseStatus converts a wire value into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

// Valid reports whether s is one of the five lifecycle statuses.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the operator-facing name of the status.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Rank is the zero-based pipeline position, -1 for unknown values.
func (s Status) Rank() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return -1
}

// Terminal reports whether no action leads out of s.
func (s Status) Terminal() bool { return s == StatusInProd }
