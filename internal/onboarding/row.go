package onboarding

import "strings"

// Row is the editable shape of one application in the initialization form.
// List fields are comma-joined strings and account identifiers are flat.
type Row struct {
	AppID           string          `json:"appId"`
	AppName         string          `json:"appName"`
	Owner           string          `json:"owner,omitempty"`
	UnityProject    string          `json:"unityProject"`
	IsSharedAccount bool            `json:"isSharedAccount"`
	IsPNPAccount    bool            `json:"isPNpAccount"`
	AWSRegions      []string        `json:"awsRegions"`
	DevNPAccount    string          `json:"devNpAccount"`
	QAAccount       string          `json:"qaAccount"`
	ProdAccount     string          `json:"prodAccount"`
	CIDRSize        *int            `json:"cidrSize"`
	NumberOfAZs     *int            `json:"numberOfAzs"`
	OU              string          `json:"ou"`
	Deployers       string          `json:"deployers"`
	Contributors    string          `json:"contributors"`
	ValidationState ValidationState `json:"validationState"`
	// IsExisting marks rows built from an application already in the program.
	IsExisting bool `json:"isExisting"`
}

// NewRow returns an empty, validated row for an application that has no
// stored metadata yet.
func NewRow(appID, appName, owner string) Row {
	if appName == "" {
		appName = appID
	}
	r := Row{AppID: appID, AppName: appName, Owner: owner, AWSRegions: []string{}}
	return r.Revalidated()
}

// RowFromApplication seeds a row from an application's stored metadata.
func RowFromApplication(app Application) Row {
	m := app.Metadata
	r := Row{
		AppID:           app.AppID,
		AppName:         app.AppName,
		Owner:           app.Owner,
		UnityProject:    deref(m.UnityProjectName),
		IsSharedAccount: m.IsSharedAccount != nil && *m.IsSharedAccount,
		IsPNPAccount:    m.AccountType == AccountPNP,
		AWSRegions:      append([]string{}, m.AWSRegions...),
		DevNPAccount:    deref(m.AWSAccounts.DevNP),
		QAAccount:       deref(m.AWSAccounts.QA),
		ProdAccount:     deref(m.AWSAccounts.Prod),
		CIDRSize:        m.CIDRSize,
		NumberOfAZs:     m.NumberOfAZs,
		OU:              deref(m.OU),
		Deployers:       joinList(m.Deployers),
		Contributors:    joinList(m.Contributors),
		IsExisting:      true,
	}
	return r.Revalidated()
}

// AccountType of the row, derived from the P_NP flag.
func (r Row) AccountType() AccountType { return AccountTypeFor(r.IsPNPAccount) }

// Metadata converts the row into the stored metadata shape.
func (r Row) Metadata() Metadata {
	shared := r.IsSharedAccount
	return Metadata{
		UnityProjectName: str(strings.TrimSpace(r.UnityProject)),
		IsSharedAccount:  &shared,
		AccountType:      r.AccountType(),
		AWSRegions:       append([]string{}, r.AWSRegions...),
		AWSAccounts: AWSAccounts{
			DevNP: str(strings.TrimSpace(r.DevNPAccount)),
			QA:    str(strings.TrimSpace(r.QAAccount)),
			Prod:  str(strings.TrimSpace(r.ProdAccount)),
		},
		CIDRSize:     r.CIDRSize,
		NumberOfAZs:  r.NumberOfAZs,
		OU:           str(strings.TrimSpace(r.OU)),
		Deployers:    splitList(r.Deployers),
		Contributors: splitList(r.Contributors),
	}
}

// Validate classifies the row without modifying it.
func (r Row) Validate() ValidationState {
	return Classify(r.Metadata(), r.AccountType())
}

// Revalidated returns a copy of r with ValidationState recomputed.
func (r Row) Revalidated() Row {
	r.ValidationState = r.Validate()
	return r
}

// MissingFields reports the row's unset fields for display.
func (r Row) MissingFields() []string {
	return MissingFields(r.Metadata(), r.AccountType())
}

// CopyFromFirstRow copies every editable field of rows[0] onto the other
// rows, keeping each row's identity (app ID, name, owner), and revalidates
// them. The input slice is not modified.
func CopyFromFirstRow(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	if len(rows) < 2 {
		return out
	}
	first := rows[0]
	for i := 1; i < len(out); i++ {
		cp := first
		cp.AppID = rows[i].AppID
		cp.AppName = rows[i].AppName
		cp.Owner = rows[i].Owner
		cp.IsExisting = rows[i].IsExisting
		cp.AWSRegions = append([]string{}, first.AWSRegions...)
		out[i] = cp.Revalidated()
	}
	return out
}

// RowSummary counts rows per validation state.
type RowSummary struct {
	Valid    int `json:"valid"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// SummarizeRows tallies the stored validation state of each row.
func SummarizeRows(rows []Row) RowSummary {
	var s RowSummary
	for _, r := range rows {
		switch r.ValidationState {
		case StateValid:
			s.Valid++
		case StateWarning:
			s.Warnings++
		default:
			s.Errors++
		}
	}
	return s
}

// CanSubmit reports whether a batch may be sent: at least one row and no
// row in the error state. Warnings do not block.
func CanSubmit(rows []Row) bool {
	return len(rows) > 0 && SummarizeRows(rows).Errors == 0
}

// RevalidateAll recomputes every row's state.
func RevalidateAll(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Revalidated()
	}
	return out
}

func splitList(s string) []string {
	out := []string{}
	for _, tok := range strings.Split(s, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func joinList(xs []string) string {
	return strings.Join(xs, ", ")
}
