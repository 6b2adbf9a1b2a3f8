package onboarding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// InitializationRequest is the wire payload submitted to initialize a batch.
type InitializationRequest struct {
	Apps []AppRequest `json:"apps"`
}

// AppRequest is the per-application part of an initialization payload.
type AppRequest struct {
	AppID               string          `json:"appId"`
	IsCloudNextEligible *bool           `json:"isCloudNextEligible,omitempty"`
	Metadata            RequestMetadata `json:"metadata"`
}

// RequestMetadata is the wire form of Metadata. Empty optional values are
// omitted rather than sent as empty strings or arrays.
type RequestMetadata struct {
	UnityProject    string        `json:"unityProject"`
	IsSharedAccount *bool         `json:"isSharedAccount,omitempty"`
	IsPNPAccount    *bool         `json:"isPNpAccount,omitempty"`
	AWSRegions      []string      `json:"awsRegions"`
	AWSAccountNames *AccountNames `json:"awsAccountNames,omitempty"`
	CIDRSize        *int          `json:"cidrSize,omitempty"`
	NumberOfAZs     *int          `json:"numberOfAzs,omitempty"`
	OU              string        `json:"ou,omitempty"`
	Deployers       []string      `json:"deployers,omitempty"`
	Contributors    []string      `json:"contributors,omitempty"`
}

// AccountNames is keyed by the literal tier labels used on the wire.
type AccountNames struct {
	DevNP string `json:"DEV/NP,omitempty"`
	QA    string `json:"QA,omitempty"`
	Prod  string `json:"PROD,omitempty"`
}

func (a AccountNames) empty() bool { return a.DevNP == "" && a.QA == "" && a.Prod == "" }

// ToRequest converts an editable row into its submission payload.
func ToRequest(r Row) AppRequest {
	eligible := true
	shared := r.IsSharedAccount
	pnp := r.IsPNPAccount

	m := RequestMetadata{
		UnityProject:    strings.TrimSpace(r.UnityProject),
		IsSharedAccount: &shared,
		IsPNPAccount:    &pnp,
		AWSRegions:      append([]string{}, r.AWSRegions...),
		CIDRSize:        r.CIDRSize,
		NumberOfAZs:     r.NumberOfAZs,
		OU:              strings.TrimSpace(r.OU),
	}
	names := AccountNames{
		DevNP: strings.TrimSpace(r.DevNPAccount),
		QA:    strings.TrimSpace(r.QAAccount),
		Prod:  strings.TrimSpace(r.ProdAccount),
	}
	if !names.empty() {
		m.AWSAccountNames = &names
	}
	if d := splitList(r.Deployers); len(d) > 0 {
		m.Deployers = d
	}
	if c := splitList(r.Contributors); len(c) > 0 {
		m.Contributors = c
	}
	return AppRequest{AppID: r.AppID, IsCloudNextEligible: &eligible, Metadata: m}
}

// ToRow converts a submission payload back into an editable row. The app
// name is not part of the payload, so the app ID stands in for it.
func ToRow(req AppRequest) Row {
	m := req.Metadata
	r := Row{
		AppID:           req.AppID,
		AppName:         req.AppID,
		UnityProject:    m.UnityProject,
		IsSharedAccount: m.IsSharedAccount != nil && *m.IsSharedAccount,
		IsPNPAccount:    m.IsPNPAccount != nil && *m.IsPNPAccount,
		AWSRegions:      append([]string{}, m.AWSRegions...),
		CIDRSize:        m.CIDRSize,
		NumberOfAZs:     m.NumberOfAZs,
		OU:              m.OU,
		Deployers:       joinList(m.Deployers),
		Contributors:    joinList(m.Contributors),
	}
	if n := m.AWSAccountNames; n != nil {
		r.DevNPAccount = n.DevNP
		r.QAAccount = n.QA
		r.ProdAccount = n.Prod
	}
	return r.Revalidated()
}

// ToMetadata converts the wire metadata into the stored shape.
func (m RequestMetadata) ToMetadata() Metadata {
	return ToRow(AppRequest{Metadata: m}).Metadata()
}

// BuildRequest converts every row of the form into one payload.
func BuildRequest(rows []Row) InitializationRequest {
	apps := make([]AppRequest, 0, len(rows))
	for _, r := range rows {
		apps = append(apps, ToRequest(r))
	}
	return InitializationRequest{Apps: apps}
}

// Rows converts a payload back into validated editable rows.
func (req InitializationRequest) Rows() []Row {
	rows := make([]Row, 0, len(req.Apps))
	for _, a := range req.Apps {
		rows = append(rows, ToRow(a))
	}
	return rows
}

// ParseInitializationJSON decodes a hand-edited payload. It returns
// ErrJSONSyntax for unparsable input and ErrMissingApps when the document
// has no "apps" array.
func ParseInitializationJSON(data []byte) (InitializationRequest, error) {
	var req InitializationRequest
	if !json.Valid(data) {
		return req, ErrJSONSyntax
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return req, ErrMissingApps
	}
	raw, ok := top["apps"]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		return req, ErrMissingApps
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return InitializationRequest{}, fmt.Errorf("%w: %v", ErrMalformedApps, err)
	}
	return req, nil
}

// FormatInitializationJSON re-indents a payload with two spaces.
func FormatInitializationJSON(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, ErrJSONSyntax
	}
	return buf.Bytes(), nil
}

// MarshalRequest renders req the way the JSON editor shows it.
func MarshalRequest(req InitializationRequest) ([]byte, error) {
	return json.MarshalIndent(req, "", "  ")
}

// SampleInitializationRequest is the template offered to operators editing
// the payload by hand.
func SampleInitializationRequest() InitializationRequest {
	eligible, shared, pnp := true, false, true
	cidr, azs := 24, 2
	return InitializationRequest{Apps: []AppRequest{{
		AppID:               "APP001",
		IsCloudNextEligible: &eligible,
		Metadata: RequestMetadata{
			UnityProject:    "proj-sample",
			IsSharedAccount: &shared,
			IsPNPAccount:    &pnp,
			AWSRegions:      []string{"us-east-1", "us-west-2"},
			AWSAccountNames: &AccountNames{DevNP: "123456789012", QA: "234567890123", Prod: "345678901234"},
			CIDRSize:        &cidr,
			NumberOfAZs:     &azs,
			OU:              "Platform",
			Deployers:       []string{"user1", "user2"},
			Contributors:    []string{"user3"},
		},
	}}}
}

var idSeparators = regexp.MustCompile(`[,\t\r\n]+`)

// ParseAppIDs splits pasted input on commas, tabs and newlines, trims each
// ID, drops empties and keeps the first occurrence of duplicates.
func ParseAppIDs(input string) []string {
	ids := []string{}
	seen := map[string]struct{}{}
	for _, tok := range idSeparators.Split(strings.TrimSpace(input), -1) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		ids = append(ids, tok)
	}
	return ids
}
