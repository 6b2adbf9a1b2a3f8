package onboarding

// AccountType distinguishes standard accounts from P_NP accounts, which go
// straight from DEV/NP to PROD without a QA tier.
type AccountType string

const (
	AccountStandard AccountType = "standard"
	AccountPNP      AccountType = "P_NP"
)

// SkipsQA reports whether the QA account tier is not used.
func (t AccountType) SkipsQA() bool { return t == AccountPNP }

// AccountTypeFor maps the P_NP flag of an editable row.
func AccountTypeFor(isPNP bool) AccountType {
	if isPNP {
		return AccountPNP
	}
	return AccountStandard
}

// AWSAccounts holds the account identifiers per environment tier.
type AWSAccounts struct {
	DevNP *string `json:"devNp"`
	QA    *string `json:"qa"`
	Prod  *string `json:"prod"`
}

// Metadata is the onboarding configuration attached to an application.
type Metadata struct {
	UnityProjectName *string     `json:"unityProjectName"`
	IsSharedAccount  *bool       `json:"isSharedAccount"`
	AccountType      AccountType `json:"accountType,omitempty"`
	AWSRegions       []string    `json:"awsRegions"`
	AWSAccounts      AWSAccounts `json:"awsAccounts"`
	CIDRSize         *int        `json:"cidrSize"`
	NumberOfAZs      *int        `json:"numberOfAzs"`
	OU               *string     `json:"ou"`
	Deployers        []string    `json:"deployers"`
	Contributors     []string    `json:"contributors"`
}

// EffectiveAccountType defaults an unset account type to standard.
func (m Metadata) EffectiveAccountType() AccountType {
	if m.AccountType == "" {
		return AccountStandard
	}
	return m.AccountType
}

// MetadataPatch carries a partial metadata update; nil fields are left
// untouched.
type MetadataPatch struct {
	UnityProjectName *string      `json:"unityProjectName,omitempty"`
	IsSharedAccount  *bool        `json:"isSharedAccount,omitempty"`
	AccountType      *AccountType `json:"accountType,omitempty"`
	AWSRegions       []string     `json:"awsRegions,omitempty"`
	AWSAccounts      *AWSAccounts `json:"awsAccounts,omitempty"`
	CIDRSize         *int         `json:"cidrSize,omitempty"`
	NumberOfAZs      *int         `json:"numberOfAzs,omitempty"`
	OU               *string      `json:"ou,omitempty"`
	Deployers        []string     `json:"deployers,omitempty"`
	Contributors     []string     `json:"contributors,omitempty"`
}

// Merge returns m with every non-nil field of p applied.
func (m Metadata) Merge(p MetadataPatch) Metadata {
	out := m
	if p.UnityProjectName != nil {
		out.UnityProjectName = p.UnityProjectName
	}
	if p.IsSharedAccount != nil {
		out.IsSharedAccount = p.IsSharedAccount
	}
	if p.AccountType != nil {
		out.AccountType = *p.AccountType
	}
	if p.AWSRegions != nil {
		out.AWSRegions = append([]string(nil), p.AWSRegions...)
	}
	if p.AWSAccounts != nil {
		out.AWSAccounts = *p.AWSAccounts
	}
	if p.CIDRSize != nil {
		out.CIDRSize = p.CIDRSize
	}
	if p.NumberOfAZs != nil {
		out.NumberOfAZs = p.NumberOfAZs
	}
	if p.OU != nil {
		out.OU = p.OU
	}
	if p.Deployers != nil {
		out.Deployers = append([]string(nil), p.Deployers...)
	}
	if p.Contributors != nil {
		out.Contributors = append([]string(nil), p.Contributors...)
	}
	return out
}

// Option tables offered by the initialization form.
var (
	AWSRegions = []string{
		"us-east-1",
		"us-east-2",
		"us-west-1",
		"us-west-2",
		"eu-west-1",
		"eu-west-2",
		"eu-central-1",
		"ap-southeast-1",
		"ap-southeast-2",
		"ap-northeast-1",
	}
	CIDRSizes = []int{16, 20, 24, 28}
	AZOptions = []int{1, 2, 3, 4, 5, 6}
)

func str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
