package types

import "github.com/cloud-next/onboarding/internal/onboarding"

type AppIDsRequest struct {
	AppIDs []string `json:"appIds" validate:"required,min=1,max=500,dive,required,max=64"`
}

// AddAppsRequest accepts either an ID list or text pasted by the operator.
type AddAppsRequest struct {
	AppIDs []string `json:"appIds" validate:"omitempty,max=500,dive,max=64"`
	Pasted string   `json:"pasted" validate:"omitempty,max=20000"`
}

type AdvanceRequest struct {
	AppIDs    []string `json:"appIds" validate:"required,min=1,max=500,dive,required,max=64"`
	Confirmed bool     `json:"confirmed"`
}

type AWSAccountsPatch struct {
	DevNP *string `json:"devNp" validate:"omitempty,max=64"`
	QA    *string `json:"qa" validate:"omitempty,max=64"`
	Prod  *string `json:"prod" validate:"omitempty,max=64"`
}

type MetadataPatchRequest struct {
	UnityProjectName *string           `json:"unityProjectName" validate:"omitempty,max=255"`
	IsSharedAccount  *bool             `json:"isSharedAccount"`
	AccountType      *string           `json:"accountType" validate:"omitempty,oneof=standard P_NP"`
	AWSRegions       []string          `json:"awsRegions" validate:"omitempty,dive,aws_region"`
	AWSAccounts      *AWSAccountsPatch `json:"awsAccounts"`
	CIDRSize         *int              `json:"cidrSize" validate:"omitempty,cidr_size"`
	NumberOfAZs      *int              `json:"numberOfAzs" validate:"omitempty,az_count"`
	OU               *string           `json:"ou" validate:"omitempty,max=255"`
	Deployers        []string          `json:"deployers" validate:"omitempty,dive,required"`
	Contributors     []string          `json:"contributors" validate:"omitempty,dive,required"`
}

// ToPatch converts the request into a domain patch.
func (r MetadataPatchRequest) ToPatch() onboarding.MetadataPatch {
	p := onboarding.MetadataPatch{
		UnityProjectName: r.UnityProjectName,
		IsSharedAccount:  r.IsSharedAccount,
		AWSRegions:       r.AWSRegions,
		CIDRSize:         r.CIDRSize,
		NumberOfAZs:      r.NumberOfAZs,
		OU:               r.OU,
		Deployers:        r.Deployers,
		Contributors:     r.Contributors,
	}
	if r.AccountType != nil {
		at := onboarding.AccountType(*r.AccountType)
		p.AccountType = &at
	}
	if a := r.AWSAccounts; a != nil {
		p.AWSAccounts = &onboarding.AWSAccounts{DevNP: a.DevNP, QA: a.QA, Prod: a.Prod}
	}
	return p
}

// ValidateRowsRequest carries form rows to be validated. Either Rows or
// Payload (a hand-edited initialization JSON document) is set.
type ValidateRowsRequest struct {
	Rows             []onboarding.Row `json:"rows" validate:"omitempty,max=500"`
	Payload          string           `json:"payload" validate:"omitempty,max=1000000"`
	CopyFromFirstRow bool             `json:"copyFromFirstRow"`
}
