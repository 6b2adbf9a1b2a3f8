package types

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type Meta struct {
	RequestID string `json:"request_id,omitempty"`
	Page      int    `json:"page,omitempty"`
	PageSize  int    `json:"page_size,omitempty"`
	Total     int64  `json:"total"`
}

// RowsValidation is the per-row result of validating an initialization
// batch.
type RowsValidation struct {
	Rows      []ValidatedRow `json:"rows"`
	Summary   RowSummary     `json:"summary"`
	CanSubmit bool           `json:"canSubmit"`
	// Payload is the submitted JSON document re-indented, when one was sent.
	Payload string `json:"payload,omitempty"`
}

type ValidatedRow struct {
	AppID           string   `json:"appId"`
	ValidationState string   `json:"validationState"`
	Missing         []string `json:"missing"`
	Row             any      `json:"row"`
}

type RowSummary struct {
	Valid    int `json:"valid"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// Options lists the choices offered by the initialization form.
type Options struct {
	AWSRegions []string `json:"awsRegions"`
	CIDRSizes  []int    `json:"cidrSizes"`
	AZOptions  []int    `json:"azOptions"`
}
