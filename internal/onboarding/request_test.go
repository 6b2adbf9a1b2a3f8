package onboarding

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ip(n int) *int { return &n }

func fullRow() Row {
	return Row{
		AppID:           "APP010",
		AppName:         "APP010",
		UnityProject:    "proj-compass",
		IsSharedAccount: true,
		IsPNPAccount:    false,
		AWSRegions:      []string{"us-east-1", "eu-west-1"},
		DevNPAccount:    "111111111111",
		QAAccount:       "222222222222",
		ProdAccount:     "333333333333",
		CIDRSize:        ip(24),
		NumberOfAZs:     ip(3),
		OU:              "Platform",
		Deployers:       "alice, bob",
		Contributors:    "carol",
	}.Revalidated()
}

func TestToRequestSplitsAndOmitsEmpty(t *testing.T) {
	r := NewRow("APP011", "Compass API", "Sarah Lee")
	r.UnityProject = "proj-api"
	r.AWSRegions = []string{"us-west-2"}
	r.Deployers = " alice ,, bob ,"
	r.QAAccount = "qa-1"

	req := ToRequest(r)
	require.Equal(t, "APP011", req.AppID)
	require.True(t, *req.IsCloudNextEligible)
	assert.Equal(t, []string{"alice", "bob"}, req.Metadata.Deployers)
	assert.Nil(t, req.Metadata.Contributors)
	assert.Empty(t, req.Metadata.OU)
	assert.Nil(t, req.Metadata.CIDRSize)
	require.NotNil(t, req.Metadata.AWSAccountNames)
	assert.Equal(t, AccountNames{QA: "qa-1"}, *req.Metadata.AWSAccountNames)

	b, err := json.Marshal(req)
	require.NoError(t, err)
	var wire struct {
		Metadata map[string]any `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(b, &wire))
	md := wire.Metadata
	assert.NotContains(t, md, "contributors")
	assert.NotContains(t, md, "ou")
	assert.NotContains(t, md, "cidrSize")
	assert.Equal(t, map[string]any{"QA": "qa-1"}, md["awsAccountNames"])
}

func TestToRequestDropsAccountMapWhenAllEmpty(t *testing.T) {
	r := NewRow("APP012", "", "")
	req := ToRequest(r)
	assert.Nil(t, req.Metadata.AWSAccountNames)
	assert.NotNil(t, req.Metadata.AWSRegions)
}

func TestRoundTripPreservesRow(t *testing.T) {
	r := fullRow()
	back := ToRow(ToRequest(r))
	assert.Equal(t, r, back)
	assert.Equal(t, "alice, bob", back.Deployers)
}

func TestRoundTripNormalizesWhitespace(t *testing.T) {
	r := fullRow()
	r.Deployers = "alice,bob"
	back := ToRow(ToRequest(r))
	assert.Equal(t, "alice, bob", back.Deployers)

	r.Deployers = ""
	r.OU = ""
	r.CIDRSize = nil
	back = ToRow(ToRequest(r))
	assert.Equal(t, "", back.Deployers)
	assert.Equal(t, "", back.OU)
	assert.Nil(t, back.CIDRSize)
}

func TestToRowDefaults(t *testing.T) {
	row := ToRow(AppRequest{AppID: "APP020", Metadata: RequestMetadata{UnityProject: "p"}})
	assert.Equal(t, "APP020", row.AppName)
	assert.Empty(t, row.AWSRegions)
	assert.NotNil(t, row.AWSRegions)
	assert.Nil(t, row.NumberOfAZs)
	assert.False(t, row.IsPNPAccount)
	assert.Equal(t, StateError, row.ValidationState)
}

func TestCopyFromFirstRow(t *testing.T) {
	first := fullRow()
	second := NewRow("APP011", "Compass API", "Sarah Lee")
	third := NewRow("APP012", "Compass Dashboard", "Mike Chen")
	rows := []Row{first, second, third}

	out := CopyFromFirstRow(rows)
	require.Len(t, out, 3)
	assert.Equal(t, first, out[0])
	for i, orig := range rows[1:] {
		got := out[i+1]
		assert.Equal(t, orig.AppID, got.AppID)
		assert.Equal(t, orig.AppName, got.AppName)
		assert.Equal(t, orig.Owner, got.Owner)
		assert.Equal(t, first.AWSRegions, got.AWSRegions)
		assert.Equal(t, first.CIDRSize, got.CIDRSize)
		assert.Equal(t, first.DevNPAccount, got.DevNPAccount)
		assert.Equal(t, first.QAAccount, got.QAAccount)
		assert.Equal(t, first.ProdAccount, got.ProdAccount)
		assert.Equal(t, StateValid, got.ValidationState)
	}

	out[1].AWSRegions[0] = "changed"
	assert.Equal(t, "us-east-1", first.AWSRegions[0])
	assert.Equal(t, StateError, rows[1].ValidationState)

	single := CopyFromFirstRow([]Row{second})
	assert.Equal(t, []Row{second}, single)
}

func TestRowSummaryAndCanSubmit(t *testing.T) {
	valid := fullRow()
	warn := fullRow()
	warn.Deployers = ""
	warn = warn.Revalidated()
	bad := fullRow()
	bad.AWSRegions = nil
	bad = bad.Revalidated()

	assert.Equal(t, RowSummary{Valid: 1, Warnings: 1}, SummarizeRows([]Row{valid, warn}))
	assert.True(t, CanSubmit([]Row{valid, warn}))
	assert.False(t, CanSubmit([]Row{valid, bad}))
	assert.False(t, CanSubmit(nil))

	stale := bad
	stale.ValidationState = StateValid
	assert.False(t, CanSubmit(RevalidateAll([]Row{stale})))
}

func TestParseInitializationJSON(t *testing.T) {
	_, err := ParseInitializationJSON([]byte(`{"apps": [`))
	require.ErrorIs(t, err, ErrJSONSyntax)

	_, err = ParseInitializationJSON([]byte(`{"items": []}`))
	require.ErrorIs(t, err, ErrMissingApps)

	_, err = ParseInitializationJSON([]byte(`{"apps": {}}`))
	require.ErrorIs(t, err, ErrMissingApps)

	_, err = ParseInitializationJSON([]byte(`[1, 2]`))
	require.ErrorIs(t, err, ErrMissingApps)

	_, err = ParseInitializationJSON([]byte(`{"apps": [{"appId": 7}]}`))
	require.ErrorIs(t, err, ErrMalformedApps)

	sample, err := MarshalRequest(SampleInitializationRequest())
	require.NoError(t, err)
	req, err := ParseInitializationJSON(sample)
	require.NoError(t, err)
	require.Len(t, req.Apps, 1)
	assert.Equal(t, "123456789012", req.Apps[0].Metadata.AWSAccountNames.DevNP)

	rows := req.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "user1, user2", rows[0].Deployers)
	assert.Equal(t, StateValid, rows[0].ValidationState)
}

func TestFormatInitializationJSON(t *testing.T) {
	out, err := FormatInitializationJSON([]byte(`{"apps":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"apps\": []\n}", string(out))

	_, err = FormatInitializationJSON([]byte(`{`))
	require.ErrorIs(t, err, ErrJSONSyntax)
}

func TestParseAppIDs(t *testing.T) {
	got := ParseAppIDs(" APP001, APP002\tAPP003\n\nAPP001,,APP004 \r\n")
	assert.Equal(t, []string{"APP001", "APP002", "APP003", "APP004"}, got)
	assert.Empty(t, ParseAppIDs("   "))
}

func TestRequestMetadataToMetadata(t *testing.T) {
	m := ToRequest(fullRow()).Metadata.ToMetadata()
	require.Equal(t, "proj-compass", *m.UnityProjectName)
	require.Equal(t, AccountStandard, m.AccountType)
	require.Equal(t, "222222222222", *m.AWSAccounts.QA)
	require.Equal(t, []string{"alice", "bob"}, m.Deployers)
	require.Equal(t, StateValid, Classify(m, m.AccountType))
}
