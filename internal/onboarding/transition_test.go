package onboarding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appsWith(statuses ...Status) []Application {
	apps := make([]Application, 0, len(statuses))
	for i, st := range statuses {
		apps = append(apps, Application{AppID: string(rune('A' + i)), Status: st})
	}
	return apps
}

func TestTransitionTable(t *testing.T) {
	want := map[Action][2]Status{
		ActionInitialize:      {StatusNew, StatusInitialized},
		ActionPrepareForDev:   {StatusInitialized, StatusInDev},
		ActionPrepareForStage: {StatusInDev, StatusInStage},
		ActionPrepareForProd:  {StatusInStage, StatusInProd},
	}
	for a, fromTo := range want {
		tr, ok := TransitionFor(a)
		require.True(t, ok, a)
		assert.Equal(t, fromTo[0], tr.From, a)
		assert.Equal(t, fromTo[1], tr.To, a)
		assert.Equal(t, a == ActionPrepareForProd, tr.RequiresConfirmation, a)
	}

	_, ok := ActionFrom(StatusInProd)
	assert.False(t, ok)
	assert.True(t, StatusInProd.Terminal())
}

func TestEligibleForInitialize(t *testing.T) {
	apps := appsWith(StatusNew, StatusInDev, StatusNew, StatusInitialized)
	got := EligibleFor(ActionInitialize, apps)
	assert.Equal(t, []string{"A", "C"}, AppIDs(got))

	empty := EligibleFor(ActionInitialize, nil)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestPartitionExcludesMismatchedStatus(t *testing.T) {
	apps := appsWith(StatusInDev, StatusNew, StatusInDev)
	eligible, excluded := Partition(ActionPrepareForStage, apps)
	assert.Equal(t, []string{"A", "C"}, AppIDs(eligible))
	assert.Equal(t, []string{"B"}, AppIDs(excluded))

	eligible, excluded = Partition(Action("rollback"), apps)
	assert.Empty(t, eligible)
	assert.Len(t, excluded, 3)
}

func TestTransitionApply(t *testing.T) {
	tr, _ := TransitionFor(ActionPrepareForDev)

	app := Application{AppID: "APP001", Status: StatusInitialized}
	require.NoError(t, tr.Apply(&app))
	require.Equal(t, StatusInDev, app.Status)

	err := tr.Apply(&app)
	require.True(t, errors.Is(err, ErrIneligible))
	require.Equal(t, StatusInDev, app.Status)
}

func TestProdRequiresConfirmation(t *testing.T) {
	prod, _ := TransitionFor(ActionPrepareForProd)
	require.ErrorIs(t, prod.CheckConfirmation(false), ErrConfirmationRequired)
	require.NoError(t, prod.CheckConfirmation(true))

	dev, _ := TransitionFor(ActionPrepareForDev)
	require.NoError(t, dev.CheckConfirmation(false))
}

func TestParseActionAndStatus(t *testing.T) {
	for alias, want := range map[string]Action{"dev": ActionPrepareForDev, "stage": ActionPrepareForStage, "prod": ActionPrepareForProd} {
		a, err := ParseAction(alias)
		require.NoError(t, err)
		require.Equal(t, want, a)
		require.Equal(t, alias, a.Stage())

		s, err := ParseStage(alias)
		require.NoError(t, err)
		require.Equal(t, want, s)
	}

	a, err := ParseAction("initialize")
	require.NoError(t, err)
	require.Equal(t, ActionInitialize, a)
	require.Empty(t, a.Stage())

	_, err = ParseStage("initialize")
	require.ErrorIs(t, err, ErrUnknownAction)
	_, err = ParseAction("qa")
	require.ErrorIs(t, err, ErrUnknownAction)

	st, err := ParseStatus("in_stage")
	require.NoError(t, err)
	require.Equal(t, "In Stage", st.Label())
	require.Equal(t, 3, st.Rank())
	_, err = ParseStatus("retired")
	require.ErrorIs(t, err, ErrUnknownStatus)
}
