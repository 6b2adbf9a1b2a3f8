package onboarding

import (
	"fmt"
	"strings"
)

// Selection is an ordered set of applications keyed by app ID. It only
// parameterizes bulk actions and is never persisted.
type Selection struct {
	order []string
	apps  map[string]Application
}

// NewSelection builds a selection, ignoring repeated app IDs.
func NewSelection(apps ...Application) *Selection {
	s := &Selection{apps: map[string]Application{}}
	for _, a := range apps {
		s.Add(a)
	}
	return s
}

// Add inserts app, replacing the stored copy if its ID is already selected.
func (s *Selection) Add(app Application) {
	if _, ok := s.apps[app.AppID]; !ok {
		s.order = append(s.order, app.AppID)
	}
	s.apps[app.AppID] = app
}

// Remove drops the application with the given ID.
func (s *Selection) Remove(appID string) {
	if _, ok := s.apps[appID]; !ok {
		return
	}
	delete(s.apps, appID)
	for i, id := range s.order {
		if id == appID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Toggle selects app if absent and deselects it otherwise.
func (s *Selection) Toggle(app Application) {
	if s.Has(app.AppID) {
		s.Remove(app.AppID)
		return
	}
	s.Add(app)
}

func (s *Selection) Has(appID string) bool {
	_, ok := s.apps[appID]
	return ok
}

func (s *Selection) Len() int { return len(s.order) }

func (s *Selection) Clear() {
	s.order = nil
	s.apps = map[string]Application{}
}

// Apps returns the selected applications in selection order.
func (s *Selection) Apps() []Application {
	out := make([]Application, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.apps[id])
	}
	return out
}

// Summary is the per-status breakdown of a selection.
type Summary struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"byStatus"`
}

// Summarize counts apps per status. Every status is present in ByStatus.
func Summarize(apps []Application) Summary {
	s := Summary{Total: len(apps), ByStatus: NewStats().ByStatus}
	for _, a := range apps {
		s.ByStatus[a.Status]++
	}
	return s
}

// Summary of the current selection.
func (s *Selection) Summary() Summary { return Summarize(s.Apps()) }

// Can reports whether at least one selected application is eligible for a.
func (s Summary) Can(a Action) bool {
	t, ok := transitions[a]
	return ok && s.ByStatus[t.From] > 0
}

func (s Summary) CanInitialize() bool      { return s.Can(ActionInitialize) }
func (s Summary) CanPrepareForDev() bool   { return s.Can(ActionPrepareForDev) }
func (s Summary) CanPrepareForStage() bool { return s.Can(ActionPrepareForStage) }
func (s Summary) CanPrepareForProd() bool  { return s.Can(ActionPrepareForProd) }

// Enabled maps every action to its button state.
func (s Summary) Enabled() map[Action]bool {
	out := make(map[Action]bool, len(Actions))
	for _, a := range Actions {
		out[a] = s.Can(a)
	}
	return out
}

// Describe renders the non-zero counts in pipeline order, e.g.
// "2 New, 1 In Dev".
func (s Summary) Describe() string {
	parts := []string{}
	for _, st := range Statuses {
		if n := s.ByStatus[st]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, st.Label()))
		}
	}
	return strings.Join(parts, ", ")
}

// InitializeSeed builds the rows the Initialize dialog opens with: one row
// per selected application in the new status. A selection without new
// applications yields no rows and the operator starts from an empty form.
func InitializeSeed(selected []Application) []Row {
	eligible := EligibleFor(ActionInitialize, selected)
	rows := make([]Row, 0, len(eligible))
	for _, app := range eligible {
		rows = append(rows, RowFromApplication(app))
	}
	return rows
}

// PrepareSeed filters the candidate list of a Prepare dialog. Unlike
// InitializeSeed it is fed every application at the precondition status,
// not the selection, and all of them start selected.
func PrepareSeed(a Action, all []Application) []Application {
	return EligibleFor(a, all)
}
