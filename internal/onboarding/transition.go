package onboarding

import "fmt"

// Action is an operator-triggered bulk transition.
type Action string

const (
	ActionInitialize      Action = "initialize"
	ActionPrepareForDev   Action = "prepare_dev"
	ActionPrepareForStage Action = "prepare_stage"
	ActionPrepareForProd  Action = "prepare_prod"
)

// Actions lists the transitions in pipeline order.
var Actions = []Action{ActionInitialize, ActionPrepareForDev, ActionPrepareForStage, ActionPrepareForProd}

// Transition is one row of the lifecycle table.
type Transition struct {
	Action Action `json:"action"`
	From   Status `json:"from"`
	To     Status `json:"to"`
	// RequiresConfirmation is a manual operator gate, independent of
	// per-application eligibility.
	RequiresConfirmation bool `json:"requiresConfirmation"`
}

var transitions = map[Action]Transition{
	ActionInitialize:      {Action: ActionInitialize, From: StatusNew, To: StatusInitialized},
	ActionPrepareForDev:   {Action: ActionPrepareForDev, From: StatusInitialized, To: StatusInDev},
	ActionPrepareForStage: {Action: ActionPrepareForStage, From: StatusInDev, To: StatusInStage},
	ActionPrepareForProd:  {Action: ActionPrepareForProd, From: StatusInStage, To: StatusInProd, RequiresConfirmation: true},
}

// stageAliases maps the short stage names used by the advance endpoint.
var stageAliases = map[string]Action{
	"dev":   ActionPrepareForDev,
	"stage": ActionPrepareForStage,
	"prod":  ActionPrepareForProd,
}

// ParseAction accepts either a full action name or a stage alias
// ("dev", "stage", "prod").
func ParseAction(s string) (Action, error) {
	if a, ok := stageAliases[s]; ok {
		return a, nil
	}
	if _, ok := transitions[Action(s)]; ok {
		return Action(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// ParseStage resolves only the stage aliases; initialization has its own
// submission path.
func ParseStage(s string) (Action, error) {
	if a, ok := stageAliases[s]; ok {
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// TransitionFor returns the table row for a.
func TransitionFor(a Action) (Transition, bool) {
	t, ok := transitions[a]
	return t, ok
}

// Precondition is the status an application must hold for a.
func (a Action) Precondition() Status { return transitions[a].From }

// Result is the status an application holds after a.
func (a Action) Result() Status { return transitions[a].To }

// Stage is the short alias of a prepare action, empty for Initialize.
func (a Action) Stage() string {
	for k, v := range stageAliases {
		if v == a {
			return k
		}
	}
	return ""
}

// ActionFrom returns the action leaving s, if any.
func ActionFrom(s Status) (Action, bool) {
	for _, a := range Actions {
		if transitions[a].From == s {
			return a, true
		}
	}
	return "", false
}

// CheckConfirmation enforces the manual gate for actions that need it.
func (t Transition) CheckConfirmation(confirmed bool) error {
	if t.RequiresConfirmation && !confirmed {
		return ErrConfirmationRequired
	}
	return nil
}

// Apply advances app by one stage. It refuses applications whose current
// status is not the action's precondition.
func (t Transition) Apply(app *Application) error {
	if app.Status != t.From {
		return fmt.Errorf("%w: %s is %s, %s needs %s", ErrIneligible, app.AppID, app.Status, t.Action, t.From)
	}
	app.Status = t.To
	return nil
}

// EligibleFor returns the subset of apps whose status matches the action's
// precondition, in input order.
func EligibleFor(a Action, apps []Application) []Application {
	eligible, _ := Partition(a, apps)
	return eligible
}

// Partition splits apps into those eligible for a and the rest. Unknown
// actions make every application ineligible.
func Partition(a Action, apps []Application) (eligible, excluded []Application) {
	t, ok := transitions[a]
	eligible = []Application{}
	for _, app := range apps {
		if ok && app.Status == t.From {
			eligible = append(eligible, app)
			continue
		}
		excluded = append(excluded, app)
	}
	return eligible, excluded
}

// AppIDs projects apps onto their identifiers.
func AppIDs(apps []Application) []string {
	ids := make([]string, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.AppID)
	}
	return ids
}
