package onboarding

// Application is an app tracked by the onboarding program.
type Application struct {
	AppID                string   `json:"appId"`
	AppName              string   `json:"appName"`
	Owner                string   `json:"owner"`
	UnityProject         *string  `json:"unityProject"`
	LifecycleStage       string   `json:"lifecycleStage"`
	IsCloudNextCandidate bool     `json:"isCloudNextCandidate"`
	Status               Status   `json:"status"`
	Metadata             Metadata `json:"metadata"`
}

// ValidationState is derived from the metadata on every call, never stored.
func (a Application) ValidationState() ValidationState {
	return Classify(a.Metadata, a.Metadata.EffectiveAccountType())
}

// Candidate is a lightweight directory entry returned by search.
type Candidate struct {
	AppID   string `json:"appId"`
	AppName string `json:"appName"`
	Owner   string `json:"owner"`
}

// Stats are dashboard counts per status.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"byStatus"`
}

// NotInitialized is the count of applications still in the new status.
func (s Stats) NotInitialized() int { return s.ByStatus[StatusNew] }

// NewStats returns Stats with a zero entry for every status.
func NewStats() Stats {
	by := make(map[Status]int, len(Statuses))
	for _, st := range Statuses {
		by[st] = 0
	}
	return Stats{ByStatus: by}
}
