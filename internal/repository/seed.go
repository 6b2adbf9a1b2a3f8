package repository

import (
	"context"

	"github.com/cloud-next/onboarding/internal/models"
	"github.com/cloud-next/onboarding/internal/onboarding"
	appErr "github.com/cloud-next/onboarding/pkg/errors"
	"gorm.io/datatypes"
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func seedApp(id, name, owner string, status onboarding.Status, m onboarding.Metadata) models.Application {
	return models.Application{
		AppID:                id,
		AppName:              name,
		Owner:                owner,
		UnityProject:         m.UnityProjectName,
		LifecycleStage:       "Active",
		IsCloudNextCandidate: true,
		Status:               string(status),
		Metadata:             datatypes.NewJSONType(m),
	}
}

// SeedApplications is the demo program used by the memory store.
func SeedApplications() []models.Application {
	return []models.Application{
		seedApp("APP001", "Payment Service", "Karen Smith", onboarding.StatusInDev, onboarding.Metadata{
			UnityProjectName: strp("proj-payments"),
			IsSharedAccount:  boolp(true),
			AccountType:      onboarding.AccountStandard,
			AWSRegions:       []string{"us-east-1"},
			AWSAccounts:      onboarding.AWSAccounts{DevNP: strp("shared-dev-001"), QA: strp("shared-qa-001"), Prod: strp("shared-prod-001")},
			OU:               strp("default"),
			Deployers:        []string{"user1", "user2"},
			Contributors:     []string{"user3", "user4"},
		}),
		seedApp("APP002", "User Auth Service", "John Doe", onboarding.StatusNew, onboarding.Metadata{}),
		seedApp("APP003", "Notification Engine", "Sarah Wilson", onboarding.StatusNew, onboarding.Metadata{
			UnityProjectName: strp("proj-notifications"),
			IsSharedAccount:  boolp(false),
			AccountType:      onboarding.AccountStandard,
			AWSRegions:       []string{"us-west-2"},
			AWSAccounts:      onboarding.AWSAccounts{DevNP: strp("notif-dev-001"), QA: strp("notif-qa-001"), Prod: strp("notif-prod-001")},
			OU:               strp("engineering"),
		}),
		seedApp("APP004", "Analytics Dashboard", "Mike Johnson", onboarding.StatusInStage, onboarding.Metadata{
			UnityProjectName: strp("proj-analytics"),
			IsSharedAccount:  boolp(true),
			AccountType:      onboarding.AccountStandard,
			AWSRegions:       []string{"us-east-1"},
			AWSAccounts:      onboarding.AWSAccounts{DevNP: strp("analytics-dev"), QA: strp("analytics-qa"), Prod: strp("analytics-prod")},
			OU:               strp("data"),
			Deployers:        []string{"deployer1"},
			Contributors:     []string{"contrib1", "contrib2"},
		}),
		seedApp("APP005", "Inventory Manager", "Lisa Chen", onboarding.StatusInProd, onboarding.Metadata{
			UnityProjectName: strp("proj-inventory"),
			IsSharedAccount:  boolp(false),
			AccountType:      onboarding.AccountStandard,
			AWSRegions:       []string{"us-east-1"},
			AWSAccounts:      onboarding.AWSAccounts{DevNP: strp("inv-dev"), QA: strp("inv-qa"), Prod: strp("inv-prod")},
			OU:               strp("operations"),
			Deployers:        []string{"ops-deployer"},
			Contributors:     []string{"ops-contrib"},
		}),
	}
}

// SeedCandidates is the application directory offered by search.
func SeedCandidates() []models.Candidate {
	return []models.Candidate{
		{AppID: "APP006", AppName: "Order Processing", Owner: "David Brown"},
		{AppID: "APP007", AppName: "Customer Portal", Owner: "Alex Kim"},
		{AppID: "APP008", AppName: "Billing System", Owner: "Chris Lee"},
		{AppID: "APP010", AppName: "Compass Service", Owner: "John Smith"},
		{AppID: "APP011", AppName: "Compass API", Owner: "Sarah Lee"},
		{AppID: "APP012", AppName: "Compass Dashboard", Owner: "Mike Chen"},
		{AppID: "APP013", AppName: "Compass Analytics", Owner: "Emily Davis"},
	}
}

// SeedDirectory loads the candidate directory. Existing entries are kept.
func SeedDirectory(ctx context.Context, s Store) error {
	return s.Candidates.Upsert(ctx, SeedCandidates())
}

// SeedDemo loads the directory and the demo program. Applications that
// already exist are skipped.
func SeedDemo(ctx context.Context, s Store) error {
	if err := SeedDirectory(ctx, s); err != nil {
		return err
	}
	for _, app := range SeedApplications() {
		if err := s.Applications.Create(ctx, &app); err != nil && !appErr.IsCode(err, appErr.CodeAlreadyExists) {
			return err
		}
	}
	return nil
}
