package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// StageIDs holds one CRM pipeline stage id per sync outcome.
type StageIDs struct {
	BookedNextYear    string
	BookedCurrentYear string
	NeedsSearch       string
	SearchSent        string
	PastGuest         string
	NewInquiry        string
}

// CustomFieldIDs holds the CRM custom-field slots the sync writes to.
// TenantID is required; the other slots are optional and skipped by the
// syncer when empty.
type CustomFieldIDs struct {
	SecondaryPhone string
	TenantID       string
	YearlyRent     string
	LifetimeRent   string
}

type Config struct {
	DatabaseURL string

	CRMAPIKeyV1   string
	CRMAPIKeyV2   string
	CRMLocationID string
	PipelineID    string

	Stages StageIDs
	Fields CustomFieldIDs

	// AgentMap maps a source-system user id to a CRM user id for
	// contact assignment.
	AgentMap map[string]string

	CurrentYear     int
	ListenAddr      string
	SyncInterval    int // seconds, 0 disables the scheduler
	ShutdownTimeout int // seconds
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error in production)
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	apiKeyV1 := os.Getenv("CRM_API_KEY_V1")
	apiKeyV2 := os.Getenv("CRM_API_KEY_V2")
	if apiKeyV1 == "" || apiKeyV2 == "" {
		return nil, fmt.Errorf("CRM_API_KEY_V1 and CRM_API_KEY_V2 are required")
	}

	locationID := os.Getenv("CRM_LOCATION_ID")
	if locationID == "" {
		return nil, fmt.Errorf("CRM_LOCATION_ID is required")
	}

	pipelineID := os.Getenv("CRM_PIPELINE_ID")
	if pipelineID == "" {
		return nil, fmt.Errorf("CRM_PIPELINE_ID is required")
	}

	stages := StageIDs{
		BookedNextYear:    os.Getenv("STAGE_BOOKED_NEXT_YEAR"),
		BookedCurrentYear: os.Getenv("STAGE_BOOKED_CURRENT_YEAR"),
		NeedsSearch:       os.Getenv("STAGE_NEEDS_SEARCH"),
		SearchSent:        os.Getenv("STAGE_SEARCH_SENT"),
		PastGuest:         os.Getenv("STAGE_PAST_GUEST"),
		NewInquiry:        os.Getenv("STAGE_NEW_INQUIRY"),
	}
	// Every stage outcome needs an id; an empty one would drop the
	// pipelineStageId from opportunity requests and misfile them.
	stageVars := []struct {
		key   string
		value string
	}{
		{"STAGE_BOOKED_NEXT_YEAR", stages.BookedNextYear},
		{"STAGE_BOOKED_CURRENT_YEAR", stages.BookedCurrentYear},
		{"STAGE_NEEDS_SEARCH", stages.NeedsSearch},
		{"STAGE_SEARCH_SENT", stages.SearchSent},
		{"STAGE_PAST_GUEST", stages.PastGuest},
		{"STAGE_NEW_INQUIRY", stages.NewInquiry},
	}
	for _, sv := range stageVars {
		if sv.value == "" {
			return nil, fmt.Errorf("%s is required", sv.key)
		}
	}

	fields := CustomFieldIDs{
		SecondaryPhone: os.Getenv("FIELD_SECONDARY_PHONE"),
		TenantID:       os.Getenv("FIELD_TENANT_ID"),
		YearlyRent:     os.Getenv("FIELD_YEARLY_RENT"),
		LifetimeRent:   os.Getenv("FIELD_LIFETIME_RENT"),
	}
	if fields.TenantID == "" {
		return nil, fmt.Errorf("FIELD_TENANT_ID is required")
	}
	if fields.SecondaryPhone == "" {
		fmt.Println("Warning: FIELD_SECONDARY_PHONE not set, secondary phone numbers will not be synced")
	}
	if fields.YearlyRent == "" || fields.LifetimeRent == "" {
		fmt.Println("Warning: FIELD_YEARLY_RENT or FIELD_LIFETIME_RENT not set, rent totals will not be synced")
	}

	agentMap := map[string]string{}
	for _, n := range []string{"1", "2"} {
		src := os.Getenv("SOURCE_USER_ID_" + n)
		dst := os.Getenv("CRM_AGENT_ID_" + n)
		if src != "" && dst != "" {
			agentMap[src] = dst
		}
	}

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	return &Config{
		DatabaseURL:     dbURL,
		CRMAPIKeyV1:     apiKeyV1,
		CRMAPIKeyV2:     apiKeyV2,
		CRMLocationID:   locationID,
		PipelineID:      pipelineID,
		Stages:          stages,
		Fields:          fields,
		AgentMap:        agentMap,
		CurrentYear:     intEnv("SYNC_CURRENT_YEAR", time.Now().Year()),
		ListenAddr:      listenAddr,
		SyncInterval:    intEnv("SYNC_INTERVAL_SECONDS", 0),
		ShutdownTimeout: intEnv("SHUTDOWN_TIMEOUT_SECONDS", 30),
	}, nil
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Printf("Warning: invalid %s value %q, using %d\n", key, raw, fallback)
		return fallback
	}
	return n
}
