package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentloop/crm-sync-worker/internal/config"
	"github.com/rentloop/crm-sync-worker/internal/crm"
	"github.com/rentloop/crm-sync-worker/internal/models"
	"github.com/rentloop/crm-sync-worker/internal/repository"
	"gorm.io/datatypes"
)

// SyncJobID keys the checkpoint row for this job.
const SyncJobID = "tenant-crm-sync"

// TenantSource provides the changed-row query.
type TenantSource interface {
	GetChangedSince(ctx context.Context, since time.Time) ([]models.Tenant, error)
}

// CheckpointStore persists the sync watermark.
type CheckpointStore interface {
	Get(ctx context.Context, jobID string) (time.Time, error)
	Upsert(ctx context.Context, jobID string, lastRunAt time.Time, stats datatypes.JSON) error
}

// CRMAPI is the subset of the CRM client the syncer needs.
type CRMAPI interface {
	UpsertContact(ctx context.Context, contact crm.Contact) (*crm.Contact, error)
	SearchOpportunityByRef(ctx context.Context, ref string) (*crm.Opportunity, error)
	CreateOpportunity(ctx context.Context, opp crm.Opportunity) (*crm.Opportunity, error)
	UpdateOpportunity(ctx context.Context, id string, opp crm.Opportunity) (*crm.Opportunity, error)
}

// Resolver finds an existing CRM contact for a tenant.
type Resolver interface {
	Resolve(ctx context.Context, tenant *models.Tenant, phone string) *crm.Contact
}

// SyncResult summarizes one sync run.
type SyncResult struct {
	Candidates int
	Processed  int
	Failed     int
}

// TenantSyncer drives the checkpointed sync: load watermark, fetch
// changed tenants, mirror each into the CRM, advance the watermark.
// Rows are processed sequentially; a failed row never aborts the batch.
type TenantSyncer struct {
	cfg         *config.Config
	tenants     TenantSource
	checkpoints CheckpointStore
	crm         CRMAPI
	resolver    Resolver
}

func NewTenantSyncer(cfg *config.Config, tenants TenantSource, checkpoints CheckpointStore, api CRMAPI, resolver Resolver) *TenantSyncer {
	return &TenantSyncer{
		cfg:         cfg,
		tenants:     tenants,
		checkpoints: checkpoints,
		crm:         api,
		resolver:    resolver,
	}
}

// Run executes one sync pass. A database or checkpoint error is fatal to
// the run; per-tenant CRM failures are logged and skipped.
func (s *TenantSyncer) Run(ctx context.Context) (SyncResult, error) {
	runID := uuid.NewString()

	since, err := s.checkpoints.Get(ctx, SyncJobID)
	if err != nil {
		if !errors.Is(err, repository.ErrCheckpointNotFound) {
			return SyncResult{}, fmt.Errorf("failed to load checkpoint: %w", err)
		}
		// First run, full scan from the zero watermark.
		since = time.Time{}
	}

	tenants, err := s.tenants.GetChangedSince(ctx, since)
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to query changed tenants: %w", err)
	}

	log.Printf("Sync run %s: %d candidate tenant(s) since %s", runID, len(tenants), since.Format(time.RFC3339))

	result := SyncResult{Candidates: len(tenants)}
	var processed []models.Tenant
	for i := range tenants {
		tenant := &tenants[i]
		if err := s.syncTenant(ctx, tenant); err != nil {
			log.Printf("Failed to sync tenant %d: %v", tenant.ID, err)
			result.Failed++
			continue
		}
		processed = append(processed, tenants[i])
	}
	result.Processed = len(processed)

	next, advance := nextCheckpoint(since, result.Candidates, processed)
	if !advance {
		// Candidates exist but none synced. Leave the watermark so the
		// failing window is retried instead of silently dropped.
		log.Printf("Sync run %s: all %d candidate(s) failed, checkpoint unchanged", runID, result.Candidates)
		return result, nil
	}

	stats, _ := json.Marshal(map[string]interface{}{
		"run_id":     runID,
		"candidates": result.Candidates,
		"processed":  result.Processed,
		"failed":     result.Failed,
	})
	if err := s.checkpoints.Upsert(ctx, SyncJobID, next, stats); err != nil {
		// Remote writes already happened; the next run will reprocess
		// the same window.
		return result, fmt.Errorf("failed to advance checkpoint: %w", err)
	}

	log.Printf("Sync run %s: processed %d, failed %d, checkpoint now %s", runID, result.Processed, result.Failed, next.Format(time.RFC3339))
	return result, nil
}

// nextCheckpoint decides the new watermark. Processed rows advance it to
// their latest change timestamp; an empty candidate window advances it
// to now so the window is not rescanned forever; a fully failed window
// leaves it alone. The watermark never regresses.
func nextCheckpoint(prior time.Time, candidates int, processed []models.Tenant) (time.Time, bool) {
	if candidates == 0 {
		return time.Now(), true
	}
	if len(processed) == 0 {
		return time.Time{}, false
	}
	next := prior
	for i := range processed {
		if changed := processed[i].ChangedAt(); changed.After(next) {
			next = changed
		}
	}
	return next, true
}

// syncTenant mirrors one tenant into the CRM: contact first, then the
// pipeline opportunity. A contact failure fails the row; an opportunity
// failure is logged but the contact remains synced, so the row still
// counts as processed.
func (s *TenantSyncer) syncTenant(ctx context.Context, tenant *models.Tenant) error {
	primary, secondary := NormalizePhone(tenant.PrimaryRawPhone())
	firstName, lastName := splitName(tenant.TenantName)

	contact := crm.Contact{
		Email:     tenant.Email,
		FirstName: firstName,
		LastName:  lastName,
		Phone:     primary,
	}
	if tenant.SourceUserID != nil {
		if agent, ok := s.cfg.AgentMap[*tenant.SourceUserID]; ok {
			contact.AssignedTo = agent
		}
	}

	fields := map[string]interface{}{}
	if s.cfg.Fields.TenantID != "" {
		fields[s.cfg.Fields.TenantID] = strconv.FormatInt(tenant.ID, 10)
	}
	if secondary != "" && s.cfg.Fields.SecondaryPhone != "" {
		fields[s.cfg.Fields.SecondaryPhone] = secondary
	}

	rent := tenant.RentAmount()
	year := tenant.CheckInYear()

	var existing *crm.Contact
	if rent > 0 && year != "" {
		existing = s.resolver.Resolve(ctx, tenant, primary)
		totals := s.existingTotals(existing)
		updated, lifetime := AccumulateRent(totals, year, rent)
		if s.cfg.Fields.YearlyRent != "" {
			encoded, err := json.Marshal(updated)
			if err != nil {
				return fmt.Errorf("failed to encode rent totals: %w", err)
			}
			fields[s.cfg.Fields.YearlyRent] = string(encoded)
		}
		if s.cfg.Fields.LifetimeRent != "" {
			fields[s.cfg.Fields.LifetimeRent] = lifetime
		}
	}
	contact.CustomFields = crm.NormalizeCustomFields(fields)

	saved, err := s.crm.UpsertContact(ctx, contact)
	if err != nil {
		return fmt.Errorf("contact upsert failed: %w", err)
	}

	contactID := ""
	if saved != nil {
		contactID = saved.ID
	}
	if contactID == "" && existing != nil {
		contactID = existing.ID
	}
	if year == "" || contactID == "" {
		return nil
	}

	opp := crm.Opportunity{
		Name:          opportunityName(tenant),
		ContactID:     contactID,
		PipelineID:    s.cfg.PipelineID,
		StageID:       SelectStage(year, tenant.Status, s.cfg.CurrentYear, s.cfg.Stages),
		MonetaryValue: rent,
		ExternalRef:   externalRef(tenant),
		Status:        "open",
	}
	if err := s.upsertOpportunity(ctx, opp); err != nil {
		log.Printf("Opportunity sync failed for tenant %d (contact %s): %v", tenant.ID, contactID, err)
	}
	return nil
}

// existingTotals reads the yearly rent totals stored on a resolved
// contact. A malformed stored value reads as empty rather than failing
// the row.
func (s *TenantSyncer) existingTotals(contact *crm.Contact) map[string]float64 {
	totals := map[string]float64{}
	if contact == nil || s.cfg.Fields.YearlyRent == "" {
		return totals
	}
	raw := contact.CustomFields.StringValue(s.cfg.Fields.YearlyRent)
	if raw == "" {
		return totals
	}
	if err := json.Unmarshal([]byte(raw), &totals); err != nil {
		log.Printf("Ignoring malformed rent totals on contact %s: %v", contact.ID, err)
		return map[string]float64{}
	}
	return totals
}

// upsertOpportunity searches by external reference first so a replayed
// tenant updates its opportunity instead of creating a duplicate.
func (s *TenantSyncer) upsertOpportunity(ctx context.Context, opp crm.Opportunity) error {
	found, err := s.crm.SearchOpportunityByRef(ctx, opp.ExternalRef)
	if err != nil {
		// Search failure degrades to create; worst case is a duplicate,
		// same as not searching at all.
		log.Printf("Opportunity search by ref %q failed: %v", opp.ExternalRef, err)
		found = nil
	}
	if found != nil {
		_, err := s.crm.UpdateOpportunity(ctx, found.ID, opp)
		return err
	}
	_, err = s.crm.CreateOpportunity(ctx, opp)
	return err
}

// externalRef is the idempotency handle for opportunity re-creation: the
// booking confirmation code when present, a synthesized tenant ref
// otherwise.
func externalRef(tenant *models.Tenant) string {
	if tenant.ConfirmationCode != "" {
		return tenant.ConfirmationCode
	}
	return fmt.Sprintf("tenant-%d", tenant.ID)
}

func opportunityName(tenant *models.Tenant) string {
	name := strings.TrimSpace(tenant.TenantName)
	if name == "" {
		name = fmt.Sprintf("Tenant %d", tenant.ID)
	}
	if addr := strings.TrimSpace(tenant.Address); addr != "" {
		return name + " - " + addr
	}
	return name
}

func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	parts := strings.Fields(full)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
