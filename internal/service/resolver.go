package service

import (
	"context"
	"log"
	"strconv"

	"github.com/rentloop/crm-sync-worker/internal/crm"
	"github.com/rentloop/crm-sync-worker/internal/models"
)

// ContactAPI is the subset of the CRM client the resolver needs.
type ContactAPI interface {
	LookupContactByEmail(ctx context.Context, email string) (*crm.Contact, error)
	LookupContactByPhone(ctx context.Context, phone string) (*crm.Contact, error)
	QueryContacts(ctx context.Context, query string) ([]crm.Contact, error)
}

// lookupStrategy is one step in the resolution cascade.
type lookupStrategy struct {
	name string
	run  func(ctx context.Context) (*crm.Contact, error)
}

// ContactResolver finds the existing CRM contact for a tenant, if one
// exists. The vendor has no reliable upsert-by-external-key primitive
// across its API generations, so resolution is an ordered cascade of
// best-effort lookups instead.
type ContactResolver struct {
	api ContactAPI
}

func NewContactResolver(api ContactAPI) *ContactResolver {
	return &ContactResolver{api: api}
}

// Resolve runs each applicable lookup in order and returns the first
// match. A failed lookup is logged and treated as no match; the cascade
// continues. Returns nil when every lookup comes up empty.
func (r *ContactResolver) Resolve(ctx context.Context, tenant *models.Tenant, phone string) *crm.Contact {
	for _, strategy := range r.strategies(tenant, phone) {
		contact, err := strategy.run(ctx)
		if err != nil {
			log.Printf("Contact lookup by %s failed for tenant %d: %v", strategy.name, tenant.ID, err)
			continue
		}
		if contact != nil {
			return contact
		}
	}
	return nil
}

func (r *ContactResolver) strategies(tenant *models.Tenant, phone string) []lookupStrategy {
	var strategies []lookupStrategy
	if tenant.Email != "" {
		strategies = append(strategies, lookupStrategy{
			name: "email",
			run: func(ctx context.Context) (*crm.Contact, error) {
				return r.api.LookupContactByEmail(ctx, tenant.Email)
			},
		})
	}
	if phone != "" {
		strategies = append(strategies, lookupStrategy{
			name: "phone",
			run: func(ctx context.Context) (*crm.Contact, error) {
				return r.api.LookupContactByPhone(ctx, phone)
			},
		})
	}
	if tenant.ConfirmationCode != "" {
		strategies = append(strategies, lookupStrategy{
			name: "confirmation code",
			run:  r.queryStrategy(tenant.ConfirmationCode),
		})
	}
	// Last resort: matches only if the tenant id was stored as a custom
	// field on a previously synced contact.
	strategies = append(strategies, lookupStrategy{
		name: "tenant id",
		run:  r.queryStrategy(strconv.FormatInt(tenant.ID, 10)),
	})
	return strategies
}

func (r *ContactResolver) queryStrategy(query string) func(ctx context.Context) (*crm.Contact, error) {
	return func(ctx context.Context) (*crm.Contact, error) {
		contacts, err := r.api.QueryContacts(ctx, query)
		if err != nil {
			return nil, err
		}
		if len(contacts) == 0 {
			return nil, nil
		}
		return &contacts[0], nil
	}
}
