package billing

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// MetadataPlanIDKey is the event metadata key carrying the provider's plan
// or price identifier. When a catalog is configured and the id resolves, the
// catalog tier names the account's plan instead of the free/pro mirror.
const MetadataPlanIDKey = "plan_id"

// PlanTier maps one provider plan/price identifier to a tier label.
type PlanTier struct {
	ID   string `yaml:"id"`
	Name Plan   `yaml:"name"`
}

// PlanCatalog resolves provider plan identifiers to tier labels. Catalogs
// are immutable after loading; concurrent reads need no locking.
type PlanCatalog struct {
	tiers map[string]PlanTier
}

// NewPlanCatalog builds a catalog from explicit tiers.
// Returns ErrInvalidPlanCatalog on empty or duplicate identifiers.
func NewPlanCatalog(tiers ...PlanTier) (*PlanCatalog, error) {
	byID := make(map[string]PlanTier, len(tiers))
	for _, tier := range tiers {
		if tier.ID == "" {
			return nil, errors.Join(ErrInvalidPlanCatalog, errors.New("tier with empty id"))
		}
		if tier.Name == "" {
			return nil, errors.Join(ErrInvalidPlanCatalog, fmt.Errorf("tier %s has empty name", tier.ID))
		}
		if _, exists := byID[tier.ID]; exists {
			return nil, errors.Join(ErrInvalidPlanCatalog, fmt.Errorf("duplicate tier id %s", tier.ID))
		}
		byID[tier.ID] = tier
	}
	return &PlanCatalog{tiers: byID}, nil
}

// LoadPlanCatalog reads a YAML tier list:
//
//	- id: price_pro_monthly
//	  name: pro
//	- id: price_studio_annual
//	  name: studio
func LoadPlanCatalog(r io.Reader) (*PlanCatalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Join(ErrInvalidPlanCatalog, err)
	}

	var tiers []PlanTier
	if err := yaml.Unmarshal(data, &tiers); err != nil {
		return nil, errors.Join(ErrInvalidPlanCatalog, err)
	}

	return NewPlanCatalog(tiers...)
}

// Resolve looks up the tier for a provider plan identifier.
func (c *PlanCatalog) Resolve(planID string) (PlanTier, bool) {
	tier, ok := c.tiers[planID]
	return tier, ok
}
