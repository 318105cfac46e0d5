package itemsource

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sandrockwiki/census/pkg/generator"
	"github.com/sandrockwiki/census/pkg/mission"
	"github.com/sandrockwiki/census/pkg/preproc"
	"github.com/sandrockwiki/census/pkg/registry"
)

// Result is the frozen output of a full resolver run: every discovered
// source, plus the nominal main/secondary split computed from it.
type Result struct {
	Provenance Provenance
	Unlockers  map[int]map[Source]struct{}
	Main       Provenance
	Secondary  Provenance

	// DiscoveredAt maps an item id to the Phase 2 iteration at which it
	// first entered Provenance (0 for items Phase 1 already resolved
	// before Phase 2 ran). Diagnostics-only bookkeeping; see
	// pkg/diagnostics.
	DiscoveredAt map[int]int
}

// Resolver runs the two-phase item-source extraction pipeline.
type Resolver struct {
	// KnownBadDrops lists drop-table ids maintained as explicitly bogus —
	// their outcomes are filtered out of Provenance after Phase 2, a
	// data-driven alternative to hardcoding the list in Go (see the
	// resolved open question in DESIGN.md).
	KnownBadDrops []int

	// ManualAdd/ManualRemove apply after Phase 2: ManualAdd injects sources
	// the automated passes cannot discover; ManualRemove deletes sources a
	// pass incorrectly inferred.
	ManualAdd    map[int][]Source
	ManualRemove map[int][]Source

	logger *logrus.Entry
}

// NewResolver returns a Resolver with empty override lists.
func NewResolver() *Resolver {
	return &Resolver{
		ManualAdd:    make(map[int][]Source),
		ManualRemove: make(map[int][]Source),
	}
}

// WithLogger attaches a logger used for phase/iteration progress.
func (r *Resolver) WithLogger(logger *logrus.Entry) *Resolver {
	r.logger = logger
	return r
}

func (r *Resolver) logInfo(format string, args ...any) {
	if r.logger != nil {
		r.logger.Infof(format, args...)
	}
}

// Run executes Phase 1 (independent extraction), Phase 2 (the crafting/
// farming/fishing/containers/machine-upgrades fixpoint), applies the known-
// bad-drop filter and manual add/remove lists, and computes the main/
// secondary split.
func (r *Resolver) Run(ctx context.Context, reg *registry.Registry, gen *generator.Table, scenes []preproc.InterestPoint, missions []*mission.Mission) (*Result, error) {
	prov := make(Provenance)

	if err := r.runPhase1(ctx, reg, gen, scenes, missions, prov); err != nil {
		return nil, fmt.Errorf("phase 1: %w", err)
	}
	r.logInfo("itemsource: phase 1 discovered %d (item, source) pairs", prov.Count())

	discoveredAt := make(map[int]int, prov.Count())
	for itemID := range prov {
		discoveredAt[itemID] = 0
	}

	itemTable, err := reg.Table("item")
	if err != nil {
		return nil, fmt.Errorf("loading item table: %w", err)
	}

	unlockers, err := r.runUnlockers(ctx, reg, gen)
	if err != nil {
		return nil, fmt.Errorf("unlockers: %w", err)
	}

	if err := r.runPhase2Tracked(ctx, reg, gen, prov, unlockers, itemTable.Len(), discoveredAt); err != nil {
		return nil, fmt.Errorf("phase 2: %w", err)
	}
	r.logInfo("itemsource: phase 2 converged at %d (item, source) pairs", prov.Count())

	r.filterKnownBadDrops(prov)
	r.applyManualOverrides(prov)
	r.aggregateSpouseGifts(prov)

	nominal, err := loadNominalSourceTable(reg)
	if err != nil {
		return nil, fmt.Errorf("loading nominal source table: %w", err)
	}
	main, secondary := SplitMainSecondary(nominal, prov)

	return &Result{
		Provenance:   prov,
		Unlockers:    unlockers,
		Main:         main,
		Secondary:    secondary,
		DiscoveredAt: discoveredAt,
	}, nil
}

func (r *Resolver) filterKnownBadDrops(prov Provenance) {
	bad := make(map[int]bool, len(r.KnownBadDrops))
	for _, id := range r.KnownBadDrops {
		bad[id] = true
	}
	if len(bad) == 0 {
		return
	}
	for itemID, set := range prov {
		for src := range set {
			if src.Kind == SourceMonster {
				if params := src.Params(); len(params) > 0 {
					if dropID, err := atoiSafe(params[0]); err == nil && bad[dropID] {
						delete(set, src)
					}
				}
			}
		}
		if len(set) == 0 {
			delete(prov, itemID)
		}
	}
}

func (r *Resolver) applyManualOverrides(prov Provenance) {
	for itemID, sources := range r.ManualAdd {
		for _, src := range sources {
			prov.Add(itemID, src)
		}
	}
	for itemID, sources := range r.ManualRemove {
		set, ok := prov[itemID]
		if !ok {
			continue
		}
		for _, src := range sources {
			delete(set, src)
		}
		if len(set) == 0 {
			delete(prov, itemID)
		}
	}
}
