package itemsource

import (
	"context"
	"errors"
	"strconv"

	"github.com/sandrockwiki/census/pkg/censuserr"
	"github.com/sandrockwiki/census/pkg/generator"
	"github.com/sandrockwiki/census/pkg/registry"
)

// runPhase2 loops the dependent extractors (crafting, farming, fishing,
// containers, machine upgrades above level 0) until a full pass adds no new
// (item, source) pairs, bounded by maxIterations — the itemTable size is a
// safe bound since each iteration that makes progress adds at least one new
// pair, and Provenance cannot exceed len(itemTable) distinct items times a
// finite source set per item for any single pass to plateau later than that
// many rounds in practice; the bound exists as a guard against a stalled
// fixpoint, not as an expected iteration count.
func (r *Resolver) runPhase2(ctx context.Context, reg *registry.Registry, gen *generator.Table, prov Provenance, unlockers map[int]map[Source]struct{}, maxIterations int) error {
	return r.runPhase2Tracked(ctx, reg, gen, prov, unlockers, maxIterations, nil)
}

// runPhase2Tracked is runPhase2 with an optional discoveredAt side-table:
// when non-nil, every item id that is new to prov at the end of iteration i
// is recorded as having first appeared at iteration i+1. This is purely a
// diagnostics aid (see pkg/diagnostics) and never influences convergence.
func (r *Resolver) runPhase2Tracked(ctx context.Context, reg *registry.Registry, gen *generator.Table, prov Provenance, unlockers map[int]map[Source]struct{}, maxIterations int, discoveredAt map[int]int) error {
	if maxIterations < 1 {
		maxIterations = 1
	}

	for i := 0; i < maxIterations; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		before := prov.Count()

		if err := extractCrafting(reg, prov, unlockers); err != nil {
			return err
		}
		if err := extractFarming(reg, prov); err != nil {
			return err
		}
		if err := extractFishing(reg, prov); err != nil {
			return err
		}
		if err := extractContainers(reg, gen, prov); err != nil {
			return err
		}
		if err := extractMachineUpgradesAboveLevel0(reg, prov); err != nil {
			return err
		}

		if discoveredAt != nil {
			for itemID := range prov {
				if _, seen := discoveredAt[itemID]; !seen {
					discoveredAt[itemID] = i + 1
				}
			}
		}

		if prov.Count() == before {
			r.logInfo("itemsource: phase 2 converged after %d iterations", i+1)
			return nil
		}
	}

	r.logInfo("itemsource: phase 2 stopped at the %d-iteration bound without a final quiet pass", maxIterations)
	return nil
}

// extractCrafting adds a recipe's result item once every one of its
// material items is already in Provenance, and — for station recipes —
// the recipe itself has at least one entry in the Unlockers set.
func extractCrafting(reg *registry.Registry, prov Provenance, unlockers map[int]map[Source]struct{}) error {
	table, err := reg.Table("recipe")
	if errors.Is(err, censuserr.ErrUnknownTable) {
		return nil
	}
	if err != nil {
		return err
	}

	recipes := registry.Recipes(table)
	var extractErr error
	recipes.Each(func(id int, rec registry.Record) {
		if extractErr != nil {
			return
		}
		resultItemID, ok := recipes.ResultItemID(id)
		if !ok {
			return
		}

		materials := recipes.MaterialItemIDs(id)
		for _, m := range materials {
			if !prov.Has(m) {
				return
			}
		}

		if stationID := recipes.StationID(id); stationID != 0 {
			if len(unlockers[id]) == 0 {
				return
			}
		}

		prov.Add(resultItemID, NewSource(SourceCrafting, strconv.Itoa(id)))
	})
	return extractErr
}

// extractFarming adds a crop's harvested item once its seed item is already
// obtainable, modeling the farming dependency the same shape as crafting.
func extractFarming(reg *registry.Registry, prov Provenance) error {
	table, err := reg.Table("crop")
	if errors.Is(err, censuserr.ErrUnknownTable) {
		return nil
	}
	if err != nil {
		return err
	}

	table.Each(func(id int, rec registry.Record) {
		seedItemID, ok := rec.Int("seedItemId")
		if !ok {
			return
		}
		harvestItemID, ok := rec.Int("harvestItemId")
		if !ok {
			return
		}
		if !prov.Has(seedItemID) {
			return
		}
		prov.Add(harvestItemID, NewSource(SourceFarming, strconv.Itoa(id)))
	})
	return nil
}

// extractFishing adds a fishing spot's catchable items once the spot's
// required bait (if any) is already obtainable.
func extractFishing(reg *registry.Registry, prov Provenance) error {
	table, err := reg.Table("fishingSpot")
	if errors.Is(err, censuserr.ErrUnknownTable) {
		return nil
	}
	if err != nil {
		return err
	}

	table.Each(func(id int, rec registry.Record) {
		if baitItemID, ok := rec.Int("baitItemId"); ok && baitItemID != 0 {
			if !prov.Has(baitItemID) {
				return
			}
		}
		for _, itemID := range rec.IntSlice("catchItemIds") {
			prov.Add(itemID, NewSource(SourceFishing, strconv.Itoa(id)))
		}
	})
	return nil
}

// extractContainers expands a container's drop group once the key or tool
// item required to open it (if any) is already obtainable.
func extractContainers(reg *registry.Registry, gen *generator.Table, prov Provenance) error {
	table, err := reg.Table("container")
	if errors.Is(err, censuserr.ErrUnknownTable) {
		return nil
	}
	if err != nil {
		return err
	}

	table.Each(func(id int, rec registry.Record) {
		if keyItemID, ok := rec.Int("keyItemId"); ok && keyItemID != 0 {
			if !prov.Has(keyItemID) {
				return
			}
		}
		groupID, ok := rec.Int("dropGroupId")
		if !ok {
			return
		}
		items, err := gen.Expand(strconv.Itoa(groupID))
		if err != nil {
			return
		}
		for itemID := range items {
			prov.Add(itemID, NewSource(SourceContainer, strconv.Itoa(id)))
		}
	})
	return nil
}

// extractMachineUpgradesAboveLevel0 adds an upgrade tier once its same-tag
// previous tier is both already reachable and itself lists upgrade
// materials — a tier above level 0 depends on the tier below it, not on
// the unrelated recipe-unlocker set.
func extractMachineUpgradesAboveLevel0(reg *registry.Registry, prov Provenance) error {
	table, err := reg.Table(machineUpgradeTable)
	if errors.Is(err, censuserr.ErrUnknownTable) {
		return nil
	}
	if err != nil {
		return err
	}

	idByTagLevel := make(map[string]map[int]int)
	table.Each(func(id int, rec registry.Record) {
		tag, ok := rec.String("tag")
		if !ok {
			return
		}
		level, _ := rec.Int("level")
		byLevel, ok := idByTagLevel[tag]
		if !ok {
			byLevel = make(map[int]int)
			idByTagLevel[tag] = byLevel
		}
		byLevel[level] = id
	})

	table.Each(func(id int, rec registry.Record) {
		level, _ := rec.Int("level")
		if level == 0 {
			return
		}
		tag, ok := rec.String("tag")
		if !ok {
			return
		}
		prevID, ok := idByTagLevel[tag][level-1]
		if !ok {
			return
		}
		prevRec, ok := table.Get(prevID)
		if !ok {
			return
		}
		prevItemID, ok := prevRec.Int("itemId")
		if !ok || !prov.Has(prevItemID) {
			return
		}
		materials, ok := prevRec.Slice("upgradeMaterials")
		if !ok || len(materials) == 0 {
			return
		}

		itemID, ok := rec.Int("itemId")
		if !ok {
			return
		}
		prov.Add(itemID, NewSource(SourceMachineUpgrade, strconv.Itoa(id)))
	})
	return nil
}
