package itemsource

import (
	"context"
	"errors"
	"strconv"

	"github.com/sandrockwiki/census/pkg/censuserr"
	"github.com/sandrockwiki/census/pkg/generator"
	"github.com/sandrockwiki/census/pkg/registry"
)

// unlockerTableCategory is the Unlockers analogue of tableCategory: each
// table contributes recipe ids (not item ids) to the Unlockers set for
// those recipes, via the Source that grants them.
type unlockerTableCategory struct {
	tableName   string
	kind        SourceKind
	recipeField string
}

var unlockerCategories = []unlockerTableCategory{
	// Machine acquisitions: owning the machine itself is what unlocks its
	// recipes, recorded per machine record's recipeIds list.
	{tableName: "machine", kind: SourceMachineUpgrade, recipeField: "recipeIds"},
	{tableName: "recipeBook", kind: SourceCrafting, recipeField: "recipeIds"},
	{tableName: "researchDisc", kind: SourceResearch, recipeField: "recipeIds"},
}

// runUnlockers performs the single non-fixpoint pass producing, for every
// recipe id, the set of Sources that unlock it: machine acquisitions,
// recipe books, research discs, cooking experimentation, scripted
// blueprint unlocks, and NPC recipe sharing.
func (r *Resolver) runUnlockers(ctx context.Context, reg *registry.Registry, gen *generator.Table) (map[int]map[Source]struct{}, error) {
	unlockers := make(map[int]map[Source]struct{})

	for _, cat := range unlockerCategories {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err := addUnlockerCategory(reg, cat, unlockers); err != nil {
			return nil, err
		}
	}

	if err := addCookingExperimentation(reg, unlockers); err != nil {
		return nil, err
	}

	if err := addScriptedBlueprintUnlocks(reg, unlockers); err != nil {
		return nil, err
	}

	if err := addNPCRecipeSharing(reg, unlockers); err != nil {
		return nil, err
	}

	return unlockers, nil
}

func addUnlocker(unlockers map[int]map[Source]struct{}, recipeID int, src Source) {
	set, ok := unlockers[recipeID]
	if !ok {
		set = make(map[Source]struct{})
		unlockers[recipeID] = set
	}
	set[src] = struct{}{}
}

func addUnlockerCategory(reg *registry.Registry, cat unlockerTableCategory, unlockers map[int]map[Source]struct{}) error {
	table, err := reg.Table(cat.tableName)
	if errors.Is(err, censuserr.ErrUnknownTable) {
		return nil
	}
	if err != nil {
		return err
	}

	table.Each(func(id int, rec registry.Record) {
		for _, recipeID := range rec.IntSlice(cat.recipeField) {
			addUnlocker(unlockers, recipeID, NewSource(cat.kind, strconv.Itoa(id)))
		}
	})
	return nil
}

// addCookingExperimentation grants a cooking recipe once its required
// experimentation threshold is met, recorded as its own table entry.
func addCookingExperimentation(reg *registry.Registry, unlockers map[int]map[Source]struct{}) error {
	table, err := reg.Table("cookingExperiment")
	if errors.Is(err, censuserr.ErrUnknownTable) {
		return nil
	}
	if err != nil {
		return err
	}

	table.Each(func(id int, rec registry.Record) {
		recipeID, ok := rec.Int("recipeId")
		if !ok {
			return
		}
		addUnlocker(unlockers, recipeID, NewSource(SourceCrafting, "experiment", strconv.Itoa(id)))
	})
	return nil
}

// addScriptedBlueprintUnlocks reads a recipeScript table of mission-driven
// blueprint grants, recording each as a crafting unlock keyed by the
// mission id that grants it.
func addScriptedBlueprintUnlocks(reg *registry.Registry, unlockers map[int]map[Source]struct{}) error {
	table, err := reg.Table("recipeScript")
	if errors.Is(err, censuserr.ErrUnknownTable) {
		return nil
	}
	if err != nil {
		return err
	}

	table.Each(func(id int, rec registry.Record) {
		recipeID, ok := rec.Int("recipeId")
		if !ok {
			return
		}
		missionID, _ := rec.Int("missionId")
		addUnlocker(unlockers, recipeID, NewSource(SourceMission, strconv.Itoa(missionID)))
	})
	return nil
}

// addNPCRecipeSharing reads the npcRecipeShare table: recipes an NPC will
// teach the player directly, outside of any mission or machine.
func addNPCRecipeSharing(reg *registry.Registry, unlockers map[int]map[Source]struct{}) error {
	table, err := reg.Table("npcRecipeShare")
	if errors.Is(err, censuserr.ErrUnknownTable) {
		return nil
	}
	if err != nil {
		return err
	}

	table.Each(func(id int, rec registry.Record) {
		npcID, _ := rec.Int("npcId")
		for _, recipeID := range rec.IntSlice("recipeIds") {
			addUnlocker(unlockers, recipeID, NewSource(SourceGift, strconv.Itoa(npcID)))
		}
	})
	return nil
}
