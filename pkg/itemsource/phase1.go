package itemsource

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sandrockwiki/census/pkg/censuserr"
	"github.com/sandrockwiki/census/pkg/generator"
	"github.com/sandrockwiki/census/pkg/mission"
	"github.com/sandrockwiki/census/pkg/preproc"
	"github.com/sandrockwiki/census/pkg/registry"
)

// tableCategory describes one order-independent, non-dependent designer-
// config extraction: every record of tableName contributes itemsField's
// item id(s) as Kind sources, parameterized by the record's own id plus
// any paramFields named.
type tableCategory struct {
	tableName   string
	kind        SourceKind
	itemsField  string
	paramFields []string

	// filterTemp, when set, skips any item id the "item" table marks
	// isTemp — a placeholder product row that should never surface as a
	// real source (§8 scenario 4).
	filterTemp bool
}

// phase1Categories lists every designer-config category §4.8 names for
// Phase 1. A table absent from a given data set (ErrUnknownTable) is
// simply skipped — not every release ships every category.
var phase1Categories = []tableCategory{
	{tableName: "store", kind: SourceStore, itemsField: "productItemIds", paramFields: []string{"name"}, filterTemp: true},
	{tableName: "ruins", kind: SourceRuins, itemsField: "rewardItemIds"},
	{tableName: "delivery", kind: SourceDelivery, itemsField: "rewardItemIds"},
	{tableName: "developerMail", kind: SourceDeveloperMail, itemsField: "itemIds"},
	{tableName: "eventGift", kind: SourceEventGift, itemsField: "itemIds"},
	{tableName: "guildReward", kind: SourceGuildReward, itemsField: "itemIds"},
	{tableName: "marriageMail", kind: SourceMarriageMail, itemsField: "itemIds"},
	{tableName: "photoTask", kind: SourcePhotoTask, itemsField: "rewardItemIds"},
	{tableName: "museumReward", kind: SourceMuseumReward, itemsField: "itemId"},
	{tableName: "partyService", kind: SourcePartyService, itemsField: "rewardItemIds"},
	{tableName: "petDispatch", kind: SourcePetDispatch, itemsField: "rewardItemIds"},
	{tableName: "research", kind: SourceResearch, itemsField: "rewardItemIds"},
	{tableName: "sandRacing", kind: SourceSandRacing, itemsField: "rewardItemIds"},
	{tableName: "sandSledding", kind: SourceSandSledding, itemsField: "rewardItemIds"},
	{tableName: "spouseCooking", kind: SourceSpouseCooking, itemsField: "itemId", paramFields: []string{"npcId"}},
	{tableName: "spouseGift", kind: SourceSpouseGift, itemsField: "itemId", paramFields: []string{"npcId"}},
	{tableName: "biographyPhoto", kind: SourceBiographyPhoto, itemsField: "rewardItemIds"},
	{tableName: "civilCorps", kind: SourceCivilCorps, itemsField: "rewardItemIds"},
}

// machineUpgradeTable is handled separately from phase1Categories
// because only level-0 (the base, always-unlocked tier) counts as a
// non-dependent Phase 1 source; higher tiers are resolved in Phase 2 from
// the tier below them (see extractMachineUpgradesAboveLevel0).
const machineUpgradeTable = "machineUpgrade"

func (r *Resolver) runPhase1(ctx context.Context, reg *registry.Registry, gen *generator.Table, scenes []preproc.InterestPoint, missions []*mission.Mission, prov Provenance) error {
	for _, cat := range phase1Categories {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := extractTableCategory(reg, cat, prov); err != nil {
			return fmt.Errorf("category %s: %w", cat.tableName, err)
		}
	}

	if err := extractMachineUpgradeLevel0(reg, prov); err != nil {
		return fmt.Errorf("machine upgrade level 0: %w", err)
	}

	if err := extractMonsterDrops(reg, gen, prov); err != nil {
		return fmt.Errorf("monster drops: %w", err)
	}

	if err := extractTerrainTrees(reg, gen, prov); err != nil {
		return fmt.Errorf("terrain trees: %w", err)
	}

	extractSceneInterestPoints(scenes, prov)

	if err := extractMissionSources(reg, missions, prov); err != nil {
		return fmt.Errorf("missions: %w", err)
	}

	return nil
}

func extractTableCategory(reg *registry.Registry, cat tableCategory, prov Provenance) error {
	table, err := reg.Table(cat.tableName)
	if errors.Is(err, censuserr.ErrUnknownTable) {
		return nil
	}
	if err != nil {
		return err
	}

	var items registry.ItemTable
	haveItems := false
	if cat.filterTemp {
		itemTable, itemErr := reg.Table("item")
		if itemErr == nil {
			items = registry.Items(itemTable)
			haveItems = true
		} else if !errors.Is(itemErr, censuserr.ErrUnknownTable) {
			return itemErr
		}
	}

	var extractErr error
	table.Each(func(id int, rec registry.Record) {
		if extractErr != nil {
			return
		}
		itemIDs := itemIDsFromRecord(rec, cat.itemsField)
		params := paramsFromRecord(id, rec, cat.paramFields)
		for _, itemID := range itemIDs {
			if cat.filterTemp && haveItems && items.IsTemp(itemID) {
				continue
			}
			prov.Add(itemID, NewSource(cat.kind, params...))
		}
	})
	return extractErr
}

// extractMachineUpgradeLevel0 adds the base-tier machine upgrade unlocks,
// which every player has from the start and so need no crafting/research
// prerequisite.
func extractMachineUpgradeLevel0(reg *registry.Registry, prov Provenance) error {
	table, err := reg.Table(machineUpgradeTable)
	if errors.Is(err, censuserr.ErrUnknownTable) {
		return nil
	}
	if err != nil {
		return err
	}

	table.Each(func(id int, rec registry.Record) {
		level, _ := rec.Int("level")
		if level != 0 {
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

// extractMonsterDrops expands every monster's drop generator group into
// Provenance, including the enraged-modifier variant (which shares its
// base monster's drop group by convention).
func extractMonsterDrops(reg *registry.Registry, gen *generator.Table, prov Provenance) error {
	table, err := reg.Table("monster")
	if errors.Is(err, censuserr.ErrUnknownTable) {
		return nil
	}
	if err != nil {
		return err
	}

	monsters := registry.Monsters(table)
	monsters.Each(func(id int, rec registry.Record) {
		groupID, ok := monsters.DropTableID(id)
		if !ok {
			return
		}
		// Unresolvable group references are skipped rather than failing the
		// whole extraction pass: not every monster's drop group is present
		// in every data set.
		items, err := gen.Expand(strconv.Itoa(groupID))
		if err != nil {
			return
		}
		for itemID := range items {
			prov.Add(itemID, NewSource(SourceMonster, strconv.Itoa(groupID), strconv.Itoa(id)))
		}
	})
	return nil
}

// extractTerrainTrees adds the fixed set of items every choppable terrain
// tree can yield, from the terrainTree designer-config table.
func extractTerrainTrees(reg *registry.Registry, gen *generator.Table, prov Provenance) error {
	table, err := reg.Table("terrainTree")
	if errors.Is(err, censuserr.ErrUnknownTable) {
		return nil
	}
	if err != nil {
		return err
	}

	table.Each(func(id int, rec registry.Record) {
		groupID, ok := rec.Int("dropGroupId")
		if !ok {
			return
		}
		items, err := gen.Expand(strconv.Itoa(groupID))
		if err != nil {
			return
		}
		for itemID := range items {
			prov.Add(itemID, NewSource(SourceTerrainTree, strconv.Itoa(id)))
		}
	})
	return nil
}

// extractSceneInterestPoints adds sources for the subset of preproc's
// interest-point kinds that directly yield items: resource areas (only
// those already filtered to the catchable-prefab branch by the scanner),
// treasure chests, and voxel spawners. Monster spawns are handled via
// extractMonsterDrops instead, since they need the monster table.
func extractSceneInterestPoints(scenes []preproc.InterestPoint, prov Provenance) {
	for _, pt := range scenes {
		var kind SourceKind
		switch pt.Kind {
		case preproc.KindResourceArea:
			kind = SourceResourceArea
		case preproc.KindTreasureChest:
			kind = SourceTreasureChest
		case preproc.KindVoxelSpawner:
			kind = SourceVoxelSpawner
		default:
			continue
		}
		prov.Add(pt.ObjectID, NewSource(kind, strconv.Itoa(pt.SceneID), strconv.Itoa(pt.ObjectID)))
	}
}

// extractMissionSources walks every mission's triggers, adding a Source
// for each received item, blueprint unlock (scalar or tag-expanded), mail
// delivery, and NPC gift statement found. Mail delivery and NPC gift
// statements only carry a template/gift id; the actual reward items need
// a follow-up lookup into the mailTemplate/eventGift designer-config
// tables, both of which this codebase already models with a flattened
// itemIds field.
func extractMissionSources(reg *registry.Registry, missions []*mission.Mission, prov Provenance) error {
	itemTable, err := reg.Table("item")
	haveItems := err == nil
	if err != nil && !errors.Is(err, censuserr.ErrUnknownTable) {
		return err
	}

	mailTable, err := reg.Table("mailTemplate")
	haveMail := err == nil
	if err != nil && !errors.Is(err, censuserr.ErrUnknownTable) {
		return err
	}

	giftTable, err := reg.Table("eventGift")
	haveGifts := err == nil
	if err != nil && !errors.Is(err, censuserr.ErrUnknownTable) {
		return err
	}

	for _, m := range missions {
		missionParam := strconv.Itoa(m.ID)
		for _, trigger := range m.Triggers {
			for _, stmt := range trigger.AllStatements() {
				if itemID, _, ok := stmt.IsReceiveItem(); ok {
					prov.Add(itemID, NewSource(SourceMission, missionParam))
				}

				if itemID, itemTag, ok := stmt.IsBlueprintUnlock(); ok {
					switch {
					case itemID != 0:
						prov.Add(itemID, NewSource(SourceMission, missionParam))
					case itemTag != "" && haveItems:
						itemTable.Each(func(id int, rec registry.Record) {
							tag, tagOK := rec.String("itemTag")
							if tagOK && strings.Contains(tag, itemTag) {
								prov.Add(id, NewSource(SourceMission, missionParam))
							}
						})
					}
				}

				if mailID, ok := stmt.IsMailDelivery(); ok && haveMail {
					if rec, recOK := mailTable.Get(mailID); recOK {
						for _, itemID := range rec.IntSlice("itemIds") {
							prov.Add(itemID, NewSource(SourceMission, missionParam))
						}
					}
				}

				if _, giftID, ok := stmt.IsNPCGift(); ok && haveGifts {
					if rec, recOK := giftTable.Get(giftID); recOK {
						for _, itemID := range rec.IntSlice("itemIds") {
							prov.Add(itemID, NewSource(SourceGift, missionParam))
						}
					}
				}
			}
		}
	}
	return nil
}

// itemIDsFromRecord reads either a single int field or an int-slice field,
// whichever the record actually has.
func itemIDsFromRecord(rec registry.Record, field string) []int {
	if field == "" {
		return nil
	}
	if id, ok := rec.Int(field); ok {
		return []int{id}
	}
	return rec.IntSlice(field)
}

// paramsFromRecord builds a Source's ordered parameters from a record's
// own id plus any additionally named fields, read as strings when present.
func paramsFromRecord(id int, rec registry.Record, fields []string) []string {
	params := []string{strconv.Itoa(id)}
	for _, f := range fields {
		if s, ok := rec.String(f); ok {
			params = append(params, s)
			continue
		}
		if n, ok := rec.Int(f); ok {
			params = append(params, strconv.Itoa(n))
		}
	}
	return params
}

func atoiSafe(s string) (int, error) {
	return strconv.Atoi(s)
}
