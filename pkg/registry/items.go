package registry

// ItemTable is a narrow accessor over the "item" designer-config table,
// naming the handful of fields the census pipeline actually reads.
type ItemTable struct{ t *Table }

// Items wraps the item table for typed access. The caller is expected to
// have already loaded it via Registry.Table("item").
func Items(t *Table) ItemTable { return ItemTable{t} }

// Name returns the item's raw (non-localized) display name key.
func (it ItemTable) Name(id int) (string, bool) {
	rec, ok := it.t.Get(id)
	if !ok {
		return "", false
	}
	return rec.String("name")
}

// NameID returns the item's localized display-name id, looked up against
// a text.Table (see pkg/text and pkg/census's wiki-namer wiring) to get
// the actual localized string. Distinct from Name, which is a raw,
// non-localized key never shown to a wiki reader.
func (it ItemTable) NameID(id int) (int, bool) {
	rec, ok := it.t.Get(id)
	if !ok {
		return 0, false
	}
	return rec.Int("nameId")
}

// IconPath returns the item's icon asset path, used for version-suffix
// disambiguation in pkg/text.
func (it ItemTable) IconPath(id int) (string, bool) {
	rec, ok := it.t.Get(id)
	if !ok {
		return "", false
	}
	return rec.String("icon")
}

// Tags returns the item's classification tags (style/book/NPC clothing,
// etc.).
func (it ItemTable) Tags(id int) map[string]struct{} {
	rec, ok := it.t.Get(id)
	if !ok {
		return nil
	}
	return rec.Tags()
}

// IsTemp reports whether the item is a temporary/placeholder entry that
// source extraction should skip.
func (it ItemTable) IsTemp(id int) bool {
	rec, ok := it.t.Get(id)
	if !ok {
		return false
	}
	temp, _ := rec.Bool("isTemp")
	return temp
}

// Each iterates every item record in ascending id order.
func (it ItemTable) Each(fn func(id int, rec Record)) {
	it.t.Each(fn)
}

// RecipeTable is a narrow accessor over the "recipe" designer-config
// table.
type RecipeTable struct{ t *Table }

// Recipes wraps the recipe table for typed access.
func Recipes(t *Table) RecipeTable { return RecipeTable{t} }

// ResultItemID returns the item id a recipe produces.
func (rt RecipeTable) ResultItemID(id int) (int, bool) {
	rec, ok := rt.t.Get(id)
	if !ok {
		return 0, false
	}
	return rec.Int("resultItemId")
}

// StationID returns the crafting station id a recipe requires, or 0 if
// hand-craftable.
func (rt RecipeTable) StationID(id int) int {
	rec, ok := rt.t.Get(id)
	if !ok {
		return 0
	}
	stationID, _ := rec.Int("stationId")
	return stationID
}

// MaterialItemIDs returns the item ids consumed by a recipe.
func (rt RecipeTable) MaterialItemIDs(id int) []int {
	rec, ok := rt.t.Get(id)
	if !ok {
		return nil
	}
	raw, _ := rec.Slice("materials")
	out := make([]int, 0, len(raw))
	for _, m := range raw {
		entry, ok := m.(map[string]any)
		if !ok {
			continue
		}
		if itemID, ok := Record(entry).Int("itemId"); ok {
			out = append(out, itemID)
		}
	}
	return out
}

// Each iterates every recipe record in ascending id order.
func (rt RecipeTable) Each(fn func(id int, rec Record)) {
	rt.t.Each(fn)
}

// MonsterTable is a narrow accessor over the "monster" designer-config
// table.
type MonsterTable struct{ t *Table }

// Monsters wraps the monster table for typed access.
func Monsters(t *Table) MonsterTable { return MonsterTable{t} }

// DropTableID returns the loot-drop generator group id for a monster.
func (mt MonsterTable) DropTableID(id int) (int, bool) {
	rec, ok := mt.t.Get(id)
	if !ok {
		return 0, false
	}
	groupID, ok := rec.Int("dropGroupId")
	return groupID, ok
}

// IsEnraged reports whether the monster record is the "enraged" modifier
// variant of another monster.
func (mt MonsterTable) IsEnraged(id int) bool {
	rec, ok := mt.t.Get(id)
	if !ok {
		return false
	}
	enraged, _ := rec.Bool("isEnraged")
	return enraged
}

// Each iterates every monster record in ascending id order.
func (mt MonsterTable) Each(fn func(id int, rec Record)) {
	mt.t.Each(fn)
}

// StoreTable is a narrow accessor over the "store" designer-config table.
type StoreTable struct{ t *Table }

// Stores wraps the store table for typed access.
func Stores(t *Table) StoreTable { return StoreTable{t} }

// ProductItemIDs returns the item ids a store sells.
func (st StoreTable) ProductItemIDs(id int) []int {
	rec, ok := st.t.Get(id)
	if !ok {
		return nil
	}
	return rec.IntSlice("productItemIds")
}

// Name returns the store's display-name key, used for the Source.Params
// on a Store-kind tuple.
func (st StoreTable) Name(id int) (string, bool) {
	rec, ok := st.t.Get(id)
	if !ok {
		return "", false
	}
	return rec.String("name")
}

// Each iterates every store record in ascending id order.
func (st StoreTable) Each(fn func(id int, rec Record)) {
	st.t.Each(fn)
}
