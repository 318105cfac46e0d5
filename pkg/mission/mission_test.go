package mission

import "testing"

const testMissionXML = `<mission id="100" isMain="true" isController="false" isEvent="false" nameId="9100" properties="9101|9102|9103|0">
	<TRIGGER name="OnComplete" repeat="0" procedure="1" step="1">
		<EVENTS>
			<STMT stmt="CHECK VAR" name="intro_seen" ref="1"/>
		</EVENTS>
		<CONDITIONS>
			<STMT stmt="CHECK MISSION CURRENT STATE" missionId="1" state="3" flag="1"/>
		</CONDITIONS>
		<ACTIONS>
			<STMT stmt="BAG ADD ITEM REPLACE" itemId="500" count="Ring%20of%20Power" addRemove="0"/>
		</ACTIONS>
	</TRIGGER>
</mission>`

func TestParseMissionClassifiesStatements(t *testing.T) {
	m, err := ParseMission([]byte(testMissionXML))
	if err != nil {
		t.Fatalf("ParseMission: %v", err)
	}
	if m.ID != 100 {
		t.Fatalf("ID = %d, want 100", m.ID)
	}
	if !m.IsMain {
		t.Error("expected IsMain = true")
	}
	if m.IsController || m.IsEvent {
		t.Errorf("expected IsController/IsEvent = false, got %v/%v", m.IsController, m.IsEvent)
	}
	if m.NameID != 9100 {
		t.Errorf("NameID = %d, want 9100", m.NameID)
	}
	if m.Properties.DescriptionID != 9101 || m.Properties.NPCID != 9102 || m.Properties.OpeningConvID != 9103 {
		t.Errorf("Properties = %+v, want {9101 9102 9103}", m.Properties)
	}
	if len(m.Triggers) != 1 {
		t.Fatalf("expected 1 trigger, got %d", len(m.Triggers))
	}

	trigger := m.Triggers[0]
	if trigger.Name != "OnComplete" {
		t.Errorf("trigger.Name = %q, want OnComplete", trigger.Name)
	}
	if missionID, ok := trigger.Conditions[0].IsCheckMissionState(); !ok || missionID != 1 {
		t.Errorf("IsCheckMissionState() = %d, %v, want 1, true", missionID, ok)
	}

	itemID, _, ok := trigger.Actions[0].IsReceiveItem()
	if !ok || itemID != 500 {
		t.Errorf("IsReceiveItem() itemID = %d, %v, want 500, true", itemID, ok)
	}
}

func TestParseMissionPropertiesNegativeHasNoNarrative(t *testing.T) {
	m, err := ParseMission([]byte(`<mission id="101" isMain="false" properties="-1|0|0|0"></mission>`))
	if err != nil {
		t.Fatalf("ParseMission: %v", err)
	}
	if m.Properties.HasNarrative() {
		t.Errorf("expected HasNarrative() = false for a -1-leading properties tuple, got %+v", m.Properties)
	}
}

func TestIsReceiveItemIgnoresRemoval(t *testing.T) {
	stmt := classifyStatement("BAG ADD ITEM REPLACE", map[string]string{
		"itemId": "9", "count": "1", "addRemove": "1",
	})
	if _, _, ok := stmt.IsReceiveItem(); ok {
		t.Error("expected ok=false for a non-zero addRemove (item removal, not a grant)")
	}
}

func TestIsBlueprintUnlockScalarVsTag(t *testing.T) {
	scalar := classifyStatement("BLUEPRINT UNLOCK", map[string]string{"id": "42"})
	itemID, itemTag, ok := scalar.IsBlueprintUnlock()
	if !ok || itemID != 42 || itemTag != "" {
		t.Errorf("scalar IsBlueprintUnlock() = %d, %q, %v, want 42, \"\", true", itemID, itemTag, ok)
	}

	tagged := classifyStatement("BLUEPRINT UNLOCK", map[string]string{"itemTag": "Cooking"})
	itemID, itemTag, ok = tagged.IsBlueprintUnlock()
	if !ok || itemID != 0 || itemTag != "Cooking" {
		t.Errorf("tag-based IsBlueprintUnlock() = %d, %q, %v, want 0, Cooking, true", itemID, itemTag, ok)
	}
}

func TestCheckMissionStateOnlyTrueForState3Flag1(t *testing.T) {
	stmt := classifyStatement("CHECK MISSION CURRENT STATE", map[string]string{
		"missionId": "7", "state": "2", "flag": "1",
	})
	if _, ok := stmt.IsCheckMissionState(); ok {
		t.Error("expected ok=false for state=2,flag=1")
	}
}

func TestUnknownOpcodeIsGenericNotError(t *testing.T) {
	stmt := classifyStatement("SOME FUTURE OPCODE", map[string]string{"x": "1"})
	if stmt.Kind != KindGeneric {
		t.Errorf("Kind = %v, want KindGeneric", stmt.Kind)
	}
}

func TestMissionGraphResolveNameWalksAncestors(t *testing.T) {
	g := NewMissionGraph()
	g.AddMission(1, 0, "RootStory")
	g.AddMission(2, 1, "")
	g.AddMission(3, 2, "")

	name, err := g.ResolveName(3)
	if err != nil {
		t.Fatalf("ResolveName: %v", err)
	}
	if name != "RootStory" {
		t.Errorf("ResolveName(3) = %q, want RootStory", name)
	}
}

func TestMissionGraphResolveNameBoundedByCycle(t *testing.T) {
	g := NewMissionGraph()
	g.ParentsOf[1] = 2
	g.ParentsOf[2] = 1

	if _, err := g.ResolveName(1); err == nil {
		t.Fatal("expected an error for a cyclic parent chain")
	}
}

func TestMissionGraphIsMainReflectsOwnFlagNotParentage(t *testing.T) {
	g := NewMissionGraph()
	g.AddMission(2, 1, "") // has a parent
	g.SetFlags(2, true, false, false)
	g.AddMission(3, 0, "Standalone") // no parent
	g.SetFlags(3, false, false, false)

	if !g.IsMain(2) {
		t.Error("expected mission 2 (has a parent, but isMain=true) to report IsMain = true")
	}
	if g.IsMain(3) {
		t.Error("expected mission 3 (no parent, but isMain=false) to report IsMain = false")
	}
	if g.IsMain(999) {
		t.Error("expected an unrecorded mission to default to IsMain = false")
	}
}

func TestConversationGraphWalkVisitsEachSegmentOnce(t *testing.T) {
	g := NewConversationGraph()
	g.AddSegment(&Segment{ID: 1, NextSeg: 2})
	g.AddSegment(&Segment{ID: 2, NextSeg: 1}) // back-edge to 1
	g.AddTalk(&Talk{ID: 10, EntrySeg: 1})

	var visited []int
	g.Walk(10, func(s *Segment) { visited = append(visited, s.ID) })

	if len(visited) != 2 {
		t.Fatalf("expected exactly 2 visits despite the back-edge, got %v", visited)
	}
}

func TestConversationGraphConvergeFindsCommonSegment(t *testing.T) {
	g := NewConversationGraph()
	g.AddSegment(&Segment{ID: 1, NextSeg: 3})
	g.AddSegment(&Segment{ID: 2, NextSeg: 3})
	g.AddSegment(&Segment{ID: 3})

	seg, ok := g.Converge(10, []int{1, 2})
	if !ok || seg != 3 {
		t.Fatalf("Converge() = %d, %v, want 3, true", seg, ok)
	}
}

func TestConversationGraphConvergeWarnsWhenBranchesNeverMeet(t *testing.T) {
	g := NewConversationGraph()
	g.AddSegment(&Segment{ID: 1, NextSeg: 11})
	g.AddSegment(&Segment{ID: 11})
	g.AddSegment(&Segment{ID: 2, NextSeg: 22})
	g.AddSegment(&Segment{ID: 22})

	if _, ok := g.Converge(10, []int{1, 2}); ok {
		t.Fatal("expected convergence to fail for disjoint branches")
	}
	if len(g.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(g.Warnings))
	}
}

func TestCorrelateConversationsPairsShowAndEnd(t *testing.T) {
	triggers := []Trigger{
		{Actions: []Statement{
			classifyStatement("SHOW CONVERSATION", map[string]string{"cId": "5"}),
			classifyStatement("ON CONVERSATION END", map[string]string{"cId": "5"}),
		}},
	}
	result := CorrelateConversations(triggers)
	if _, ok := result[5]; !ok {
		t.Fatalf("expected conversation 5 to be correlated, got %v", result)
	}
}
