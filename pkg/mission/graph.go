package mission

import "fmt"

// maxResolveDepth bounds ResolveName's upward walk so a malformed or
// cyclic parent chain can never loop forever.
const maxResolveDepth = 10

// missionFlags carries a mission's own isMain/isController/isEvent XML
// attributes, recorded independently of DAG shape.
type missionFlags struct {
	isMain       bool
	isController bool
	isEvent      bool
}

// MissionGraph stores the mission parent/child DAG as two parallel
// id-keyed maps rather than object references, matching how
// ConversationGraph stores dialogue.
type MissionGraph struct {
	ChildrenOf map[int][]int
	ParentsOf  map[int]int

	// names is mission id -> a resolvable display name, populated by the
	// caller for missions that actually carry one; ResolveName walks
	// ParentsOf looking for the nearest populated entry.
	names map[int]string

	flags map[int]missionFlags
}

// NewMissionGraph builds an empty graph.
func NewMissionGraph() *MissionGraph {
	return &MissionGraph{
		ChildrenOf: make(map[int][]int),
		ParentsOf:  make(map[int]int),
		names:      make(map[int]string),
		flags:      make(map[int]missionFlags),
	}
}

// AddMission records a mission's parent relationship (parentID == 0 means
// "no parent") and, if non-empty, its own name-id.
func (g *MissionGraph) AddMission(missionID, parentID int, name string) {
	if parentID != 0 {
		g.ParentsOf[missionID] = parentID
		g.ChildrenOf[parentID] = append(g.ChildrenOf[parentID], missionID)
	}
	if name != "" {
		g.names[missionID] = name
	}
}

// SetFlags records a mission's own isMain/isController/isEvent flags, read
// directly from its XML attributes. A mission never recorded here reports
// false for all three.
func (g *MissionGraph) SetFlags(missionID int, isMain, isController, isEvent bool) {
	g.flags[missionID] = missionFlags{isMain: isMain, isController: isController, isEvent: isEvent}
}

// ResolveName walks up ParentsOf from missionID to the first ancestor
// (inclusive of missionID itself) with a non-empty name, bounded by
// maxResolveDepth so a cyclic parent chain can never hang resolution.
func (g *MissionGraph) ResolveName(missionID int) (string, error) {
	current := missionID
	for depth := 0; depth < maxResolveDepth; depth++ {
		if name, ok := g.names[current]; ok {
			return name, nil
		}
		parent, ok := g.ParentsOf[current]
		if !ok {
			return "", fmt.Errorf("mission %d: no ancestor has a resolvable name", missionID)
		}
		current = parent
	}
	return "", fmt.Errorf("mission %d: name resolution exceeded depth %d, likely a cycle", missionID, maxResolveDepth)
}

// IsMain reports whether a mission is flagged as part of the main
// storyline, per its own isMain XML attribute rather than parentage.
func (g *MissionGraph) IsMain(missionID int) bool {
	return g.flags[missionID].isMain
}

// IsController reports whether a mission is flagged as a controller
// mission (drives other missions rather than presenting content itself).
func (g *MissionGraph) IsController(missionID int) bool {
	return g.flags[missionID].isController
}

// IsEvent reports whether a mission is flagged as a timed/event mission.
func (g *MissionGraph) IsEvent(missionID int) bool {
	return g.flags[missionID].isEvent
}

// CorrelateConversations pairs each SHOW CONVERSATION(-CACHED) statement
// with the position of the ON CONVERSATION END that closes the same
// conversation id, counted among all conversation statements across the
// triggers in order, for output ordering. A conversation id with no
// matching end is simply omitted from the result rather than treated as
// an error.
func CorrelateConversations(triggers []Trigger) map[int]int {
	opened := make(map[int]bool)
	closedAt := make(map[int]int)

	order := 0
	for _, trigger := range triggers {
		for _, stmt := range trigger.AllStatements() {
			mode, convID, ok := stmt.IsConversation()
			if !ok {
				continue
			}
			switch mode {
			case "show", "show_cached":
				opened[convID] = true
			case "end":
				closedAt[convID] = order
			}
			order++
		}
	}

	result := make(map[int]int)
	for convID := range opened {
		if closeOrder, ok := closedAt[convID]; ok {
			result[convID] = closeOrder
		}
	}
	return result
}
