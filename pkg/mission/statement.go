package mission

import (
	"fmt"
	"strconv"
)

// Kind classifies a Statement's opcode into the closed set of behaviors
// downstream item-source extraction and wiki rendering care about.
// Opcodes outside this set classify as KindGeneric and are never an error.
type Kind int

const (
	KindGeneric Kind = iota
	KindReceiveItem
	KindBlueprintUnlock
	KindMailDelivery
	KindNPCGift
	KindCheckMissionState
	KindCheckVar
	KindSetVar
	KindConversation
	KindRunMission
)

func (k Kind) String() string {
	switch k {
	case KindReceiveItem:
		return "ReceiveItem"
	case KindBlueprintUnlock:
		return "BlueprintUnlock"
	case KindMailDelivery:
		return "MailDelivery"
	case KindNPCGift:
		return "NPCGift"
	case KindCheckMissionState:
		return "CheckMissionState"
	case KindCheckVar:
		return "CheckVar"
	case KindSetVar:
		return "SetVar"
	case KindConversation:
		return "Conversation"
	case KindRunMission:
		return "RunMission"
	default:
		return "Generic"
	}
}

// opcodeKinds maps the closed set of recognized opcode strings (which, in
// the real script format, are space-separated phrases, not underscore
// identifiers) to their Kind. Every other opcode classifies as
// KindGeneric.
var opcodeKinds = map[string]Kind{
	"BAG MODIFY":                  KindReceiveItem,
	"BAG ADD ITEM REPLACE":        KindReceiveItem,
	"BLUEPRINT UNLOCK":            KindBlueprintUnlock,
	"MAIL SEND TO BOX":            KindMailDelivery,
	"ACTION NPC SEND GIFT":        KindNPCGift,
	"CHECK MISSION CURRENT STATE": KindCheckMissionState,
	"CHECK VAR":                   KindCheckVar,
	"SET VAR":                     KindSetVar,
	"SHOW CONVERSATION":           KindConversation,
	"SHOW CONVERSATION CACHED":    KindConversation,
	"ON CONVERSATION END":         KindConversation,
	"ON CONVERSATION END SEGMENT": KindConversation,
	"RUN MISSION":                 KindRunMission,
}

// Statement is a single trigger opcode plus its raw attribute payload,
// classified once at parse time into a Kind.
type Statement struct {
	Opcode string
	Kind   Kind
	Attrs  map[string]string
}

// classifyStatement builds a Statement from a raw opcode/attrs pair,
// looking up its Kind. Unknown opcodes are never an error.
func classifyStatement(opcode string, attrs map[string]string) Statement {
	kind, ok := opcodeKinds[opcode]
	if !ok {
		kind = KindGeneric
	}
	return Statement{Opcode: opcode, Kind: kind, Attrs: attrs}
}

func (s Statement) intAttr(key string) (int, bool) {
	raw, ok := s.Attrs[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsReceiveItem reports whether this statement grants an item, returning
// its item id and count. A non-zero addRemove means the statement removes
// rather than grants the item, which is never a source.
func (s Statement) IsReceiveItem() (itemID, count int, ok bool) {
	if s.Kind != KindReceiveItem {
		return 0, 0, false
	}
	if addRemove, hasAddRemove := s.intAttr("addRemove"); hasAddRemove && addRemove != 0 {
		return 0, 0, false
	}
	itemID, idOK := s.intAttr("itemId")
	if !idOK {
		itemID, idOK = s.intAttr("item")
	}
	count, countOK := s.intAttr("count")
	if !countOK {
		count = 1
	}
	return itemID, count, idOK
}

// IsBlueprintUnlock reports whether this statement unlocks a blueprint,
// returning either a scalar item id (itemID set, itemTag empty) or a tag
// to expand against the item registry (itemTag set, itemID zero). The tag
// case is resolved by the caller, which has registry access; pkg/mission
// itself never touches the registry.
func (s Statement) IsBlueprintUnlock() (itemID int, itemTag string, ok bool) {
	if s.Kind != KindBlueprintUnlock {
		return 0, "", false
	}
	if id, idOK := s.intAttr("id"); idOK && id != 0 {
		return id, "", true
	}
	tag, tagOK := s.Attrs["itemTag"]
	if !tagOK || tag == "" {
		return 0, "", false
	}
	return 0, tag, true
}

// IsMailDelivery reports whether this statement sends a mail, returning
// the mail template id it attaches. The template's own reward items need
// a follow-up registry lookup; this statement only carries the id.
func (s Statement) IsMailDelivery() (mailID int, ok bool) {
	if s.Kind != KindMailDelivery {
		return 0, false
	}
	mailID, ok = s.intAttr("mailId")
	return mailID, ok
}

// IsNPCGift reports whether this statement is an NPC-given festival gift,
// returning the NPC id and the gift id. The gift's own item drops need a
// follow-up registry lookup; this statement only carries the ids.
func (s Statement) IsNPCGift() (npcID, giftID int, ok bool) {
	if s.Kind != KindNPCGift {
		return 0, 0, false
	}
	npcID, npcOK := s.intAttr("npc")
	giftID, giftOK := s.intAttr("giftId")
	return npcID, giftID, npcOK && giftOK
}

// IsCheckMissionState reports whether this statement checks another
// mission's completion state, returning its mission id. Per the resolved
// open question, ok is true only for state=3,flag=1 ("successfully
// completed"); every other state/flag combination keeps
// KindCheckMissionState but returns ok=false here.
func (s Statement) IsCheckMissionState() (missionID int, ok bool) {
	if s.Kind != KindCheckMissionState {
		return 0, false
	}
	state, stateOK := s.intAttr("state")
	flag, flagOK := s.intAttr("flag")
	if !stateOK || !flagOK || state != 3 || flag != 1 {
		return 0, false
	}
	missionID, ok = s.intAttr("missionId")
	return missionID, ok
}

// IsCheckVar reports whether this statement checks a named variable
// against a referenced value, returning its name and the ref it is
// compared against.
func (s Statement) IsCheckVar() (name, ref string, ok bool) {
	if s.Kind != KindCheckVar {
		return "", "", false
	}
	name, nameOK := s.Attrs["name"]
	ref = s.Attrs["ref"]
	return name, ref, nameOK
}

// IsSetVar reports whether this statement sets a named variable, returning
// its name and assigned value.
func (s Statement) IsSetVar() (name, value string, ok bool) {
	if s.Kind != KindSetVar {
		return "", "", false
	}
	name, nameOK := s.Attrs["name"]
	value = s.Attrs["value"]
	return name, value, nameOK
}

// IsConversation reports whether this statement drives a conversation,
// returning its mode (one of "show", "show_cached", "end") and the
// correlation id.
func (s Statement) IsConversation() (mode string, convID int, ok bool) {
	if s.Kind != KindConversation {
		return "", 0, false
	}
	switch s.Opcode {
	case "SHOW CONVERSATION":
		mode = "show"
	case "SHOW CONVERSATION CACHED":
		mode = "show_cached"
	case "ON CONVERSATION END", "ON CONVERSATION END SEGMENT":
		mode = "end"
	default:
		return "", 0, false
	}
	convID, ok = s.intAttr("cId")
	return mode, convID, ok
}

// IsRunMission reports whether this statement starts a child mission,
// returning its mission id.
func (s Statement) IsRunMission() (childID int, ok bool) {
	if s.Kind != KindRunMission {
		return 0, false
	}
	childID, ok = s.intAttr("missionId")
	return childID, ok
}

// String renders a Statement for diagnostics.
func (s Statement) String() string {
	return fmt.Sprintf("%s[%s]%v", s.Kind, s.Opcode, s.Attrs)
}
