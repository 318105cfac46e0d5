// Package mission models the game's mission script XML format: triggers,
// the closed set of statement opcodes they fire, the mission parent/child
// DAG, and the dialogue (conversation) graph those statements reference.
package mission

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sandrockwiki/census/pkg/censuserr"
)

// maxDecodeRounds bounds the repeated %XX-unescape pass: attribute values
// are sometimes doubly encoded, but never more than a handful of times.
const maxDecodeRounds = 10

// xmlMission mirrors the top-level <mission> element.
type xmlMission struct {
	XMLName       xml.Name     `xml:"mission"`
	ID            int          `xml:"id,attr"`
	IsMain        string       `xml:"isMain,attr"`
	IsController  string       `xml:"isController,attr"`
	IsEvent       string       `xml:"isEvent,attr"`
	NameID        int          `xml:"nameId,attr"`
	PropertiesRaw string       `xml:"properties,attr"`
	Triggers      []xmlTrigger `xml:"TRIGGER"`
}

type xmlTrigger struct {
	Name       string       `xml:"name,attr"`
	Repeat     int          `xml:"repeat,attr"`
	Procedure  float64      `xml:"procedure,attr"`
	Step       float64      `xml:"step,attr"`
	Events     xmlStmtGroup `xml:"EVENTS"`
	Conditions xmlStmtGroup `xml:"CONDITIONS"`
	Actions    xmlStmtGroup `xml:"ACTIONS"`
}

// xmlStmtGroup wraps the repeated <STMT> children of an <EVENTS>,
// <CONDITIONS>, or <ACTIONS> element.
type xmlStmtGroup struct {
	Statements []xmlStatement `xml:"STMT"`
}

// xmlStatement captures a <STMT stmt="OPCODE" ...> element: the opcode
// plus every other attribute, generically, since each opcode carries its
// own flat, heterogeneous attribute set.
type xmlStatement struct {
	Opcode string     `xml:"stmt,attr"`
	Attrs  []xml.Attr `xml:",any,attr"`
}

// Properties is a mission's pipe-delimited description/npc/opening tuple,
// parsed from the properties="a|b|c|d" XML attribute.
type Properties struct {
	DescriptionID int
	NPCID         int
	OpeningConvID int
}

// HasNarrative reports whether this mission's properties contribute a
// description/npc/opening-conversation triple. Per §8 scenario 6, a
// properties tuple beginning with -1|0|... carries no narrative fields,
// though rewards and child-name inheritance are unaffected.
func (p Properties) HasNarrative() bool {
	return p.DescriptionID >= 0
}

// parseProperties splits the pipe-delimited properties attribute into its
// tuple. A missing or non-numeric segment defaults to -1, the same "no
// narrative" sentinel an explicit -1 carries.
func parseProperties(raw string) Properties {
	parts := strings.Split(raw, "|")
	get := func(i int) int {
		if i >= len(parts) {
			return -1
		}
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return -1
		}
		return n
	}
	return Properties{
		DescriptionID: get(0),
		NPCID:         get(1),
		OpeningConvID: get(2),
	}
}

// Mission is the parsed, decoded mission script.
type Mission struct {
	ID           int
	NameID       int
	IsMain       bool
	IsController bool
	IsEvent      bool
	Properties   Properties
	Triggers     []Trigger
}

// ParseMission parses a mission script document, recursively %XX-decoding
// every attribute value.
func ParseMission(data []byte) (*Mission, error) {
	var raw xmlMission
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing mission xml: %w: %v", censuserr.ErrParse, err)
	}

	m := &Mission{
		ID:           raw.ID,
		NameID:       raw.NameID,
		IsMain:       strings.EqualFold(raw.IsMain, "true"),
		IsController: strings.EqualFold(raw.IsController, "true"),
		IsEvent:      strings.EqualFold(raw.IsEvent, "true"),
		Properties:   parseProperties(raw.PropertiesRaw),
	}

	for _, rt := range raw.Triggers {
		trigger := Trigger{
			Name:      rt.Name,
			Repeat:    rt.Repeat,
			Procedure: rt.Procedure,
			Step:      rt.Step,
			Order:     len(m.Triggers),
		}
		var err error
		if trigger.Events, err = decodeStatements(rt.Events.Statements); err != nil {
			return nil, fmt.Errorf("mission %d trigger %q events: %w", raw.ID, rt.Name, err)
		}
		if trigger.Conditions, err = decodeStatements(rt.Conditions.Statements); err != nil {
			return nil, fmt.Errorf("mission %d trigger %q conditions: %w", raw.ID, rt.Name, err)
		}
		if trigger.Actions, err = decodeStatements(rt.Actions.Statements); err != nil {
			return nil, fmt.Errorf("mission %d trigger %q actions: %w", raw.ID, rt.Name, err)
		}
		m.Triggers = append(m.Triggers, trigger)
	}
	return m, nil
}

func decodeStatements(raw []xmlStatement) ([]Statement, error) {
	out := make([]Statement, 0, len(raw))
	for _, rs := range raw {
		attrs := make(map[string]string, len(rs.Attrs))
		for _, a := range rs.Attrs {
			decoded, err := decodeRecursive(a.Value)
			if err != nil {
				return nil, fmt.Errorf("attr %q: %w", a.Name.Local, err)
			}
			attrs[a.Name.Local] = decoded
		}
		out = append(out, classifyStatement(rs.Opcode, attrs))
	}
	return out, nil
}

// decodeRecursive applies url.QueryUnescape repeatedly until the value
// stops changing or maxDecodeRounds is reached, handling the occasional
// doubly-escaped attribute value.
func decodeRecursive(value string) (string, error) {
	current := value
	for i := 0; i < maxDecodeRounds; i++ {
		decoded, err := url.QueryUnescape(current)
		if err != nil {
			// Not every value is percent-encoded at all; stop decoding
			// rather than failing the whole parse.
			return current, nil
		}
		if decoded == current {
			return current, nil
		}
		current = decoded
	}
	return current, nil
}
