package vfs

import (
	"fmt"
	"strings"
)

// PlannerKind identifies which of the planner's content shapes a PlannerAst node holds: a handful of
// single-string slots (root/sub-plan/strategy/notes), a handful of plain string lists (goals/ideas/deps/
// implemented/research), and one structured list (jobs).
type PlannerKind uint8

const (
	PlannerRoot PlannerKind = iota
	PlannerSubPlan
	PlannerStrategy
	PlannerNotes
	PlannerGoals
	PlannerIdeas
	PlannerDeps
	PlannerImplemented
	PlannerResearch
	PlannerJobs
)

func (k PlannerKind) String() string {
	switch k {
	case PlannerRoot:
		return "root"
	case PlannerSubPlan:
		return "subplan"
	case PlannerStrategy:
		return "strategy"
	case PlannerNotes:
		return "notes"
	case PlannerGoals:
		return "goals"
	case PlannerIdeas:
		return "ideas"
	case PlannerDeps:
		return "deps"
	case PlannerImplemented:
		return "implemented"
	case PlannerResearch:
		return "research"
	case PlannerJobs:
		return "jobs"
	default:
		return "unknown"
	}
}

func plannerKindFromString(s string) (PlannerKind, bool) {
	for k := PlannerRoot; k <= PlannerJobs; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// PlannerJob is one entry of a PlannerJobs node: a unit of planned work with a priority, completion state,
// and an optional assignee.
type PlannerJob struct {
	Description string
	Priority    uint32
	Completed   bool
	Assignee    string
}

// PlannerAst is a resident VFS leaf holding one slot of the planning document: either free text
// (root/sub-plan/strategy/notes), a flat list of strings (goals/ideas/deps/implemented/research), or a
// list of PlannerJob records (jobs). It does not expose structural children; every planner node is a leaf.
type PlannerAst struct {
	nodeBase
	PlanKind PlannerKind
	Text     string
	List     []string
	Jobs     []PlannerJob
}

func NewPlannerText(name string, kind PlannerKind, text string) *PlannerAst {
	return &PlannerAst{nodeBase: nodeBase{name: name}, PlanKind: kind, Text: text}
}

func NewPlannerList(name string, kind PlannerKind, items []string) *PlannerAst {
	return &PlannerAst{nodeBase: nodeBase{name: name}, PlanKind: kind, List: items}
}

func NewPlannerJobs(name string, jobs []PlannerJob) *PlannerAst {
	return &PlannerAst{nodeBase: nodeBase{name: name}, PlanKind: PlannerJobs, Jobs: jobs}
}

func (n *PlannerAst) Kind() Kind        { return KindAst }
func (n *PlannerAst) IsDirectory() bool { return false }

func (n *PlannerAst) Children() (map[string]Node, error) {
	return map[string]Node{}, nil
}

func (n *PlannerAst) isTextSlot() bool {
	switch n.PlanKind {
	case PlannerRoot, PlannerSubPlan, PlannerStrategy, PlannerNotes:
		return true
	default:
		return false
	}
}

func (n *PlannerAst) isListSlot() bool {
	switch n.PlanKind {
	case PlannerGoals, PlannerIdeas, PlannerDeps, PlannerImplemented, PlannerResearch:
		return true
	default:
		return false
	}
}

func (n *PlannerAst) Read() ([]byte, error) {
	switch {
	case n.isTextSlot():
		return []byte(n.Text), nil
	case n.isListSlot():
		return []byte(strings.Join(n.List, "\n")), nil
	case n.PlanKind == PlannerJobs:
		var b strings.Builder
		for _, j := range n.Jobs {
			status := " "
			if j.Completed {
				status = "x"
			}
			fmt.Fprintf(&b, "[%s] (%d) %s", status, j.Priority, j.Description)
			if j.Assignee != "" {
				fmt.Fprintf(&b, " @%s", j.Assignee)
			}
			b.WriteString("\n")
		}
		return []byte(b.String()), nil
	default:
		return nil, &FormatError{Detail: fmt.Sprintf("planner: unknown slot kind %v", n.PlanKind)}
	}
}

// Write accepts a new value for a text slot or a plain newline-separated list slot; jobs are structured and
// must be edited through the planner-specific mutation API rather than free-text write.
func (n *PlannerAst) Write(content []byte) error {
	switch {
	case n.isTextSlot():
		n.Text = string(content)
		return nil
	case n.isListSlot():
		n.List = splitNonEmptyLines(string(content))
		return nil
	default:
		return &UsageError{Message: "planner jobs cannot be replaced by a raw text write: " + n.name}
	}
}

func splitNonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func (n *PlannerAst) astTypeTag() string { return "planner" }

func (n *PlannerAst) encodeAst(selfPath string) []byte {
	e := &astEncoder{}
	e.str(n.PlanKind.String())
	switch {
	case n.isTextSlot():
		e.str(n.Text)
	case n.isListSlot():
		e.u32(uint32(len(n.List)))
		for _, item := range n.List {
			e.str(item)
		}
	case n.PlanKind == PlannerJobs:
		e.u32(uint32(len(n.Jobs)))
		for _, j := range n.Jobs {
			e.str(j.Description)
			e.u32(j.Priority)
			if j.Completed {
				e.u8(1)
			} else {
				e.u8(0)
			}
			e.str(j.Assignee)
		}
	}
	return e.bytes()
}

func (n *PlannerAst) decodeAst(selfPath string, payload []byte) ([]astFixup, error) {
	d := newAstDecoder(n.astTypeTag(), payload)
	kindStr, err := d.str()
	if err != nil {
		return nil, err
	}
	kind, ok := plannerKindFromString(kindStr)
	if !ok {
		return nil, &FormatError{Detail: fmt.Sprintf("planner %s: unknown slot kind %q", selfPath, kindStr)}
	}
	n.PlanKind = kind
	switch {
	case n.isTextSlot():
		if n.Text, err = d.str(); err != nil {
			return nil, err
		}
	case n.isListSlot():
		count, err := d.u32()
		if err != nil {
			return nil, err
		}
		n.List = make([]string, count)
		for i := range n.List {
			if n.List[i], err = d.str(); err != nil {
				return nil, err
			}
		}
	case n.PlanKind == PlannerJobs:
		count, err := d.u32()
		if err != nil {
			return nil, err
		}
		n.Jobs = make([]PlannerJob, count)
		for i := range n.Jobs {
			j := &n.Jobs[i]
			if j.Description, err = d.str(); err != nil {
				return nil, err
			}
			if j.Priority, err = d.u32(); err != nil {
				return nil, err
			}
			completed, err := d.u8()
			if err != nil {
				return nil, err
			}
			j.Completed = completed != 0
			if j.Assignee, err = d.str(); err != nil {
				return nil, err
			}
		}
	}
	return nil, d.finish()
}

func init() {
	registerAstDecoder("planner", func(name string) astNode { return &PlannerAst{nodeBase: nodeBase{name: name}} })
}
