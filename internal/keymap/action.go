package keymap

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Action names an application action, e.g. "down" or "download".
type Action string

type specKind uint8

const (
	kindNop specKind = iota
	kindSingle
	kindMany
	kindRepeated
)

// ActionSpec is the payload bound to a key sequence: nothing, one action,
// several actions, or one action with a repeat multiplier. The zero value is
// Nop.
type ActionSpec struct {
	kind       specKind
	actions    []Action
	multiplier int
}

// Nop binds a sequence to no actions.
func Nop() ActionSpec {
	return ActionSpec{}
}

// Single binds a sequence to one action.
func Single(a Action) ActionSpec {
	return ActionSpec{kind: kindSingle, actions: []Action{a}}
}

// Many binds a sequence to actions run in order.
func Many(actions ...Action) ActionSpec {
	return ActionSpec{kind: kindMany, actions: append([]Action(nil), actions...)}
}

// Repeated binds a sequence to one action with multiplier n.
func Repeated(n int, a Action) ActionSpec {
	return ActionSpec{kind: kindRepeated, actions: []Action{a}, multiplier: n}
}

// View returns the uniform (multiplier, actions) view of the spec. Every
// variant except Repeated has multiplier 1.
func (s ActionSpec) View() (int, []Action) {
	switch s.kind {
	case kindSingle, kindMany:
		return 1, s.actions
	case kindRepeated:
		return s.multiplier, s.actions
	default:
		return 1, nil
	}
}

// Actions returns the bound actions in order.
func (s ActionSpec) Actions() []Action {
	_, actions := s.View()
	return actions
}

// IsNop reports whether the spec binds no actions.
func (s ActionSpec) IsNop() bool {
	return s.kind == kindNop
}

// Equal reports whether two specs are the same variant with the same payload.
func (s ActionSpec) Equal(other ActionSpec) bool {
	if s.kind != other.kind || s.multiplier != other.multiplier || len(s.actions) != len(other.actions) {
		return false
	}
	for i := range s.actions {
		if s.actions[i] != other.actions[i] {
			return false
		}
	}
	return true
}

// Label renders the spec for hint lists. label maps an action to its human
// description; nil uses the action name.
func (s ActionSpec) Label(label func(Action) string) string {
	if label == nil {
		label = func(a Action) string { return string(a) }
	}
	switch s.kind {
	case kindSingle:
		return label(s.actions[0])
	case kindMany:
		parts := make([]string, len(s.actions))
		for i, a := range s.actions {
			parts[i] = label(a)
		}
		return strings.Join(parts, ", ")
	case kindRepeated:
		return fmt.Sprintf("%d× %s", s.multiplier, label(s.actions[0]))
	default:
		return "nop"
	}
}

func (s ActionSpec) String() string {
	return s.Label(nil)
}

// UnmarshalYAML decodes the configuration forms of a spec:
//
//	down                       Single
//	[top, search]              Many
//	[10, down]                 Repeated (first item an integer)
//	{repeat: 10, action: down} Repeated
//	~                          Nop
func (s *ActionSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" || node.Value == "" {
			*s = Nop()
			return nil
		}
		*s = Single(Action(node.Value))
		return nil

	case yaml.SequenceNode:
		if len(node.Content) == 2 && node.Content[0].ShortTag() == "!!int" {
			n, err := strconv.Atoi(node.Content[0].Value)
			if err != nil {
				return fmt.Errorf("line %d: invalid repeat count %q", node.Line, node.Content[0].Value)
			}
			return s.repeated(node, n, node.Content[1])
		}
		actions := make([]Action, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode || item.Value == "" {
				return fmt.Errorf("line %d: action list entries must be action names", item.Line)
			}
			actions = append(actions, Action(item.Value))
		}
		if len(actions) == 0 {
			*s = Nop()
			return nil
		}
		*s = Many(actions...)
		return nil

	case yaml.MappingNode:
		var raw struct {
			Repeat int    `yaml:"repeat"`
			Action string `yaml:"action"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		return s.repeated(node, raw.Repeat, &yaml.Node{Kind: yaml.ScalarNode, Value: raw.Action, Line: node.Line})

	default:
		return fmt.Errorf("line %d: unsupported action value", node.Line)
	}
}

func (s *ActionSpec) repeated(node *yaml.Node, n int, action *yaml.Node) error {
	if n < 1 {
		return fmt.Errorf("line %d: repeat count must be positive, got %d", node.Line, n)
	}
	if action.Kind != yaml.ScalarNode || action.Value == "" {
		return fmt.Errorf("line %d: repeated binding needs an action name", node.Line)
	}
	*s = Repeated(n, Action(action.Value))
	return nil
}

// MarshalYAML encodes the spec in the same forms UnmarshalYAML accepts.
func (s ActionSpec) MarshalYAML() (any, error) {
	switch s.kind {
	case kindSingle:
		return string(s.actions[0]), nil
	case kindMany:
		out := make([]string, len(s.actions))
		for i, a := range s.actions {
			out[i] = string(a)
		}
		return out, nil
	case kindRepeated:
		return []any{s.multiplier, string(s.actions[0])}, nil
	default:
		return nil, nil
	}
}
