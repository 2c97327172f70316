// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package command

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTemplate indicates a command template that cannot be decoded.
var ErrInvalidTemplate = errors.New("invalid command template")

// Entry is one element of a command template.
//
// Exactly one of Token or Group is set. Group[0] is the condition variable
// and Group[1:] are the items emitted when it is truthy.
type Entry struct {
	Token string
	Group []string
}

// Token creates a literal or variable entry.
func Token(s string) Entry {
	return Entry{Token: s}
}

// Cond creates a conditional group entry.
func Cond(condition string, items ...string) Entry {
	return Entry{Group: append([]string{condition}, items...)}
}

// IsGroup reports whether the entry is a conditional group.
func (e Entry) IsGroup() bool {
	return len(e.Group) > 0
}

// UnmarshalYAML decodes a scalar into a token and a sequence into a group.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		e.Token = node.Value
		e.Group = nil
		return nil
	case yaml.SequenceNode:
		var group []string
		if err := node.Decode(&group); err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrInvalidTemplate, node.Line, err)
		}
		if len(group) == 0 {
			return fmt.Errorf("%w: line %d: empty conditional group", ErrInvalidTemplate, node.Line)
		}
		e.Token = ""
		e.Group = group
		return nil
	default:
		return fmt.Errorf("%w: line %d: entry must be a string or a list", ErrInvalidTemplate, node.Line)
	}
}

// MarshalYAML renders the entry in the same shape it is decoded from.
func (e Entry) MarshalYAML() (any, error) {
	if e.IsGroup() {
		return e.Group, nil
	}
	return e.Token, nil
}

// UnmarshalJSON decodes a string into a token and an array into a group.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err == nil {
		e.Token = token
		e.Group = nil
		return nil
	}
	var group []string
	if err := json.Unmarshal(data, &group); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTemplate, string(data))
	}
	if len(group) == 0 {
		return fmt.Errorf("%w: empty conditional group", ErrInvalidTemplate)
	}
	e.Token = ""
	e.Group = group
	return nil
}

// MarshalJSON renders the entry as a string or an array.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.IsGroup() {
		return json.Marshal(e.Group)
	}
	return json.Marshal(e.Token)
}

// Template is an ordered command template.
type Template []Entry

// Names returns every name the template references: tokens, group
// conditions and group items, in order of first appearance.
func (t Template) Names() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			names = append(names, s)
		}
	}
	for _, e := range t {
		if e.IsGroup() {
			for _, s := range e.Group {
				add(s)
			}
			continue
		}
		add(e.Token)
	}
	return names
}

// Clone returns a deep copy of the template.
func (t Template) Clone() Template {
	if t == nil {
		return nil
	}
	out := make(Template, len(t))
	for i, e := range t {
		out[i] = Entry{Token: e.Token}
		if e.Group != nil {
			out[i].Group = append([]string(nil), e.Group...)
		}
	}
	return out
}
