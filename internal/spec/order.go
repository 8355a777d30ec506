package spec

import (
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// declarationOrder records the order in which mapping keys appear in the
// source document for the members whose order is observable in generated
// code: schema properties and server variables. Keys are JSON pointers of
// the member mapping, e.g. "#/components/schemas/Pet/properties".
type declarationOrder struct {
	keys map[string][]string
}

// orderedMembers lists the member mappings whose key order is recorded.
var orderedMembers = map[string]bool{"properties": true, "variables": true}

func indexDeclarationOrder(raw []byte, sourceVersion int) *declarationOrder {
	o := &declarationOrder{keys: map[string][]string{}}
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil || len(root.Content) == 0 {
		return o
	}
	o.walk(root.Content[0], "#")
	if sourceVersion == 2 {
		o.remapV2(root.Content[0])
	}
	return o
}

func (o *declarationOrder) walk(n *yaml.Node, ptr string) {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i].Value, n.Content[i+1]
			child := ptr + "/" + escapePointer(key)
			if orderedMembers[key] && val.Kind == yaml.MappingNode {
				names := make([]string, 0, len(val.Content)/2)
				for j := 0; j+1 < len(val.Content); j += 2 {
					names = append(names, val.Content[j].Value)
				}
				o.keys[child] = names
			}
			o.walk(val, child)
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			o.walk(item, ptr+"/"+strconv.Itoa(i))
		}
	}
}

// remapV2 re-keys Swagger 2.0 pointers to the locations openapi2conv moves
// them to: definitions become component schemas, and body or formData
// parameters become the operation's request body schema.
func (o *declarationOrder) remapV2(root *yaml.Node) {
	for ptr, names := range o.keys {
		if rest, ok := strings.CutPrefix(ptr, "#/definitions/"); ok {
			o.keys["#/components/schemas/"+rest] = names
		}
	}
	paths := mappingValue(root, "paths")
	if paths == nil {
		return
	}
	for i := 0; i+1 < len(paths.Content); i += 2 {
		path, item := paths.Content[i].Value, paths.Content[i+1]
		for j := 0; j+1 < len(item.Content); j += 2 {
			method, op := strings.ToLower(item.Content[j].Value), item.Content[j+1]
			opPtr := "#/paths/" + escapePointer(path) + "/" + method
			params := mappingValue(op, "parameters")
			if params == nil || params.Kind != yaml.SequenceNode {
				continue
			}
			var form []string
			for k, p := range params.Content {
				switch strings.ToLower(scalarValue(p, "in")) {
				case "formdata":
					form = append(form, scalarValue(p, "name"))
				case "body":
					src := opPtr + "/parameters/" + strconv.Itoa(k) + "/schema/properties"
					if names, ok := o.keys[src]; ok {
						o.keys[opPtr+"/requestBody"] = names
					}
				}
			}
			if len(form) > 0 {
				o.keys[opPtr+"/requestBody"] = form
			}
		}
	}
}

// members returns the recorded key order at ptr, or nil.
func (o *declarationOrder) members(ptr string) []string {
	if o == nil {
		return nil
	}
	return o.keys[ptr]
}

// ordered returns names in declaration order: names recorded at ptr come
// first in source order, anything unrecorded follows sorted by name.
func (o *declarationOrder) ordered(ptr string, names []string) []string {
	declared := o.members(ptr)
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	out := make([]string, 0, len(names))
	for _, n := range declared {
		if present[n] {
			out = append(out, n)
			delete(present, n)
		}
	}
	rest := make([]string, 0, len(present))
	for n := range present {
		rest = append(rest, n)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func scalarValue(n *yaml.Node, key string) string {
	if v := mappingValue(n, key); v != nil && v.Kind == yaml.ScalarNode {
		return v.Value
	}
	return ""
}

func escapePointer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}
