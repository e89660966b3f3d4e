package class

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidClassDefinition reports a class definition that is not a JSON object.
var ErrInvalidClassDefinition = errors.New("invalid class definition")

const (
	typeFunction  = "function"
	typeL1Handler = "l1_handler"
	typeCtor      = "constructor"
	typeEvent     = "event"
	typeStruct    = "struct"
)

// entryShape is one strict candidate layout for an ABI entry.
type entryShape struct {
	name     string
	types    []string
	allowed  []string
	required []string
	build    func(fields map[string]json.RawMessage) (AbiEntry, error)
}

// shapes are tried in order; the first exact match wins.
var shapes = []entryShape{
	{
		name:     "function",
		types:    []string{typeFunction, typeL1Handler, typeCtor},
		allowed:  []string{"type", "name", "inputs", "outputs", "stateMutability"},
		required: []string{"type", "name"},
		build:    buildFunction,
	},
	{
		name:     "event",
		types:    []string{typeEvent},
		allowed:  []string{"type", "name", "keys", "data", "inputs", "outputs"},
		required: []string{"type", "name"},
		build:    buildEvent,
	},
	{
		name:     "struct",
		types:    []string{typeStruct},
		allowed:  []string{"type", "name", "size", "members"},
		required: []string{"type", "name", "size", "members"},
		build:    buildStruct,
	},
}

// ParseClass reads the optional ABI out of a decompressed class definition.
// Only a non-object document is an error; an ABI that does not parse is
// reported as absent.
func ParseClass(doc []byte) (ContractClass, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(doc, &top); err != nil {
		return ContractClass{}, fmt.Errorf("%w: %v", ErrInvalidClassDefinition, err)
	}
	if top == nil {
		return ContractClass{}, fmt.Errorf("%w: document is not a json object", ErrInvalidClassDefinition)
	}

	raw, ok := top["abi"]
	if !ok {
		return ContractClass{}, nil
	}
	entries, err := ParseABI(raw)
	if err != nil {
		return ContractClass{}, nil
	}
	return ContractClass{ABI: entries}, nil
}

// ParseABI parses a JSON array of ABI entries. Any entry that matches no
// shape fails the whole array.
func ParseABI(raw []byte) ([]AbiEntry, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("abi is not an array: %w", err)
	}
	if items == nil {
		return nil, fmt.Errorf("abi is null")
	}

	entries := make([]AbiEntry, 0, len(items))
	for i, item := range items {
		entry, err := ParseEntry(item)
		if err != nil {
			return nil, fmt.Errorf("abi entry %d: %w", i, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ParseEntry matches a single ABI object against the function, event and
// struct shapes in that order.
func ParseEntry(raw []byte) (AbiEntry, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("entry is null")
	}

	var reasons []string
	for _, shape := range shapes {
		entry, err := shape.match(fields)
		if err == nil {
			return entry, nil
		}
		reasons = append(reasons, fmt.Sprintf("%s: %v", shape.name, err))
	}
	return nil, fmt.Errorf("no matching abi shape (%s)", strings.Join(reasons, "; "))
}

func (s entryShape) match(fields map[string]json.RawMessage) (AbiEntry, error) {
	if err := checkFields(fields, s.allowed, s.required); err != nil {
		return nil, err
	}
	var typ string
	if err := json.Unmarshal(fields["type"], &typ); err != nil {
		return nil, fmt.Errorf("type: %w", err)
	}
	if !contains(s.types, typ) {
		return nil, fmt.Errorf("unexpected type %q", typ)
	}
	return s.build(fields)
}

func buildFunction(fields map[string]json.RawMessage) (AbiEntry, error) {
	entry := &FunctionEntry{}
	if err := json.Unmarshal(fields["type"], &entry.Type); err != nil {
		return nil, fmt.Errorf("type: %w", err)
	}
	if err := json.Unmarshal(fields["name"], &entry.Name); err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	var err error
	if entry.Inputs, err = parseParams(fields["inputs"]); err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	if entry.Outputs, err = parseParams(fields["outputs"]); err != nil {
		return nil, fmt.Errorf("outputs: %w", err)
	}
	if raw, ok := fields["stateMutability"]; ok && !isNull(raw) {
		var mutability string
		if err := json.Unmarshal(raw, &mutability); err != nil {
			return nil, fmt.Errorf("stateMutability: %w", err)
		}
		entry.StateMutability = &mutability
	}
	return entry, nil
}

func buildEvent(fields map[string]json.RawMessage) (AbiEntry, error) {
	entry := &EventEntry{}
	if err := json.Unmarshal(fields["name"], &entry.Name); err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	var err error
	if entry.Keys, err = parseParams(fields["keys"]); err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	if entry.Data, err = parseParams(fields["data"]); err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	if entry.Inputs, err = parseParams(fields["inputs"]); err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	if entry.Outputs, err = parseParams(fields["outputs"]); err != nil {
		return nil, fmt.Errorf("outputs: %w", err)
	}
	return entry, nil
}

func buildStruct(fields map[string]json.RawMessage) (AbiEntry, error) {
	entry := &StructEntry{}
	if err := json.Unmarshal(fields["name"], &entry.Name); err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	if err := json.Unmarshal(fields["size"], &entry.Size); err != nil {
		return nil, fmt.Errorf("size: %w", err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(fields["members"], &items); err != nil {
		return nil, fmt.Errorf("members: %w", err)
	}
	entry.Members = make([]StructMember, 0, len(items))
	for i, item := range items {
		var member map[string]json.RawMessage
		if err := json.Unmarshal(item, &member); err != nil || member == nil {
			return nil, fmt.Errorf("member %d is not an object", i)
		}
		if err := checkFields(member, []string{"name", "type", "offset"}, []string{"name", "type", "offset"}); err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		var m StructMember
		if err := json.Unmarshal(item, &m); err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		entry.Members = append(entry.Members, m)
	}
	return entry, nil
}

// parseParams decodes an optional parameter list. Absent or null yields nil.
func parseParams(raw json.RawMessage) ([]TypedParameter, error) {
	if raw == nil || isNull(raw) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	params := make([]TypedParameter, 0, len(items))
	for i, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			return nil, fmt.Errorf("parameter %d is not an object", i)
		}
		if err := checkFields(fields, []string{"name", "type"}, []string{"name", "type"}); err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		var p TypedParameter
		if err := json.Unmarshal(item, &p); err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		params = append(params, p)
	}
	return params, nil
}

// checkFields rejects unknown keys and missing or null required keys.
func checkFields(fields map[string]json.RawMessage, allowed, required []string) error {
	var unknown []string
	for key := range fields {
		if !contains(allowed, key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown field(s) %s", strings.Join(unknown, ", "))
	}
	for _, key := range required {
		raw, ok := fields[key]
		if !ok || isNull(raw) {
			return fmt.Errorf("missing field %q", key)
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func contains(items []string, value string) bool {
	for _, item := range items {
		if item == value {
			return true
		}
	}
	return false
}
