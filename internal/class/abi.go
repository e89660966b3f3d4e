package class

import "encoding/json"

// ContractClass is the part of a class definition this indexer reads.
// ABI is nil when the definition carries no usable ABI.
type ContractClass struct {
	ABI []AbiEntry
}

// HasABI reports whether an ABI array was present and parsed.
func (c ContractClass) HasABI() bool {
	return c.ABI != nil
}

// Event returns the first event entry with the given name.
func (c ContractClass) Event(name string) (*EventEntry, bool) {
	for _, entry := range c.ABI {
		if event, ok := entry.(*EventEntry); ok && event.Name == name {
			return event, true
		}
	}
	return nil, false
}

// AbiEntry is one of *FunctionEntry, *EventEntry or *StructEntry.
type AbiEntry interface {
	EntryName() string
	abiEntry()
}

// TypedParameter is a named, typed slot of a function, event or struct.
type TypedParameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FunctionEntry describes a function, l1_handler or constructor.
type FunctionEntry struct {
	Type            string
	Name            string
	Inputs          []TypedParameter
	Outputs         []TypedParameter
	StateMutability *string
}

// EventEntry describes an event. All four parameter lists are kept as
// found, even though only Data drives decoding.
type EventEntry struct {
	Name    string
	Keys    []TypedParameter
	Data    []TypedParameter
	Inputs  []TypedParameter
	Outputs []TypedParameter
}

// StructEntry describes a struct layout.
type StructEntry struct {
	Name    string
	Size    uint64
	Members []StructMember
}

// StructMember is a struct field at a fixed offset.
type StructMember struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Offset uint64 `json:"offset"`
}

func (e *FunctionEntry) EntryName() string { return e.Name }
func (e *EventEntry) EntryName() string    { return e.Name }
func (e *StructEntry) EntryName() string   { return e.Name }

func (*FunctionEntry) abiEntry() {}
func (*EventEntry) abiEntry()    {}
func (*StructEntry) abiEntry()   {}

func (e FunctionEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type            string            `json:"type"`
		Name            string            `json:"name"`
		Inputs          *[]TypedParameter `json:"inputs,omitempty"`
		Outputs         *[]TypedParameter `json:"outputs,omitempty"`
		StateMutability *string           `json:"stateMutability,omitempty"`
	}{e.Type, e.Name, present(e.Inputs), present(e.Outputs), e.StateMutability})
}

func (e EventEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string            `json:"type"`
		Name    string            `json:"name"`
		Keys    *[]TypedParameter `json:"keys,omitempty"`
		Data    *[]TypedParameter `json:"data,omitempty"`
		Inputs  *[]TypedParameter `json:"inputs,omitempty"`
		Outputs *[]TypedParameter `json:"outputs,omitempty"`
	}{typeEvent, e.Name, present(e.Keys), present(e.Data), present(e.Inputs), present(e.Outputs)})
}

func (e StructEntry) MarshalJSON() ([]byte, error) {
	members := e.Members
	if members == nil {
		members = []StructMember{}
	}
	return json.Marshal(struct {
		Type    string         `json:"type"`
		Name    string         `json:"name"`
		Size    uint64         `json:"size"`
		Members []StructMember `json:"members"`
	}{typeStruct, e.Name, e.Size, members})
}

// present keeps an empty but non-nil list in the output.
func present(params []TypedParameter) *[]TypedParameter {
	if params == nil {
		return nil
	}
	return &params
}
