package sdf

import (
	"fmt"
	"strconv"
	"sync/atomic"
)

const (
	// EndMarker closes the connection table of a molfile
	EndMarker = "M  END"
	// Terminator closes every record of an SDF file
	Terminator = "$$$$"
)

var structSeq uint64

// Property is a single data field of a record, `> <Name>` followed by its value
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Properties keeps the data fields of a record in the order they were found
type Properties []Property

// Get returns the value stored under name
func (p Properties) Get(name string) (string, bool) {
	for _, it := range p {
		if it.Name == name {
			return it.Value, true
		}
	}
	return "", false
}

// With returns a copy of p where name holds value. An existing field keeps
// its position, a new one is appended.
func (p Properties) With(name, value string) Properties {
	np := make(Properties, len(p), len(p)+1)
	copy(np, p)
	for i := range np {
		if np[i].Name == name {
			np[i].Value = value
			return np
		}
	}
	return append(np, Property{Name: name, Value: value})
}

// Map flattens the properties, losing their order
func (p Properties) Map() map[string]string {
	m := make(map[string]string, len(p))
	for _, it := range p {
		m[it.Name] = it.Value
	}
	return m
}

// Structure is a chemical structure read from, or written to, an SDF record.
// Structures are values; edits produce new structures.
type Structure struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Molfile    string     `json:"molfile"`
	Properties Properties `json:"properties"`
}

// ParseError describes a record that could not be turned into a Structure
type ParseError struct {
	Index   int    `json:"index"`
	Message string `json:"error"`
}

func (e ParseError) Error() string {
	return fmt.Sprintf("record %d: %s", e.Index, e.Message)
}

// ParseResult holds everything a parse produced. Every record ends either in
// Structures or in Errors, so len(Structures)+len(Errors) == Records.
type ParseResult struct {
	Structures []Structure  `json:"structures"`
	Errors     []ParseError `json:"errors"`
	Records    int          `json:"records"`
}

// ValidationResult is the outcome of the cheap pre-check run before parsing
type ValidationResult struct {
	Valid          bool   `json:"is_valid"`
	Error          string `json:"error,omitempty"`
	StructureCount int    `json:"structure_count,omitempty"`
}

func nextID() string {
	return "struct_" + strconv.FormatUint(atomic.AddUint64(&structSeq, 1), 10)
}

func placeholderName(index int) string {
	return fmt.Sprintf("Structure %d", index+1)
}

// newStructure assembles a structure, naming it after its position when name
// is empty
func newStructure(molfile string, props Properties, name string, index int) Structure {
	if name == "" {
		name = placeholderName(index)
	}
	if props == nil {
		props = Properties{}
	}
	return Structure{
		ID:         nextID(),
		Name:       name,
		Molfile:    molfile,
		Properties: props,
	}
}
