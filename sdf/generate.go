package sdf

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnserializable is the cause of every GenerationError
var ErrUnserializable = errors.New("structure cannot be written as SDF")

// GenerationError reports the structure that stopped an export
type GenerationError struct {
	Index  int
	ID     string
	Reason string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("structure %d (%s): %s: %s", e.Index, e.ID, ErrUnserializable, e.Reason)
}

// Unwrap lets errors.Is match ErrUnserializable
func (e *GenerationError) Unwrap() error {
	return ErrUnserializable
}

// Generate writes structures as SDF text, the inverse of Parse. No output is
// produced for an empty list.
func Generate(structures []Structure) (string, error) {
	var sb strings.Builder
	for i, s := range structures {
		if err := writeRecord(&sb, s); err != nil {
			return "", &GenerationError{Index: i, ID: s.ID, Reason: err.Error()}
		}
	}
	return sb.String(), nil
}

func writeRecord(sb *strings.Builder, s Structure) error {
	mol := strings.TrimRight(s.Molfile, "\r\n")
	hasEnd := false
	for _, l := range strings.Split(mol, "\n") {
		if isTerminator(l) {
			return errors.New("molfile contains a record terminator")
		}
		if isEndMarker(l) {
			hasEnd = true
		}
	}

	sb.WriteString(mol)
	if !hasEnd {
		if mol != "" {
			sb.WriteString("\n")
		}
		sb.WriteString(EndMarker)
	}
	sb.WriteString("\n")

	for _, p := range s.Properties {
		if err := checkProperty(p); err != nil {
			return err
		}
		sb.WriteString("> <")
		sb.WriteString(p.Name)
		sb.WriteString(">\n")
		sb.WriteString(p.Value)
		sb.WriteString("\n\n")
	}

	sb.WriteString(Terminator)
	sb.WriteString("\n")
	return nil
}

func checkProperty(p Property) error {
	if p.Name == "" {
		return errors.New("property with empty name")
	}
	if strings.ContainsAny(p.Name, "\r\n") {
		return errors.Errorf("property name %q spans several lines", p.Name)
	}
	for _, l := range strings.Split(p.Value, "\n") {
		if isTerminator(l) {
			return errors.Errorf("value of %q contains a record terminator", p.Name)
		}
		if tagStartReg.MatchString(l) {
			return errors.Errorf("value of %q contains a line read as a property tag: %q", p.Name, l)
		}
	}
	return nil
}
