package sdf

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrMissingEndMarker is returned for records whose connection table is not closed
	ErrMissingEndMarker = errors.New("missing " + EndMarker + " marker")
	// ErrMalformedTag is returned for data field headers that carry no field name
	ErrMalformedTag = errors.New("malformed property tag")

	// `> <Name>`, `> 12 <Name>`, `>  <Name> (3)`, `>  25  (MD-08974)  <Name>`
	tagStartReg = regexp.MustCompile(`^>[^<]*<`)
	tagReg      = regexp.MustCompile(`^>[^<]*<([^>]*)>`)
)

// Parse reads every record of an SDF (or a single MOL) text. A record that
// cannot be read is reported in ParseResult.Errors and the remaining records
// are still parsed. CRLF line endings are read as LF, so molfiles and values
// always come back with "\n" line breaks; the text is otherwise kept as is.
func Parse(text string) ParseResult {
	records := splitRecords(text)
	res := ParseResult{
		Structures: make([]Structure, 0, len(records)),
		Errors:     []ParseError{},
		Records:    len(records),
	}

	for i, r := range records {
		s, err := parseRecord(r, i)
		if err != nil {
			res.Errors = append(res.Errors, ParseError{Index: i, Message: err.Error()})
			continue
		}
		res.Structures = append(res.Structures, s)
	}
	return res
}

// splitRecords cuts text on terminator lines. Text without a terminator is a
// single record. Records are returned untrimmed; blank segments at the end of
// the text are dropped.
func splitRecords(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var records []string
	var cur []string
	for _, l := range lines {
		if isTerminator(l) {
			records = append(records, strings.Join(cur, "\n"))
			cur = nil
			continue
		}
		cur = append(cur, l)
	}

	records = append(records, strings.Join(cur, "\n"))
	for len(records) > 0 && strings.TrimSpace(records[len(records)-1]) == "" {
		records = records[:len(records)-1]
	}
	return records
}

func isTerminator(line string) bool {
	return strings.TrimSpace(line) == Terminator
}

func isEndMarker(line string) bool {
	return strings.TrimRight(line, " \t\r") == EndMarker
}

// parseRecord splits a record into its molfile, everything up to and
// including the end marker, and the data fields that follow it
func parseRecord(text string, index int) (Structure, error) {
	lines := strings.Split(text, "\n")

	end := -1
	for i, l := range lines {
		if isEndMarker(l) {
			end = i
			break
		}
	}
	if end < 0 {
		return Structure{}, ErrMissingEndMarker
	}

	props, err := parseProperties(lines[end+1:])
	if err != nil {
		return Structure{}, err
	}

	var name string
	if end > 0 {
		name = strings.TrimSpace(lines[0])
	}

	return newStructure(strings.Join(lines[:end+1], "\n"), props, name, index), nil
}

func parseProperties(lines []string) (Properties, error) {
	props := Properties{}
	var (
		name   string
		values []string
		open   bool
	)

	flush := func() {
		if !open {
			return
		}
		// the blank separator before the next tag is not part of the value
		if n := len(values); n > 0 && strings.TrimSpace(values[n-1]) == "" {
			values = values[:n-1]
		}
		props = setProperty(props, name, strings.Join(values, "\n"))
	}

	for i, l := range lines {
		if tagStartReg.MatchString(l) {
			m := tagReg.FindStringSubmatch(l)
			if m == nil || m[1] == "" {
				return nil, errors.Wrapf(ErrMalformedTag, "line %d after %s: %q", i+1, EndMarker, l)
			}
			flush()
			name = m[1]
			values = nil
			open = true
			continue
		}
		if open {
			values = append(values, l)
		}
	}
	flush()

	return props, nil
}

// setProperty stores value in place, a repeated field keeps its first position
func setProperty(props Properties, name, value string) Properties {
	for i := range props {
		if props[i].Name == name {
			props[i].Value = value
			return props
		}
	}
	return append(props, Property{Name: name, Value: value})
}
