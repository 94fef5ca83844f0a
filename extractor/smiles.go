package extractor

import (
	"strings"

	"github.com/chembl/sdf2index/sdf"
	"github.com/pkg/errors"
)

// ErrNoSmiles is returned when a structure carries no SMILES
var ErrNoSmiles = errors.New("no SMILES available")

// DefaultSmilesFields are the data fields searched for a SMILES
var DefaultSmilesFields = []string{
	"SMILES",
	"Smiles",
	"CANONICAL_SMILES",
	"canonical_smiles",
	"PUBCHEM_OPENEYE_CAN_SMILES",
	"PUBCHEM_OPENEYE_ISO_SMILES",
	"PUBCHEM_SMILES",
}

// SmilesExtractor derives a SMILES for a parsed structure. It runs after
// parsing and a failure only leaves the compound without SMILES.
type SmilesExtractor interface {
	ExtractSmiles(s sdf.Structure) (string, error)
}

// PropertySmilesExtractor reads the SMILES from the first non empty data
// field listed in Fields
type PropertySmilesExtractor struct {
	Fields []string
}

// ExtractSmiles implements SmilesExtractor
func (e PropertySmilesExtractor) ExtractSmiles(s sdf.Structure) (string, error) {
	fields := e.Fields
	if len(fields) == 0 {
		fields = DefaultSmilesFields
	}
	v := firstField(s.Properties, fields)
	if v == "" {
		return "", errors.Wrapf(ErrNoSmiles, "structure %s", s.Name)
	}
	// SMILES never span lines nor hold spaces, anything after is a comment
	if i := strings.IndexAny(v, " \t\n"); i >= 0 {
		v = v[:i]
	}
	return v, nil
}
