package loader

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chembl/sdf2index/sdf"
)

// Sink receives the compounds built from parsed SDF records. Implementations
// must be safe for concurrent use, extractors share them.
type Sink interface {
	Add(ctx context.Context, c Compound) error
	// Flush sends whatever is still buffered
	Flush(ctx context.Context) error
	Close() error
}

// Inchi split in its components
type Inchi struct {
	Version               string `json:"version"`
	Formula               string `json:"formula"`
	Connections           string `json:"connections"`
	HAtoms                string `json:"h_atoms"`
	Charge                string `json:"charge"`
	Protons               string `json:"protons"`
	StereoDbond           string `json:"stereo_dbond"`
	StereoSP3             string `json:"stereo_SP3"`
	StereoSP3inverted     string `json:"stereo_SP3_inverted"`
	StereoType            string `json:"stereo_type"`
	IsotopicAtoms         string `json:"isotopic_atoms"`
	IsotopicExchangeableH string `json:"isotopic_exchangeable_h"`
	FullStereo            string `json:"full_stereo"`
	FullIsotopic          string `json:"full_isotopic"`
	Inchi                 string `json:"inchi"`
}

// BuildInchiString rebuilds Inchi.Inchi from the layers
func (inchi *Inchi) BuildInchiString() string {
	s := fmt.Sprintf("InChI=%s/%s", inchi.Version, inchi.Formula)

	layers := []struct{ prefix, value string }{
		{"c", inchi.Connections},
		{"h", inchi.HAtoms},
		{"q", inchi.Charge},
		{"p", inchi.Protons},
		{"b", inchi.StereoDbond},
		{"t", inchi.StereoSP3},
		{"m", inchi.StereoSP3inverted},
		{"s", inchi.StereoType},
		{"i", inchi.IsotopicAtoms},
		{"h", inchi.IsotopicExchangeableH},
	}
	for _, l := range layers {
		if len(l.value) > 0 {
			s += "/" + l.prefix + l.value
		}
	}

	inchi.Inchi = s
	return inchi.Inchi
}

// Compound is the document stored for every parsed structure
type Compound struct {
	ID               string         `json:"structure_id"`
	BatchID          string         `json:"batch_id"`
	SourceFile       string         `json:"source_file"`
	RecordIndex      int            `json:"record_index"`
	Name             string         `json:"name"`
	Molfile          string         `json:"molfile"`
	Smiles           string         `json:"smiles,omitempty"`
	Inchi            *Inchi         `json:"inchi,omitempty"`
	Components       []Inchi        `json:"components,omitempty"`
	StandardInchiKey string         `json:"standard_inchi_key,omitempty"`
	Properties       sdf.Properties `json:"properties"`
	CreatedAt        time.Time      `json:"created_at"`
}

// DocumentID keys the stored document. It is built from the batch, the file
// and the record position, never from the structure ID, which is only unique
// within one process.
func (c Compound) DocumentID() string {
	return c.BatchID + "/" + c.SourceFile + "#" + strconv.Itoa(c.RecordIndex)
}

// Structure gives back the SDF view of the compound
func (c Compound) Structure() sdf.Structure {
	return sdf.Structure{
		ID:         c.ID,
		Name:       c.Name,
		Molfile:    c.Molfile,
		Properties: c.Properties,
	}
}
