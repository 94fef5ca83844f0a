package loader

import (
	"context"
	"sort"
	"sync"

	"github.com/chembl/sdf2index/molfile"
	"github.com/chembl/sdf2index/sdf"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SDFWriter exports every compound it receives into a single SDF file,
// ordered by source file and record position
type SDFWriter struct {
	Path      string
	logger    *zap.SugaredLogger
	mu        sync.Mutex
	compounds []Compound
}

// NewSDFWriter writes to path on every Flush
func NewSDFWriter(path string, logger *zap.SugaredLogger) *SDFWriter {
	return &SDFWriter{Path: path, logger: logger}
}

// Add keeps c for the next Flush
func (w *SDFWriter) Add(_ context.Context, c Compound) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.compounds = append(w.compounds, c)
	return nil
}

// Flush rewrites the file with all compounds received so far
func (w *SDFWriter) Flush(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.compounds) == 0 {
		w.logger.Warnf("No structures to export into %s", w.Path)
		return nil
	}

	sort.SliceStable(w.compounds, func(i, j int) bool {
		a, b := w.compounds[i], w.compounds[j]
		if a.SourceFile != b.SourceFile {
			return a.SourceFile < b.SourceFile
		}
		return a.RecordIndex < b.RecordIndex
	})

	structures := make([]sdf.Structure, len(w.compounds))
	for i, c := range w.compounds {
		structures[i] = c.Structure()
	}

	out, err := sdf.Generate(structures)
	if err != nil {
		return errors.Wrapf(err, "exporting to %s", w.Path)
	}
	if err := molfile.WriteFile(w.Path, out); err != nil {
		return err
	}
	w.logger.Infof("Exported %d structures into %s", len(structures), w.Path)
	return nil
}

// Close does nothing, the file is written by Flush
func (w *SDFWriter) Close() error {
	return nil
}
