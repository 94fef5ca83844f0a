package extractor

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/chembl/sdf2index/loader"
	"github.com/chembl/sdf2index/molfile"
	"github.com/chembl/sdf2index/sdf"
	"github.com/gosuri/uiprogress"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrInvalidFile is returned for files failing the SDF pre-check
var ErrInvalidFile = errors.New("invalid SDF file")

// Report is what an Extractor did with its file
type Report struct {
	Path       string
	Validation sdf.ValidationResult
	Records    int
	Loaded     int
	Errors     []sdf.ParseError
	// Err is set when the file could not be processed at all
	Err error
}

//Extractor reads one SDF or MOL file, parses it and adds every structure to
//the sinks provided
type Extractor struct {
	id          int
	Path        string
	BatchID     string
	MaxFileSize int64
	Sinks       []loader.Sink
	Smiles      SmilesExtractor
	Divider     *InchiDivider
	Logger      *zap.SugaredLogger
	Progress    *uiprogress.Progress
	Report      Report
	now         func() time.Time
}

// Start reads the file and loads its structures. Records that fail to parse
// are listed in the report and do not stop the others.
func (ex *Extractor) Start(ctx context.Context) error {
	logger := ex.Logger
	ex.Report = Report{Path: ex.Path, Errors: []sdf.ParseError{}}
	if ex.now == nil {
		ex.now = time.Now
	}

	logger.Infof("Extractor %d reading %s", ex.id, ex.Path)

	text, err := molfile.ReadFile(ex.Path, ex.MaxFileSize)
	if err != nil {
		return ex.fail(err)
	}

	v := sdf.Validate(text)
	ex.Report.Validation = v
	if !v.Valid {
		return ex.fail(errors.Wrapf(ErrInvalidFile, "%s: %s", ex.Path, v.Error))
	}
	logger.Debugf("%s looks like %d structures", ex.Path, v.StructureCount)
	if strings.EqualFold(filepath.Ext(ex.Path), ".mol") && !molfile.ValidateMolBlock(text) {
		logger.Warnw("MOL file without a counts line", "file", ex.Path)
	}

	res := sdf.Parse(text)
	ex.Report.Records = res.Records
	ex.Report.Errors = res.Errors
	for _, pe := range res.Errors {
		logger.Warnw("Record skipped", "file", ex.Path, "index", pe.Index, "error", pe.Message)
	}

	bar := ex.addBar(len(res.Structures))
	indices := recordIndices(res)

l:
	for i, s := range res.Structures {
		select {
		case <-ctx.Done():
			logger.Warnf("Interrumping extractor %d on %s because of context done", ex.id, ex.Path)
			err = ctx.Err()
			break l
		default:
		}

		c := ex.compound(s, indices[i])
		for _, sink := range ex.Sinks {
			if err := sink.Add(ctx, c); err != nil {
				return ex.fail(errors.Wrapf(err, "loading %s record %d", ex.Path, indices[i]))
			}
		}
		ex.Report.Loaded++
		if bar != nil {
			bar.Incr()
		}
	}
	if err != nil {
		return ex.fail(err)
	}

	logger.Infow(
		"Finished file",
		"file", ex.Path,
		"records", res.Records,
		"loaded", ex.Report.Loaded,
		"failed", len(res.Errors),
	)
	return nil
}

func (ex *Extractor) fail(err error) error {
	ex.Report.Err = err
	ex.Logger.Error("Extractor error ", err)
	return err
}

func (ex *Extractor) compound(s sdf.Structure, index int) loader.Compound {
	logger := ex.Logger

	c := loader.Compound{
		ID:          s.ID,
		BatchID:     ex.BatchID,
		SourceFile:  ex.Path,
		RecordIndex: index,
		Name:        s.Name,
		Molfile:     s.Molfile,
		Properties:  s.Properties,
		CreatedAt:   ex.now(),
	}

	if ex.Smiles != nil {
		smiles, err := ex.Smiles.ExtractSmiles(s)
		if err != nil {
			logger.Debugw("No SMILES", "file", ex.Path, "index", index, "error", err)
		}
		c.Smiles = smiles
	}

	if ex.Divider != nil {
		inchi, components, key, err := ex.Divider.FromProperties(s.Properties)
		if err != nil {
			logger.Warnw("Split InChI error", "file", ex.Path, "index", index, "error", err)
		}
		c.Inchi = inchi
		c.Components = components
		c.StandardInchiKey = key
	}
	return c
}

func (ex *Extractor) addBar(total int) *uiprogress.Bar {
	if ex.Progress == nil || total == 0 {
		return nil
	}
	name := filepath.Base(ex.Path)
	bar := ex.Progress.AddBar(total).AppendCompleted().PrependElapsed()
	bar.PrependFunc(func(b *uiprogress.Bar) string {
		return name
	})
	return bar
}

// recordIndices gives, for every parsed structure, the position of its record
// in the file
func recordIndices(res sdf.ParseResult) []int {
	failed := make(map[int]bool, len(res.Errors))
	for _, e := range res.Errors {
		failed[e.Index] = true
	}
	idx := make([]int, 0, len(res.Structures))
	for r := 0; r < res.Records; r++ {
		if !failed[r] {
			idx = append(idx, r)
		}
	}
	return idx
}
