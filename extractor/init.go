package extractor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/chembl/sdf2index/loader"
	"github.com/google/uuid"
	"github.com/gosuri/uiprogress"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

//Init sets up one extractor per file, runs at most MaxConcurrent of them at
//the same time and flushes the sinks once all are done. A nil progress
//disables the progress bars.
func Init(ctx context.Context, l *zap.SugaredLogger, conf *Configuration, paths []string, sinks []loader.Sink, p *uiprogress.Progress) ([]Report, error) {
	ti := time.Now()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	batchID := uuid.New().String()
	l.Infow("Starting batch", "batch", batchID, "files", len(paths))

	maxConcurrent := conf.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	sem := make(chan struct{}, maxConcurrent)

	var wg sync.WaitGroup
	extractors := make([]*Extractor, len(paths))
	for i, path := range paths {
		ex := &Extractor{
			id:          i,
			Path:        path,
			BatchID:     batchID,
			MaxFileSize: conf.MaxFileSize,
			Sinks:       sinks,
			Smiles:      PropertySmilesExtractor{Fields: conf.SmilesFields},
			Divider: &InchiDivider{
				Logger:    l,
				Fields:    conf.InchiFields,
				KeyFields: conf.InchiKeyField,
			},
			Logger:   l,
			Progress: p,
		}
		extractors[i] = ex
	}

	stop := waitForSignal(l, cancel, extractors)
	defer stop()

	if p != nil {
		p.Start()
	}
	for _, ex := range extractors {
		wg.Add(1)
		go sendExtractor(runCtx, &wg, sem, ex)
	}
	wg.Wait()
	if p != nil {
		p.Stop()
	}

	var err error
	for _, s := range sinks {
		err = multierr.Append(err, s.Flush(ctx))
	}

	reports := make([]Report, len(extractors))
	for i, ex := range extractors {
		reports[i] = ex.Report
	}
	elapsedTime(l, ti)
	return reports, err
}

func sendExtractor(ctx context.Context, wg *sync.WaitGroup, sem chan struct{}, ex *Extractor) {
	defer wg.Done()
	sem <- struct{}{}
	defer func() { <-sem }()

	// errors are kept in the report
	_ = ex.Start(ctx)
}

// waitForSignal cancels the running extractors on interrupt. The returned
// function stops listening.
func waitForSignal(l *zap.SugaredLogger, cancel context.CancelFunc, exs []*Extractor) func() {
	c := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(c, os.Interrupt)
	go func() {
		select {
		case <-c:
			l.Warn("Received Interrupt Signal")
			for _, ex := range exs {
				l.Warnf("Extractor %d on %s", ex.id, ex.Path)
			}
			cancel()
		case <-done:
		}
	}()
	return func() {
		signal.Stop(c)
		close(done)
	}
}

func elapsedTime(l *zap.SugaredLogger, t time.Time) {
	l.Infof("Elapsed %s", time.Since(t))
}

// Summary writes the success and failure counts of every file with the
// errors found
func Summary(w io.Writer, reports []Report) (loaded, failed int) {
	for _, r := range reports {
		if r.Err != nil {
			fmt.Fprintf(w, "%s: FAILED %s\n", r.Path, r.Err)
		} else {
			fmt.Fprintf(w, "%s: %d structures loaded, %d failed\n", r.Path, r.Loaded, len(r.Errors))
		}
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  record %d: %s\n", e.Index, e.Message)
		}
		loaded += r.Loaded
		failed += len(r.Errors)
	}
	fmt.Fprintf(w, "Total: %d structures loaded, %d failed\n", loaded, failed)
	return loaded, failed
}
