package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chembl/sdf2index/extractor"
	"github.com/chembl/sdf2index/loader"
	"github.com/chembl/sdf2index/molfile"
	"github.com/gosuri/uiprogress"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version   string
	buildDate string
	logger    *zap.SugaredLogger
	config    *extractor.Configuration
)

func logInit(d bool, logPath string) *os.File {
	fn := "sdf2index.log"
	path := filepath.Join(logPath, fn)
	fmt.Println("Log path ", path)
	// Open file for writing
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		panic(err)
	}

	pe := zap.NewProductionEncoderConfig()
	pe.EncodeTime = zapcore.ISO8601TimeEncoder

	fileEncoder := zapcore.NewJSONEncoder(pe)

	level := zap.InfoLevel
	if d {
		level = zap.DebugLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(fileEncoder, zapcore.AddSync(file), level),
	)

	l := zap.New(core)

	logger = l.Sugar()

	return file
}

func main() {

	cn := flag.String("config", "", "Config file path, must be YAML")
	d := flag.Bool("d", false, "Sets up the log level to debug, keep in mind logging will have an impact on the performance")
	v := flag.Bool("v", false, "Returns the binary version and built date info")
	eh := flag.String("eshost", "", "ElasticSearch host, Example: http://0.0.0.0:9200")
	oraconn := flag.String("oraconn", "", "Oracle Database connection string: Example: 'hr/hr@localhost:1521/XE'")
	export := flag.String("export", "", "Writes every parsed structure into this SDF file")
	check := flag.Bool("check", false, "Only validates and parses the files, nothing is loaded")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] file.sdf|dir ...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *v {
		fmt.Printf("Version: %s Build Date: %s \n", version, buildDate)
		return
	}

	var err error

	config, err = extractor.LoadConfig(*cn)
	if err != nil {
		fmt.Println(err)
		panic("Couldn't load config.yml file")
	}

	if len(*eh) > 0 {
		config.ElasticHost = *eh
	}
	if len(*oraconn) > 0 {
		config.OracleConn = *oraconn
	}
	if len(*export) > 0 {
		config.ExportPath = *export
	}

	f := logInit(*d, config.LogPath)
	code := run(flag.Args(), *check)
	logger.Sync()
	f.Close()
	os.Exit(code)
}

// run loads the files and returns the exit code: 1 when a file or a loader
// failed, 2 when only some records were skipped
func run(args []string, check bool) int {
	greeting()

	if err := config.Validate(check); err != nil {
		return fail(err)
	}

	paths, err := collectPaths(args, config.Extensions)
	if err != nil {
		return fail(err)
	}
	if len(paths) == 0 {
		return fail(fmt.Errorf("no structure files given"))
	}

	ctx := context.Background()

	var sinks []loader.Sink
	if !check {
		sinks, err = openSinks(ctx)
		defer func() {
			for _, s := range sinks {
				if err := s.Close(); err != nil {
					logger.Error("Error closing sink ", err)
				}
			}
		}()
		if err != nil {
			return fail(err)
		}
	}

	reports, err := extractor.Init(ctx, logger, config, paths, sinks, uiprogress.New())
	_, failed := extractor.Summary(os.Stdout, reports)
	if err != nil {
		return fail(err)
	}
	for _, r := range reports {
		if r.Err != nil {
			return 1
		}
	}
	if failed > 0 {
		return 2
	}
	return 0
}

func fail(err error) int {
	logger.Error(err)
	fmt.Println(err)
	return 1
}

// collectPaths expands directories into the structure files they hold
func collectPaths(args []string, exts []string) ([]string, error) {
	var paths []string
	for _, a := range args {
		fi, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			paths = append(paths, a)
			continue
		}
		files, err := molfile.FindFiles(a, exts)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
	}
	return paths, nil
}

func openSinks(ctx context.Context) ([]loader.Sink, error) {
	var sinks []loader.Sink

	if len(config.ElasticHost) > 0 {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Connecting to ElasticSearch " + config.ElasticHost
		s.Start()
		conf := config.Elastic()
		conf.IndexSetupWait = 2 * time.Second
		em, err := loader.NewElasticManager(ctx, conf, logger)
		s.Stop()
		if err != nil {
			return sinks, err
		}
		m := fmt.Sprintf("Elastic host %s", config.ElasticHost)
		logger.Info(m)
		fmt.Println(m)
		sinks = append(sinks, em)
	}

	if len(config.OracleConn) > 0 {
		ol, err := loader.OpenOracle(ctx, config.OracleConn, config.OracleTable, logger)
		if err != nil {
			return sinks, err
		}
		sinks = append(sinks, ol)
	}

	if len(config.ExportPath) > 0 {
		sinks = append(sinks, loader.NewSDFWriter(config.ExportPath, logger))
	}
	return sinks, nil
}

func greeting() {
	logger.Info("--------------Init program--------------")
	logger.Info(fmt.Sprintf("Version: %s Build Date: %s", version, buildDate))
	logger.Infow(
		"Configuration",
		"ES index",
		config.Index,
		"ES type",
		config.Type,
		"Bulk limit",
		config.BulkLimit,
		"Maximum Bulk calls",
		config.MaxBulkCalls,
		"Oracle table",
		config.OracleTable,
		"Export path",
		config.ExportPath,
		"Max concurrent files",
		config.MaxConcurrent,
	)

	fmt.Println("--------------Init program--------------")
	fmt.Printf("Version: %s Build Date: %s \n", version, buildDate)
}
