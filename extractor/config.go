package extractor

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/chembl/sdf2index/loader"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

//ElasticAuth credentials for the ElasticSearch server
type ElasticAuth struct {
	Username, Password string
}

//Configuration stores the configuration parameters required for the application
type Configuration struct {
	LogPath       string
	ElasticHost   string
	ElasticAuth   ElasticAuth
	Index         string
	Type          string
	BulkLimit     int
	MaxBulkCalls  int
	OracleConn    string
	OracleTable   string
	ExportPath    string
	MaxConcurrent int
	MaxFileSize   int64
	Extensions    []string
	SmilesFields  []string
	InchiFields   []string
	InchiKeyField []string
}

// Defaults fills every unset value
func (c *Configuration) Defaults() {
	if c.LogPath == "" {
		c.LogPath = "."
	}
	if c.Index == "" {
		c.Index = "structures"
	}
	if c.Type == "" {
		c.Type = "structure"
	}
	if c.BulkLimit <= 0 {
		c.BulkLimit = 1000
	}
	if c.MaxBulkCalls <= 0 {
		c.MaxBulkCalls = 4
	}
	if c.OracleTable == "" {
		c.OracleTable = "SDF_STRUCTURES"
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 4
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 256 << 20
	}
	if len(c.Extensions) == 0 {
		c.Extensions = []string{"sdf", "sd", "mol"}
	}
	if len(c.SmilesFields) == 0 {
		c.SmilesFields = DefaultSmilesFields
	}
	if len(c.InchiFields) == 0 {
		c.InchiFields = DefaultInchiFields
	}
	if len(c.InchiKeyField) == 0 {
		c.InchiKeyField = DefaultInchiKeyFields
	}
}

// Validate checks there is at least one place to send the structures to,
// unless only a check of the files is wanted
func (c *Configuration) Validate(checkOnly bool) error {
	if checkOnly {
		return nil
	}
	if c.ElasticHost == "" && c.OracleConn == "" && c.ExportPath == "" {
		return errors.New("nothing to load into: set an ElasticSearch host, an Oracle connection or an export path")
	}
	return nil
}

// Elastic returns the ElasticManager settings
func (c *Configuration) Elastic() loader.ElasticConfig {
	return loader.ElasticConfig{
		Host:         c.ElasticHost,
		Username:     c.ElasticAuth.Username,
		Password:     c.ElasticAuth.Password,
		Index:        c.Index,
		Type:         c.Type,
		BulkLimit:    c.BulkLimit,
		MaxBulkCalls: c.MaxBulkCalls,
	}
}

//LoadConfig opening a yaml config file (config.yaml). A missing default
//file yields the defaults.
func LoadConfig(c string) (*Configuration, error) {

	var t Configuration
	var fn string

	if len(c) > 0 {
		fn = c
	} else {
		fn = "config.yaml"
	}

	fmt.Printf("Using config path: %s \n", fn)

	data, err := ioutil.ReadFile(fn)
	if err != nil {
		if len(c) == 0 && os.IsNotExist(err) {
			t.Defaults()
			return &t, nil
		}
		return &t, errors.Wrapf(err, "reading config %s", fn)
	}

	err = yaml.Unmarshal(data, &t)
	if err != nil {
		return &t, errors.Wrapf(err, "parsing config %s", fn)
	}

	t.Defaults()
	return &t, nil
}
