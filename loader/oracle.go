package loader

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	//Driver for Oracle database
	_ "github.com/godror/godror"
)

// DefaultOracleBatch is the number of rows inserted per transaction
const DefaultOracleBatch = 500

var tableNameReg = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_$#]*(\.[A-Za-z][A-Za-z0-9_$#]*)?$`)

// OracleLoader inserts compounds in an Oracle table, one transaction per
// batch of rows
type OracleLoader struct {
	logger  *zap.SugaredLogger
	db      *sql.DB
	table   string
	Batch   int
	mu      sync.Mutex
	pending []Compound
	total   int
}

// OpenOracle connects using a godror connection string, for example
// 'hr/hr@localhost:1521/XE'
func OpenOracle(ctx context.Context, conn, table string, logger *zap.SugaredLogger) (*OracleLoader, error) {
	db, err := sql.Open("godror", conn)
	if err != nil {
		return nil, errors.Wrap(err, "go oracle open")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "pinging Oracle DB")
	}
	logger.Info("Success connecting to Oracle DB")

	ol, err := NewOracleLoader(db, table, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return ol, nil
}

// NewOracleLoader uses an already opened database
func NewOracleLoader(db *sql.DB, table string, logger *zap.SugaredLogger) (*OracleLoader, error) {
	if !tableNameReg.MatchString(table) {
		return nil, errors.Errorf("invalid table name %q", table)
	}
	return &OracleLoader{
		logger: logger,
		db:     db,
		table:  table,
		Batch:  DefaultOracleBatch,
	}, nil
}

func insertStatement(table string) string {
	return fmt.Sprintf(
		"INSERT INTO %s (DOCUMENT_ID, STRUCTURE_ID, BATCH_ID, SOURCE_FILE, RECORD_INDEX, NAME, MOLFILE, SMILES, STANDARDINCHI, STANDARDINCHIKEY, PROPERTIES, CREATED) VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10, :11, :12)",
		table,
	)
}

// Add buffers c and inserts the buffer once it reaches Batch rows
func (ol *OracleLoader) Add(ctx context.Context, c Compound) error {
	ol.mu.Lock()
	defer ol.mu.Unlock()

	ol.pending = append(ol.pending, c)
	if len(ol.pending) < ol.Batch {
		return nil
	}
	return ol.insertPending(ctx)
}

// Flush inserts the buffered rows
func (ol *OracleLoader) Flush(ctx context.Context) error {
	ol.mu.Lock()
	defer ol.mu.Unlock()

	if len(ol.pending) == 0 {
		return nil
	}
	if err := ol.insertPending(ctx); err != nil {
		return err
	}
	ol.logger.Infof("%d rows inserted into %s", ol.total, ol.table)
	return nil
}

// Inserted returns the number of rows committed so far
func (ol *OracleLoader) Inserted() int {
	ol.mu.Lock()
	defer ol.mu.Unlock()
	return ol.total
}

func (ol *OracleLoader) insertPending(ctx context.Context) (err error) {
	tx, err := ol.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				ol.logger.Error("Rollback failed ", rerr)
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertStatement(ol.table))
	if err != nil {
		return errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	for _, c := range ol.pending {
		props, err := json.Marshal(c.Properties)
		if err != nil {
			return errors.Wrapf(err, "encoding properties of %s", c.ID)
		}
		var inchi string
		if c.Inchi != nil {
			inchi = c.Inchi.Inchi
		}
		_, err = stmt.ExecContext(ctx,
			c.DocumentID(),
			c.ID,
			c.BatchID,
			c.SourceFile,
			c.RecordIndex,
			c.Name,
			c.Molfile,
			c.Smiles,
			inchi,
			c.StandardInchiKey,
			string(props),
			c.CreatedAt,
		)
		if err != nil {
			return errors.Wrapf(err, "inserting %s from %s", c.ID, c.SourceFile)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	ol.logger.Debugf("Inserted %d rows into %s", len(ol.pending), ol.table)
	ol.total += len(ol.pending)
	ol.pending = nil
	return nil
}

// Close releases the database
func (ol *OracleLoader) Close() error {
	return ol.db.Close()
}
