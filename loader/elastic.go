package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/olivere/elastic"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ElasticConfig holds what ElasticManager needs to reach the index
type ElasticConfig struct {
	Host         string
	Username     string
	Password     string
	Index        string
	Type         string
	BulkLimit    int
	MaxBulkCalls int
	// IndexSetupWait gives the server time to set up a freshly created index
	IndexSetupWait time.Duration
}

// WorkerResponse contains the result of the BulkRequest to the ElasticSearch index
type WorkerResponse struct {
	Succeeded    int
	Indexed      int
	Failed       int
	BulkResponse *elastic.BulkResponse
}

func newWorkerResponse(br *elastic.BulkResponse) WorkerResponse {
	return WorkerResponse{
		Succeeded:    len(br.Succeeded()),
		Indexed:      len(br.Indexed()),
		Failed:       len(br.Failed()),
		BulkResponse: br,
	}
}

// ElasticManager used for connection and adding compounds to the
// elastic server
type ElasticManager struct {
	logger             *zap.SugaredLogger
	Client             *elastic.Client
	IndexName          string
	TypeName           string
	Bulklimit          int
	MaxBulkCalls       int
	mu                 sync.Mutex
	countBulkRequest   int
	currentBulkService *elastic.BulkService
	currentBulkCalls   int
	WaitGroup          sync.WaitGroup
	// workers send with this context, not the one given to Add, so an
	// interrupted extractor does not abort bulks already handed over
	workerCtx context.Context

	statsMu       sync.Mutex
	totalSentJobs int
	totalIndexed  int
	totalFailed   int
	errs          error
}

// BuildMapping returns the index body used when the index does not exist yet
func BuildMapping(typeName string) string {
	return fmt.Sprintf(`{
		"settings": {
			"number_of_replicas": 1,
			"number_of_shards": 5
		},
		"mappings": {
			%q: {
				"properties": {
					"structure_id": {
						"type": "keyword"
					},
					"batch_id": {
						"type": "keyword"
					},
					"source_file": {
						"type": "keyword"
					},
					"record_index": {
						"type": "integer"
					},
					"name": {
						"type": "text",
						"fields": {
							"raw": {
								"type": "keyword"
							}
						}
					},
					"molfile": {
						"type": "keyword",
						"index": false,
						"doc_values": false
					},
					"smiles": {
						"type": "keyword"
					},
					"standard_inchi_key": {
						"type": "keyword"
					},
					"inchi": {
						"properties": {
							"inchi": {
								"type": "keyword"
							},
							"formula": {
								"type": "keyword"
							}
						}
					},
					"properties": {
						"type": "nested",
						"properties": {
							"name": {
								"type": "keyword"
							},
							"value": {
								"type": "text"
							}
						}
					},
					"created_at": {
						"type": "date"
					}
				}
			}
		}
	}`, typeName)
}

// NewElasticManager connects to the server, pings it and creates the index
// when missing. ctx also bounds every bulk worker started by Add.
func NewElasticManager(ctx context.Context, conf ElasticConfig, logger *zap.SugaredLogger, opts ...elastic.ClientOptionFunc) (*ElasticManager, error) {
	if conf.BulkLimit <= 0 {
		return nil, errors.New("BulkLimit must be a number higher than 0")
	}
	if conf.MaxBulkCalls <= 0 {
		return nil, errors.New("MaxBulkCalls must be a number higher than 0")
	}

	em := &ElasticManager{
		logger:       logger,
		IndexName:    conf.Index,
		TypeName:     conf.Type,
		Bulklimit:    conf.BulkLimit,
		MaxBulkCalls: conf.MaxBulkCalls,
		workerCtx:    ctx,
	}

	options := []elastic.ClientOptionFunc{
		elastic.SetURL(conf.Host),
		elastic.SetSniff(false),
	}
	if conf.Username != "" {
		options = append(options, elastic.SetBasicAuth(conf.Username, conf.Password))
	}
	options = append(options, opts...)

	var err error
	em.Client, err = elastic.NewClient(options...)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to ElasticSearch")
	}

	inf, code, err := em.Client.Ping(conf.Host).Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "pinging ElasticSearch")
	}
	logger.Infof("Succesfully pinged ElasticSearch server with code %d and version %s", code, inf.Version.Number)

	ex, err := em.Client.IndexExists(em.IndexName).Do(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetching index existence")
	}

	if !ex {
		logger.Infof("Creating index %s", em.IndexName)
		in, err := em.Client.CreateIndex(em.IndexName).BodyString(BuildMapping(em.TypeName)).Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "creating index %s", em.IndexName)
		}
		if !in.Acknowledged {
			return nil, errors.Errorf("creation of index %s not acknowledged", em.IndexName)
		}
		time.Sleep(conf.IndexSetupWait)
	} else {
		logger.Infof("Index %s exist, skipping its creation", em.IndexName)
	}

	em.currentBulkService = em.Client.Bulk()
	return em, nil
}

// Add fills a BulkRequest up to Bulklimit, then hands it to a worker. At most
// MaxBulkCalls workers run at the same time. Cancelling ctx does not stop
// workers already started.
func (em *ElasticManager) Add(_ context.Context, c Compound) error {
	em.mu.Lock()
	defer em.mu.Unlock()

	em.logger.Debugw(
		"Adding to index: ",
		"id", c.ID,
		"name", c.Name,
		"file", c.SourceFile,
	)

	if em.countBulkRequest < em.Bulklimit {
		em.countBulkRequest++
	} else {
		em.logger.Debugf("Got %d sending BulkRequest. New Bulk starting from: %s", em.countBulkRequest, c.ID)
		if em.currentBulkCalls < em.MaxBulkCalls {
			em.currentBulkCalls++
		} else {
			em.logger.Debugf("Hitting %d workers to send. Waiting for them to finish. Last ID: %s", em.currentBulkCalls, c.ID)
			em.WaitGroup.Wait()
			em.currentBulkCalls = 1
		}

		em.WaitGroup.Add(1)
		go em.sendBulkRequest(em.workerCtx, em.currentBulkService)

		em.countBulkRequest = 1
		em.currentBulkService = em.Client.Bulk()
	}

	r := elastic.NewBulkIndexRequest().Index(em.IndexName).Type(em.TypeName).Id(c.DocumentID()).Doc(c)
	em.currentBulkService = em.currentBulkService.Add(r)
	return nil
}

// Flush sends the current bulk regardless the limit has been reached, waits
// for the running workers and returns the errors they got
func (em *ElasticManager) Flush(ctx context.Context) error {
	em.mu.Lock()
	defer em.mu.Unlock()

	if em.currentBulkService.NumberOfActions() > 0 {
		em.WaitGroup.Add(1)
		em.sendBulkRequest(ctx, em.currentBulkService)
		em.currentBulkService = em.Client.Bulk()
		em.countBulkRequest = 0
	} else {
		em.logger.Debug("No actions on current bulk service, skipping last bulk")
	}
	em.WaitGroup.Wait()
	em.currentBulkCalls = 0

	em.statsMu.Lock()
	defer em.statsMu.Unlock()
	em.logger.Infow(
		"Bulk totals",
		"jobs", em.totalSentJobs,
		"indexed", em.totalIndexed,
		"failed", em.totalFailed,
	)
	err := em.errs
	em.errs = nil
	return err
}

// Totals returns the number of bulk jobs sent, documents indexed and failed
func (em *ElasticManager) Totals() (jobs, indexed, failed int) {
	em.statsMu.Lock()
	defer em.statsMu.Unlock()
	return em.totalSentJobs, em.totalIndexed, em.totalFailed
}

func (em *ElasticManager) sendBulkRequest(ctx context.Context, b *elastic.BulkService) {
	defer em.WaitGroup.Done()
	em.logger.Debug("INIT bulk worker")

	br, err := b.Do(ctx)
	if err != nil {
		em.statsMu.Lock()
		em.totalSentJobs++
		em.errs = multierr.Append(em.errs, errors.Wrap(err, "bulk request"))
		em.statsMu.Unlock()
		em.logger.Error("Error from bulk ", err)
		return
	}
	em.record(newWorkerResponse(br))
	em.logger.Debug("END bulk worker")
}

func (em *ElasticManager) record(r WorkerResponse) {
	em.statsMu.Lock()
	defer em.statsMu.Unlock()

	em.totalSentJobs++
	em.totalIndexed += r.Succeeded
	em.totalFailed += r.Failed

	em.logger.Infow(
		"WORKER_RESPONSE",
		"succeeded", r.Succeeded,
		"indexed", r.Indexed,
		"failed", r.Failed,
		"took", r.BulkResponse.Took,
	)

	if r.Failed > 0 {
		ids := ""
		reasons := ""
		for _, it := range r.BulkResponse.Failed() {
			ids = ids + "," + it.Id
			if it.Error != nil {
				reasons = reasons + " " + it.Error.Reason
			}
		}
		em.logger.Error("IDs with error ", ids)
		em.logger.Debug("Reasons: ", reasons)
		em.errs = multierr.Append(em.errs, errors.Errorf("%d documents failed to index: %s", r.Failed, ids[1:]))
	}
}

// Close terminates the ElasticSearch Client
func (em *ElasticManager) Close() error {
	em.Client.Stop()
	return nil
}
