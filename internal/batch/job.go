// Package batch re-synchronises local file records with their remote assets.
package batch

import (
	"context"
	"fmt"
	"io"

	"github.com/jacobsenj/canto-fal/internal/driver"
	"github.com/jacobsenj/canto-fal/internal/filerecord"
	"github.com/jacobsenj/canto-fal/internal/identifier"
	"github.com/jacobsenj/canto-fal/internal/logger"
	"github.com/jacobsenj/canto-fal/internal/metadata"
	"github.com/jacobsenj/canto-fal/internal/metrics"
	"github.com/jacobsenj/canto-fal/internal/models"
	"github.com/jacobsenj/canto-fal/internal/utils"
	"github.com/jacobsenj/canto-fal/pkg/canto"

	"github.com/sirupsen/logrus"
)

// Storage is the part of a driver the jobs need
type Storage interface {
	ForgetFile(ctx context.Context, fileIdentifier string) error
	FileDetails(ctx context.Context, fileIdentifier string) *canto.Asset
	LocalCopy(ctx context.Context, fileIdentifier string, preview bool) (string, error)
	Close() error
}

// Opener opens the storage records of storageID belong to
type Opener func(ctx context.Context, storageID int) (Storage, error)

// FactoryOpener opens storages through a driver factory
func FactoryOpener(f *driver.Factory) Opener {
	return func(ctx context.Context, storageID int) (Storage, error) {
		d, err := f.Open(ctx, storageID)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

// Purger removes the derived renditions of a record
type Purger interface {
	Purge(ctx context.Context, storageID int, record *models.FileRecord) error
}

// Options holds the collaborators of a Job
type Options struct {
	Variant    Variant
	Store      filerecord.Store
	Open       Opener
	Renditions Purger
	Extractor  metadata.Extractor
	// PauseEvery defaults to DefaultPauseEvery, Sleep to a sleep that ends with ctx
	PauseEvery int
	Sleep      driver.Sleeper
	Out        io.Writer
	Log        *logger.Logger
}

// Summary counts what a run did
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
	Pauses    int
}

// Job walks every file record once
type Job struct {
	variant    Variant
	store      filerecord.Store
	open       Opener
	renditions Purger
	extractor  metadata.Extractor
	pauseEvery int
	sleep      driver.Sleeper
	out        io.Writer
	log        *logger.Logger

	storages map[int]Storage
	failures map[int]error
}

// New creates a job
func New(opts Options) (*Job, error) {
	if !opts.Variant.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, opts.Variant)
	}

	j := &Job{
		variant:    opts.Variant,
		store:      opts.Store,
		open:       opts.Open,
		renditions: opts.Renditions,
		extractor:  opts.Extractor,
		pauseEvery: opts.PauseEvery,
		sleep:      opts.Sleep,
		out:        opts.Out,
		log:        opts.Log,
	}
	if j.pauseEvery <= 0 {
		j.pauseEvery = DefaultPauseEvery
	}
	if j.sleep == nil {
		j.sleep = utils.SleepContext
	}
	if j.out == nil {
		j.out = io.Discard
	}
	return j, nil
}

// Run processes every record. Item failures are reported and never end the run,
// only a failing record listing or a cancelled context does.
func (j *Job) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	records, err := j.store.FindAll(ctx)
	if err != nil {
		return summary, fmt.Errorf("loading file records: %w", err)
	}

	j.storages = make(map[int]Storage)
	j.failures = make(map[int]error)
	defer j.closeStorages()

	counter := 0
	for i := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		record := &records[i]
		fmt.Fprintf(j.out, "Working on File: %s - %s\n", record.Identifier, record.Name)

		qualifies, err := j.qualifies(ctx, record)
		if err != nil {
			j.fail(&summary, record, err)
			continue
		}
		if !qualifies {
			summary.Skipped++
			continue
		}

		if counter == j.pauseEvery {
			if err := j.pause(ctx); err != nil {
				return summary, err
			}
			summary.Pauses++
			counter = 0
		}
		counter++

		if err := j.process(ctx, record); err != nil {
			j.fail(&summary, record, err)
			continue
		}
		summary.Processed++
		metrics.RecordBatchItem(string(j.variant), nil)
	}

	j.log.WithFields(logrus.Fields{
		"job":       j.variant,
		"processed": summary.Processed,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
		"pauses":    summary.Pauses,
	}).Info("Batch run finished")

	return summary, nil
}

func (j *Job) qualifies(ctx context.Context, record *models.FileRecord) (bool, error) {
	if record.Driver != models.DriverCanto {
		return false, nil
	}
	if j.variant != FrontendAssets {
		return true, nil
	}

	references, err := j.store.CountReferences(ctx, record.ID)
	if err != nil {
		return false, err
	}
	return references > 0, nil
}

func (j *Job) pause(ctx context.Context) error {
	metrics.RecordBatchPause(string(j.variant))
	j.log.WithFields(logrus.Fields{"job": j.variant, "duration": DefaultPause.String()}).Info("Pausing for the remote rate limit")
	return j.sleep(ctx, DefaultPause)
}

func (j *Job) fail(summary *Summary, record *models.FileRecord, err error) {
	summary.Failed++
	metrics.RecordBatchItem(string(j.variant), err)
	fmt.Fprintf(j.out, "File %s failed: %s\n", record.Identifier, err)
	j.log.WithFields(logrus.Fields{
		"job":        j.variant,
		"storage":    record.StorageID,
		"identifier": record.Identifier,
	}).WithError(err).Warn("Batch item failed")
}

// storage opens each storage once per run, a storage that failed to open stays failed
func (j *Job) storage(ctx context.Context, storageID int) (Storage, error) {
	if s, ok := j.storages[storageID]; ok {
		return s, nil
	}
	if err, ok := j.failures[storageID]; ok {
		return nil, err
	}

	s, err := j.open(ctx, storageID)
	if err != nil {
		err = fmt.Errorf("%w %d: %v", ErrStorageUnavailable, storageID, err)
		j.failures[storageID] = err
		return nil, err
	}
	j.storages[storageID] = s
	return s, nil
}

func (j *Job) closeStorages() {
	for id, s := range j.storages {
		if err := s.Close(); err != nil {
			j.log.ForStorage(id).WithError(err).Warn("Closing storage failed")
		}
	}
}

func (j *Job) process(ctx context.Context, record *models.FileRecord) error {
	st, err := j.storage(ctx, record.StorageID)
	if err != nil {
		return err
	}
	if err := st.ForgetFile(ctx, record.Identifier); err != nil {
		return err
	}

	asset := st.FileDetails(ctx, record.Identifier)
	if asset == nil {
		j.log.ForResource(record.StorageID, record.Identifier).Debug("Asset not available remotely")
		return nil
	}

	switch j.variant {
	case FrontendAssets:
		return j.refreshFrontendAsset(ctx, st, record, asset)
	default:
		return j.refreshMetadata(ctx, st, record, asset)
	}
}

func (j *Job) refreshFrontendAsset(ctx context.Context, st Storage, record *models.FileRecord, asset *canto.Asset) error {
	if asset.Default.DateModified == "" {
		return nil
	}
	mtime := identifier.CantoTimestamp(asset.Default.DateModified)
	if mtime <= record.ModificationDate {
		return nil
	}

	if err := j.store.UpdateModificationDate(ctx, record.ID, mtime); err != nil {
		return err
	}
	record.ModificationDate = mtime

	return j.refresh(ctx, st, record, j.extractor.Extract(asset), false)
}

func (j *Job) refreshMetadata(ctx context.Context, st Storage, record *models.FileRecord, asset *canto.Asset) error {
	data := j.extractor.Extract(asset)
	if len(data) == 0 {
		return nil
	}
	return j.refresh(ctx, st, record, data, true)
}

// refresh stores fresh metadata, re-materialises the file and drops every rendition derived from the old version
func (j *Job) refresh(ctx context.Context, st Storage, record *models.FileRecord, data map[string]any, preview bool) error {
	if len(data) > 0 {
		if err := j.store.SaveMetadata(ctx, record.ID, data); err != nil {
			return err
		}
	}
	if _, err := st.LocalCopy(ctx, record.Identifier, preview); err != nil {
		return err
	}
	return j.renditions.Purge(ctx, record.StorageID, record)
}
