// Package driver exposes one Canto storage as a hierarchical filesystem.
// Folder identifiers contain folders and albums, album identifiers contain files.
package driver

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"strings"
	"time"

	"github.com/jacobsenj/canto-fal/internal/dam"
	"github.com/jacobsenj/canto-fal/internal/identifier"
	"github.com/jacobsenj/canto-fal/internal/logger"
	"github.com/jacobsenj/canto-fal/internal/mdc"
	"github.com/jacobsenj/canto-fal/internal/metadata"
	"github.com/jacobsenj/canto-fal/internal/transient"
	"github.com/jacobsenj/canto-fal/internal/utils"
	"github.com/jacobsenj/canto-fal/pkg/config"

	"github.com/sirupsen/logrus"
)

const (
	// uploadAttempts bounds the upload status poll loop
	uploadAttempts = 15
	uploadPollWait = 2 * time.Second
)

// Sleeper blocks for d, returning early with an error when ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// Options holds the collaborators of a Driver
type Options struct {
	Repository *dam.Repository
	Transient  *transient.Registry
	// Hooks rewrite or veto media delivery operators, in order
	Hooks []mdc.URLHook
	// MetadataHooks rewrite or veto metadata exports, in order
	MetadataHooks []metadata.UploadHook
	TempDir       string
	Sleep         Sleeper
	Now           func() time.Time
	Log           *logger.Logger
}

// Driver serves one storage. It is not shared between requests, Close releases
// every local file it produced.
type Driver struct {
	repo      *dam.Repository
	cfg       *config.DriverConfig
	root      string
	transient *transient.Registry
	builder   *mdc.Builder
	processor *mdc.Processor
	exporter  *metadata.Exporter
	tempDir   string
	sleep     Sleeper
	now       func() time.Time
	log       *logger.Logger
}

// New creates a driver around an initialized repository
func New(opts Options) *Driver {
	cfg := opts.Repository.Config()

	d := &Driver{
		repo:      opts.Repository,
		cfg:       cfg,
		root:      identifier.BuildRoot(identifier.Scheme(cfg.RootFolderScheme), cfg.RootFolder),
		transient: opts.Transient,
		builder:   mdc.NewBuilder(opts.Hooks...),
		tempDir:   opts.TempDir,
		sleep:     opts.Sleep,
		now:       opts.Now,
		log:       opts.Log,
	}
	if d.transient == nil {
		d.transient = transient.NewRegistry()
	}
	if d.sleep == nil {
		d.sleep = utils.SleepContext
	}
	if d.now == nil {
		d.now = time.Now
	}
	d.processor = mdc.NewProcessor(opts.Repository, d.builder, cfg.MasterImageSize)
	d.exporter = metadata.NewExporter(opts.Repository.Client(), opts.Log, opts.MetadataHooks...)

	return d
}

// Close removes every transient file created through this driver
func (d *Driver) Close() error {
	return d.transient.Close()
}

// StorageID returns the id of the served storage
func (d *Driver) StorageID() int {
	return d.cfg.StorageID
}

// Repository exposes the underlying repository, used by the batch jobs
func (d *Driver) Repository() *dam.Repository {
	return d.repo
}

func (d *Driver) fields(extra logrus.Fields) logrus.Fields {
	f := logrus.Fields{"storage": d.cfg.StorageID}
	for k, v := range extra {
		f[k] = v
	}
	return f
}

// invalidate flushes the storage cache after a mutation, whatever the outcome of the mutation was
func (d *Driver) invalidate(ctx context.Context) {
	if err := d.repo.Invalidate(ctx); err != nil {
		d.log.WithFields(d.fields(nil)).WithError(err).Warn("Cache flush failed")
	}
}

// RootLevelFolder returns the combined identifier of the configured root
func (d *Driver) RootLevelFolder() string {
	return d.root
}

// DefaultFolder is the root folder
func (d *Driver) DefaultFolder() string {
	return d.root
}

// Permissions are read and write for every resource
func (d *Driver) Permissions(identifier string) Permissions {
	return Permissions{Read: true, Write: true}
}

// Hash hashes the identifier itself, remote content is never downloaded for it
func (d *Driver) Hash(identifier, algorithm string) (string, error) {
	var h hash.Hash
	switch strings.ToLower(algorithm) {
	case "sha1":
		h = sha1.New()
	case "md5":
		h = md5.New()
	case "sha256":
		h = sha256.New()
	default:
		return "", ErrUnknownHash
	}
	h.Write([]byte(identifier))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashIdentifier is the sha1 of the identifier
func (d *Driver) HashIdentifier(identifier string) string {
	sum := sha1.Sum([]byte(identifier))
	return hex.EncodeToString(sum[:])
}

// Process renders a processing task as a media delivery URL
func (d *Driver) Process(ctx context.Context, task mdc.Task) (*mdc.Result, error) {
	return d.processor.Process(ctx, task)
}

// MdcActive reports whether renditions are served by the media delivery domain
func (d *Driver) MdcActive() bool {
	return d.cfg.MdcActive
}
