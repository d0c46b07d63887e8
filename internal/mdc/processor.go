package mdc

import (
	"context"
	"errors"
	"fmt"

	"github.com/jacobsenj/canto-fal/internal/identifier"
	"github.com/jacobsenj/canto-fal/pkg/canto"
)

// Task names
const (
	TaskPreview       = "Preview"
	TaskCropScaleMask = "CropScaleMask"
)

var (
	ErrNotAnImage = errors.New("mdc processing needs an image")
)

// Task is a request to derive a rendition of a file
type Task struct {
	// Identifier is the combined identifier of the source file
	Identifier    string
	Name          string
	Configuration Configuration
	// ImageWidth and ImageHeight are the target dimensions computed by the caller, 0 when unknown
	ImageWidth  int
	ImageHeight int
	// FileWidth and FileHeight are the locally known dimensions, used when the remote record has none
	FileWidth  int
	FileHeight int
}

// Result describes the rendition served from the media delivery domain
type Result struct {
	URL                 string
	Width               int
	Height              int
	ProcessedIdentifier string
}

// AssetSource resolves assets and their base image URL
type AssetSource interface {
	GetFileDetails(ctx context.Context, scheme identifier.Scheme, id string) *canto.Asset
	ImageURL(id identifier.Combined) string
}

// Processor turns processing tasks into media delivery URLs
type Processor struct {
	assets     AssetSource
	builder    *Builder
	masterSize int
}

// NewProcessor creates a processor. masterSize is the longest side of the master image.
func NewProcessor(assets AssetSource, builder *Builder, masterSize int) *Processor {
	return &Processor{assets: assets, builder: builder, masterSize: masterSize}
}

// Master returns the master dimensions of the task's source file
func (p *Processor) Master(ctx context.Context, task Task) (Master, error) {
	id, err := identifier.Decode(task.Identifier)
	if err != nil {
		return Master{}, err
	}

	width, height := float64(task.FileWidth), float64(task.FileHeight)
	if asset := p.assets.GetFileDetails(ctx, id.Scheme, id.ID); asset != nil {
		if w := asset.Width.Int(); w > 0 {
			width = float64(w)
		}
		if h := asset.Height.Int(); h > 0 {
			height = float64(h)
		}
	}

	return NewMaster(width, height, p.masterSize), nil
}

// Transform resolves the configuration of task against the master image
func (p *Processor) Transform(ctx context.Context, task Task) (Transform, error) {
	master, err := p.Master(ctx, task)
	if err != nil {
		return Transform{}, err
	}

	cfg := task.Configuration
	if task.Name == TaskPreview {
		cfg.FileExtension = "jpg"
	}

	return Resolve(cfg, task.ImageWidth, task.ImageHeight, master), nil
}

// Process builds the rendition URL of task
func (p *Processor) Process(ctx context.Context, task Task) (*Result, error) {
	id, err := identifier.Decode(task.Identifier)
	if err != nil {
		return nil, err
	}
	if id.Scheme != identifier.SchemeImage {
		return nil, fmt.Errorf("%w: %s", ErrNotAnImage, task.Identifier)
	}

	t, err := p.Transform(ctx, task)
	if err != nil {
		return nil, err
	}

	return &Result{
		URL:                 p.assets.ImageURL(id) + p.builder.Suffix(t),
		Width:               t.Width,
		Height:              t.Height,
		ProcessedIdentifier: identifier.ToProcessedIdentifier(task.Identifier),
	}, nil
}
