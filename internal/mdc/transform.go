// Package mdc builds Canto media delivery URLs that resize, crop and
// reformat images on the fly.
package mdc

import (
	"math"
	"strings"
)

// Area is a crop region in master image coordinates
type Area struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	OffsetLeft float64 `json:"offsetLeft"`
	OffsetTop  float64 `json:"offsetTop"`
}

// Configuration is what a processing task asks for
type Configuration struct {
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	MaxWidth      int    `json:"maxWidth,omitempty"`
	MaxHeight     int    `json:"maxHeight,omitempty"`
	Crop          *Area  `json:"crop,omitempty"`
	FileExtension string `json:"fileExtension,omitempty"`
}

// Master holds the dimensions of the master image Canto renders from
type Master struct {
	Width  float64
	Height float64
	Scale  float64
}

// CropBox is a crop region scaled onto the master image, truncated to integers
type CropBox struct {
	Width      int
	Height     int
	OffsetLeft int
	OffsetTop  int
}

// Transform is a fully resolved configuration
type Transform struct {
	Width  int
	Height int
	// Size is set for square outputs and selects the boxed operator
	Size    int
	HasSize bool
	Format  string
	Crop    *CropBox
}

// NewMaster scales the natural size of an asset down to masterSize on its longest side
func NewMaster(width, height float64, masterSize int) Master {
	scale := 1.0
	if width > 0 && height > 0 && masterSize > 0 {
		scale = math.Min(1, math.Min(float64(masterSize)/width, float64(masterSize)/height))
	}
	return Master{Width: scale * width, Height: scale * height, Scale: scale}
}

// Resolve turns a task configuration into a Transform.
// imageWidth and imageHeight are the dimensions the task computed for its target, 0 when unknown.
// Missing dimensions fall back to the requested size, then the max size, then the master size.
func Resolve(cfg Configuration, imageWidth, imageHeight int, master Master) Transform {
	t := Transform{Width: cfg.Width, Height: cfg.Height}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		t.Height = firstPositive(imageHeight, cfg.Height, cfg.MaxHeight, int(master.Height))
		t.Width = firstPositive(imageWidth, cfg.Width, cfg.MaxWidth, int(master.Width))
	}

	if cfg.Crop != nil {
		t.Height = min(t.Height, int(cfg.Crop.Height))
		t.Width = min(t.Width, int(cfg.Crop.Width))
		t.Crop = &CropBox{
			Width:      int(cfg.Crop.Width * master.Scale),
			Height:     int(cfg.Crop.Height * master.Scale),
			OffsetLeft: int(cfg.Crop.OffsetLeft * master.Scale),
			OffsetTop:  int(cfg.Crop.OffsetTop * master.Scale),
		}
	}

	if t.Width == t.Height {
		t.Size = t.Width
		t.HasSize = true
	}

	if cfg.FileExtension != "" {
		t.Format = strings.ToUpper(cfg.FileExtension)
	}

	return t
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
