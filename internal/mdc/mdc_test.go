package mdc

import (
	"context"
	"strings"
	"testing"

	"github.com/jacobsenj/canto-fal/internal/identifier"
	"github.com/jacobsenj/canto-fal/pkg/canto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssets map[string]*canto.Asset

func (f fakeAssets) GetFileDetails(ctx context.Context, scheme identifier.Scheme, id string) *canto.Asset {
	return f[identifier.Encode(scheme, id)]
}

func (f fakeAssets) ImageURL(id identifier.Combined) string {
	return "https://mdc.example.com/image/42/" + string(id.Scheme) + "_" + id.ID + "/"
}

func masterAsset() fakeAssets {
	return fakeAssets{"image<>123": {ID: "123", Scheme: "image", Width: "2000", Height: "1000"}}
}

func TestExplicitSizeScales(t *testing.T) {
	p := NewProcessor(masterAsset(), NewBuilder(), 2000)

	res, err := p.Process(context.Background(), Task{
		Identifier:    "image<>123",
		Configuration: Configuration{Width: 500, Height: 250},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://mdc.example.com/image/42/image_123/-S500x250", res.URL)
	assert.Equal(t, 500, res.Width)
	assert.Equal(t, 250, res.Height)
	assert.Equal(t, "processed_image<>123", res.ProcessedIdentifier)
}

func TestCropIsScaledOntoMaster(t *testing.T) {
	crop := &Area{Width: 1000, Height: 500, OffsetLeft: 100, OffsetTop: 50}

	cases := map[int]string{
		2000: "-S1000x500-C1000x500,100,50",
		1000: "-S1000x500-C500x250,50,25",
		300:  "-S300x150-C150x75,15,7",
	}

	for masterSize, want := range cases {
		p := NewProcessor(masterAsset(), NewBuilder(), masterSize)
		tr, err := p.Transform(context.Background(), Task{
			Identifier:    "image<>123",
			Configuration: Configuration{Crop: crop},
		})
		require.NoError(t, err)
		assert.Equal(t, want, Render(tr).String(), masterSize)
	}
}

func TestResolveOrder(t *testing.T) {
	master := NewMaster(2000, 1000, 2000)

	assert.Equal(t, 300, Resolve(Configuration{Width: 300}, 0, 0, master).Width)
	tr := Resolve(Configuration{Width: 300, MaxHeight: 120}, 0, 0, master)
	assert.Equal(t, 300, tr.Width)
	assert.Equal(t, 120, tr.Height)

	tr = Resolve(Configuration{Width: 300}, 640, 480, master)
	assert.Equal(t, 640, tr.Width)
	assert.Equal(t, 480, tr.Height)

	tr = Resolve(Configuration{}, 0, 0, master)
	assert.Equal(t, 2000, tr.Width)
	assert.Equal(t, 1000, tr.Height)

	tr = Resolve(Configuration{}, 0, 0, Master{})
	assert.Equal(t, 0, tr.Width)
	assert.Equal(t, "-B0", Render(tr).String())
}

func TestSquareUsesBoxedOperator(t *testing.T) {
	master := NewMaster(2000, 1000, 2000)
	for _, cfg := range []Configuration{
		{Width: 400, Height: 400},
		{MaxWidth: 400, MaxHeight: 400},
	} {
		assert.Equal(t, "-B400", Render(Resolve(cfg, 0, 0, master)).String())
	}
}

func TestFormatIsUppercased(t *testing.T) {
	tr := Resolve(Configuration{Width: 10, Height: 20, FileExtension: "webp"}, 0, 0, Master{Scale: 1})
	assert.Equal(t, "-S10x20-FWEBP", Render(tr).String())
}

func TestPreviewForcesJpg(t *testing.T) {
	p := NewProcessor(masterAsset(), NewBuilder(), 2000)
	res, err := p.Process(context.Background(), Task{
		Identifier:    "image<>123",
		Name:          TaskPreview,
		Configuration: Configuration{Width: 64, Height: 64, FileExtension: "png"},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.URL, "/-B64-FJPG"))
}

func TestSuffixIsDeterministic(t *testing.T) {
	b := NewBuilder()
	tr := Resolve(Configuration{Width: 800, Crop: &Area{Width: 900, Height: 600, OffsetLeft: 3.7, OffsetTop: 9.9}, FileExtension: "png"}, 0, 0, NewMaster(4000, 3000, 2000))
	first := b.Suffix(tr)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, b.Suffix(tr))
	}
}

func TestHooksRewriteAndVeto(t *testing.T) {
	tr := Transform{Width: 10, Height: 20}

	rewrite := func(t Transform, ops Operators) (Operators, bool) {
		ops.Format = OpFormatted + "AVIF"
		return ops, true
	}
	assert.Equal(t, "-S10x20-FAVIF", NewBuilder(rewrite).Suffix(tr))

	veto := func(t Transform, ops Operators) (Operators, bool) { return ops, false }
	assert.Equal(t, "", NewBuilder(rewrite, veto).Suffix(tr))
}

func TestMasterFallsBackToFileDimensions(t *testing.T) {
	p := NewProcessor(fakeAssets{}, NewBuilder(), 1000)
	m, err := p.Master(context.Background(), Task{Identifier: "image<>9", FileWidth: 4000, FileHeight: 2000})
	require.NoError(t, err)
	assert.Equal(t, 0.25, m.Scale)
	assert.Equal(t, 1000.0, m.Width)
	assert.Equal(t, 500.0, m.Height)
}

func TestProcessRejectsDocuments(t *testing.T) {
	p := NewProcessor(fakeAssets{}, NewBuilder(), 1000)
	_, err := p.Process(context.Background(), Task{Identifier: "document<>1"})
	assert.ErrorIs(t, err, ErrNotAnImage)

	_, err = p.Process(context.Background(), Task{Identifier: "garbage"})
	assert.ErrorIs(t, err, identifier.ErrInvalidIdentifier)
}
