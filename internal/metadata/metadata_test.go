package metadata

import (
	"context"
	"testing"

	"github.com/jacobsenj/canto-fal/internal/logger"
	"github.com/jacobsenj/canto-fal/pkg/canto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingUpdater struct {
	requests []canto.BatchUpdatePropertiesRequest
	err      error
}

func (r *recordingUpdater) BatchUpdateProperties(ctx context.Context, req canto.BatchUpdatePropertiesRequest) error {
	r.requests = append(r.requests, req)
	return r.err
}

func TestExtract(t *testing.T) {
	var e Extractor
	assert.Nil(t, e.Extract(nil))

	data := e.Extract(&canto.Asset{
		Name:      "photo.jpg",
		Width:     "800",
		Height:    "0",
		Copyright: " ",
		Keyword:   []string{"beach"},
		Tag:       []string{"summer"},
		Default: canto.AssetDefaults{
			Title:        "Beach",
			Copyright:    "ACME",
			DateModified: "20240131235959123",
		},
	})

	assert.Equal(t, map[string]any{
		KeyTitle:            "Beach",
		KeyWidth:            int64(800),
		KeyCopyright:        "ACME",
		KeyKeywords:         "beach, summer",
		KeyModificationDate: int64(1706745599),
	}, data)

	assert.Equal(t, map[string]any{KeyTitle: "x.pdf"}, e.Extract(&canto.Asset{Name: "x.pdf"}))
}

func TestParseMapping(t *testing.T) {
	m, err := ParseMapping(`{"title": "Title", "1:title": {"name": "Titel", "action": "replace", "customField": true}}`)
	require.NoError(t, err)
	assert.Equal(t, Field{Name: "Title"}, m["title"])
	assert.Equal(t, Field{Name: "Titel", Action: "replace", CustomField: true}, m["1:title"])

	m, err = ParseMapping("")
	require.NoError(t, err)
	assert.Empty(t, m)

	_, err = ParseMapping("{nope")
	assert.ErrorIs(t, err, ErrInvalidMapping)
}

func TestPropertiesPerLanguage(t *testing.T) {
	m := Mapping{
		"title":         {Name: "Title"},
		"0:description": {Name: "Description", Action: "append"},
		"1:title":       {Name: "Titel"},
		"2:title":       {Name: "Titre"},
	}
	data := map[string]any{"title": "Beach", "width": 3}

	assert.Equal(t, []canto.Property{
		{PropertyID: "Description", PropertyValue: "", Action: "append"},
		{PropertyID: "Title", PropertyValue: "Beach"},
	}, m.Properties(0, data))

	assert.Equal(t, []canto.Property{{PropertyID: "Titel", PropertyValue: "Beach"}}, m.Properties(1, data))
	assert.Empty(t, m.Properties(3, data))
	assert.Equal(t, "3", Mapping{"width": {Name: "W"}}.Properties(0, data)[0].PropertyValue)
}

func TestExport(t *testing.T) {
	updater := &recordingUpdater{}
	exporter := NewExporter(updater, logger.Discard())
	ctx := context.Background()
	mapping := Mapping{"title": {Name: "Title"}}

	ok := exporter.Export(ctx, "image<>9", mapping, 0, map[string]any{"title": "Beach"})
	require.True(t, ok)
	require.Len(t, updater.requests, 1)
	assert.Equal(t, canto.BatchUpdatePropertiesRequest{
		Contents:   []canto.Reference{{ID: "9", Scheme: "image"}},
		Properties: []canto.Property{{PropertyID: "Title", PropertyValue: "Beach"}},
	}, updater.requests[0])

	assert.False(t, exporter.Export(ctx, "image<>9", Mapping{}, 0, nil))
	assert.False(t, exporter.Export(ctx, "album<>9", mapping, 0, nil))
	assert.False(t, exporter.Export(ctx, "bogus", mapping, 0, nil))
	assert.Len(t, updater.requests, 1)

	updater.err = canto.ErrInvalidResponse
	assert.False(t, exporter.Export(ctx, "image<>9", mapping, 0, nil))
}

func TestUploadHooks(t *testing.T) {
	updater := &recordingUpdater{}
	upper := func(u Upload) (Upload, bool) {
		for i := range u.Properties {
			u.Properties[i].PropertyValue += "!"
		}
		return u, true
	}
	exporter := NewExporter(updater, logger.Discard(), upper)

	require.True(t, exporter.Export(context.Background(), "image<>9", Mapping{"title": {Name: "Title"}}, 0, map[string]any{"title": "Beach"}))
	assert.Equal(t, "Beach!", updater.requests[0].Properties[0].PropertyValue)

	veto := NewExporter(updater, logger.Discard(), upper, func(u Upload) (Upload, bool) { return u, false })
	assert.False(t, veto.Export(context.Background(), "image<>9", Mapping{"title": {Name: "Title"}}, 0, nil))
	assert.Len(t, updater.requests, 1)
}
