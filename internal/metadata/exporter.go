package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jacobsenj/canto-fal/internal/identifier"
	"github.com/jacobsenj/canto-fal/internal/logger"
	"github.com/jacobsenj/canto-fal/internal/metrics"
	"github.com/jacobsenj/canto-fal/pkg/canto"

	"github.com/sirupsen/logrus"
)

var ErrInvalidMapping = errors.New("invalid metadata export mapping")

// Field is the remote property a metadata key is exported to
type Field struct {
	Name        string `json:"name"`
	Action      string `json:"action"`
	CustomField bool   `json:"customField"`
}

// UnmarshalJSON accepts a bare property name as well as the full object
func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &f.Name)
	}
	type plain Field
	return json.Unmarshal(data, (*plain)(f))
}

// Mapping maps "<language>:<metadata key>" to remote fields.
// Keys without a language belong to language 0.
type Mapping map[string]Field

// ParseMapping decodes the JSON mapping of a storage, an empty string is an empty mapping
func ParseMapping(raw string) (Mapping, error) {
	if strings.TrimSpace(raw) == "" {
		return Mapping{}, nil
	}
	var m Mapping
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMapping, err)
	}
	return m, nil
}

// ForLanguage keeps the entries of language, untagged keys are assigned to language 0
func (m Mapping) ForLanguage(language int) Mapping {
	prefix := strconv.Itoa(language) + ":"
	out := Mapping{}
	for key, field := range m {
		if language == 0 && !strings.Contains(key, ":") {
			out["0:"+key] = field
		}
		if strings.HasPrefix(key, prefix) {
			out[key] = field
		}
	}
	return out
}

// Properties converts metadata of language into property updates, ordered by key.
// Mapped keys missing from data are exported as empty values.
func (m Mapping) Properties(language int, data map[string]any) []canto.Property {
	prefix := strconv.Itoa(language) + ":"
	mapping := m.ForLanguage(language)

	keys := make([]string, 0, len(mapping))
	for key := range mapping {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	props := make([]canto.Property, 0, len(keys))
	for _, key := range keys {
		field := mapping[key]
		if field.Name == "" {
			continue
		}
		props = append(props, canto.Property{
			PropertyID:    field.Name,
			PropertyValue: stringify(data[strings.TrimPrefix(key, prefix)]),
			Action:        field.Action,
			CustomField:   field.CustomField,
		})
	}
	return props
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Upload is the payload an UploadHook may change
type Upload struct {
	Asset      canto.Reference
	Properties []canto.Property
}

// UploadHook rewrites an upload, returning false drops it
type UploadHook func(u Upload) (Upload, bool)

// PropertyUpdater sends batch property updates
type PropertyUpdater interface {
	BatchUpdateProperties(ctx context.Context, r canto.BatchUpdatePropertiesRequest) error
}

// Exporter pushes local metadata of assets to the remote storage
type Exporter struct {
	client PropertyUpdater
	hooks  []UploadHook
	log    *logger.Logger
}

func NewExporter(client PropertyUpdater, log *logger.Logger, hooks ...UploadHook) *Exporter {
	return &Exporter{client: client, hooks: hooks, log: log}
}

// Export updates the mapped properties of the asset and reports whether the remote accepted them
func (e *Exporter) Export(ctx context.Context, fileIdentifier string, mapping Mapping, language int, data map[string]any) bool {
	if len(mapping) == 0 {
		return false
	}
	id, err := identifier.Decode(fileIdentifier)
	if err != nil || id.IsFolder() {
		return false
	}

	upload := Upload{
		Asset:      canto.Reference{ID: id.ID, Scheme: string(id.Scheme)},
		Properties: mapping.Properties(language, data),
	}
	for _, hook := range e.hooks {
		var ok bool
		if upload, ok = hook(upload); !ok {
			return false
		}
	}

	err = e.client.BatchUpdateProperties(ctx, canto.BatchUpdatePropertiesRequest{
		Contents:   []canto.Reference{upload.Asset},
		Properties: upload.Properties,
	})
	metrics.RecordRPC("batch_update_properties", err)
	if err != nil {
		e.log.WithFields(logrus.Fields{"identifier": fileIdentifier, "language": language}).WithError(err).Error("Metadata export failed")
		return false
	}
	return true
}
