package mdc

import (
	"strconv"
	"strings"
)

// Operator prefixes of the media delivery URL
const (
	OpBoxed     = "-B"
	OpScaled    = "-S"
	OpFormatted = "-F"
	OpCropped   = "-C"
)

// Operators are the rendered parts of a URL suffix
type Operators struct {
	Scale  string
	Format string
	Crop   string
}

// String joins the operators in scale, format, crop order
func (o Operators) String() string {
	return o.Scale + o.Format + o.Crop
}

// URLHook may rewrite the operators of a transform.
// Returning false vetoes the transformation and the suffix becomes empty.
type URLHook func(t Transform, ops Operators) (Operators, bool)

// Builder renders transforms into URL suffixes
type Builder struct {
	hooks []URLHook
}

// NewBuilder creates a builder that runs hooks in order on every suffix
func NewBuilder(hooks ...URLHook) *Builder {
	return &Builder{hooks: hooks}
}

// Render renders t without running the hooks
func Render(t Transform) Operators {
	var ops Operators

	if t.HasSize {
		ops.Scale = OpBoxed + strconv.Itoa(t.Size)
	} else {
		ops.Scale = OpScaled + strconv.Itoa(t.Width) + "x" + strconv.Itoa(t.Height)
	}

	if t.Format != "" {
		ops.Format = OpFormatted + t.Format
	}

	if t.Crop != nil {
		var b strings.Builder
		b.WriteString(OpCropped)
		b.WriteString(strconv.Itoa(t.Crop.Width))
		b.WriteString("x")
		b.WriteString(strconv.Itoa(t.Crop.Height))
		b.WriteString(",")
		b.WriteString(strconv.Itoa(t.Crop.OffsetLeft))
		b.WriteString(",")
		b.WriteString(strconv.Itoa(t.Crop.OffsetTop))
		ops.Crop = b.String()
	}

	return ops
}

// Suffix renders t and passes it through the hook chain
func (b *Builder) Suffix(t Transform) string {
	ops := Render(t)
	if b == nil {
		return ops.String()
	}
	for _, hook := range b.hooks {
		var ok bool
		ops, ok = hook(t, ops)
		if !ok {
			return ""
		}
	}
	return ops.String()
}
