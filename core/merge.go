package core

import (
	"fmt"
	"log/slog"

	"github.com/george-yg9ea/figma-export-images-with-metadata/core/jpg"
	"github.com/george-yg9ea/figma-export-images-with-metadata/core/png"
)

// MergeMetadata moves the metadata of an original upload into a rendered
// export, dispatching on the rendered buffer's container format. JPEG
// merges may fail with a format-mismatch error; PNG merges are best-effort
// and always succeed, degrading to the rendered bytes.
func MergeMetadata(original, rendered []byte) ([]byte, error) {
	switch DetectFormat(rendered) {
	case FmtJPEG:
		return jpg.Merge(original, rendered)
	case FmtPNG:
		return png.MergeFromJPEG(original, rendered), nil
	case FmtAVIF:
		return nil, fmt.Errorf("%w: avif metadata injection", ErrUnsupported)
	default:
		return nil, fmt.Errorf("%w: unrecognised rendered container", ErrFormatMismatch)
	}
}

// Exporter is the composition root for the export pipeline. It holds the
// startup configuration, including the optional encoder strategy.
type Exporter struct {
	cfg Config
}

// NewExporter builds an Exporter from explicit configuration.
func NewExporter(cfg Config) *Exporter {
	return &Exporter{cfg: cfg}
}

// Export returns the deliverable bytes and MIME type for a rendered
// export, carrying metadata over from the original where the container
// supports it. Metadata loss never prevents delivery: on any merge
// failure the rendered bytes are returned unchanged.
func (e *Exporter) Export(original, rendered []byte) ([]byte, string) {
	format := DetectFormat(rendered)
	out, err := MergeMetadata(original, rendered)
	if err != nil {
		slog.Debug("metadata merge fell back to rendered bytes", "format", string(format), "error", err)
		return rendered, MIMEType(format)
	}
	return out, MIMEType(format)
}

// Render encodes raw pixels through the configured encoder strategy, for
// containers this engine cannot produce natively.
func (e *Exporter) Render(pixels []byte, opts EncodeOptions) ([]byte, error) {
	if opts.Format != FmtAVIF {
		return nil, fmt.Errorf("%w: %s render", ErrUnsupported, opts.Format)
	}
	if e.cfg.AVIFEncoder == nil {
		return nil, fmt.Errorf("%w: no avif encoder configured", ErrUnsupported)
	}
	return e.cfg.AVIFEncoder.Encode(pixels, opts)
}
