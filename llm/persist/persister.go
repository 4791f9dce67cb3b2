package persist

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/imageflow/types"
)

// Options controls the stored image.
type Options struct {
	Format  string
	Width   int
	Height  int
	Quality int
}

// Persister turns an encoded payload into an image file.
type Persister struct {
	codec  Codec
	logger *zap.Logger
}

// New creates a Persister. A nil codec uses NewCodec.
func New(codec Codec, logger *zap.Logger) *Persister {
	if codec == nil {
		codec = NewCodec()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Persister{
		codec:  codec,
		logger: logger.With(zap.String("component", "persister")),
	}
}

// Persist decodes payload, resizes it to opts when the size differs, and
// writes it to outputPath in opts.Format. Missing directories are created.
// The write is atomic. Every failure is a PERSISTENCE_ERROR.
func (p *Persister) Persist(payload, outputPath string, opts Options) (string, error) {
	raw, err := decodePayload(payload)
	if err != nil {
		return "", types.NewPersistenceError("invalid image payload", err)
	}

	img, err := p.codec.Decode(raw)
	if err != nil {
		return "", types.NewPersistenceError("failed to decode image", err)
	}

	b := img.Bounds()
	if opts.Width > 0 && opts.Height > 0 && (b.Dx() != opts.Width || b.Dy() != opts.Height) {
		p.logger.Debug("resizing image",
			zap.Int("from_width", b.Dx()),
			zap.Int("from_height", b.Dy()),
			zap.Int("to_width", opts.Width),
			zap.Int("to_height", opts.Height),
		)
		img = p.codec.Resize(img, opts.Width, opts.Height)
	}

	var buf bytes.Buffer
	if err := p.codec.Encode(&buf, img, opts.Format, opts.Quality); err != nil {
		return "", types.NewPersistenceError(fmt.Sprintf("failed to encode %s", opts.Format), err)
	}

	if err := writeAtomic(outputPath, buf.Bytes()); err != nil {
		return "", types.NewPersistenceError("failed to write image", err)
	}

	p.logger.Debug("image saved", zap.String("path", outputPath), zap.Int("bytes", buf.Len()))
	return outputPath, nil
}

// decodePayload drops everything up to the first comma, then base64 decodes.
func decodePayload(payload string) ([]byte, error) {
	if _, data, found := strings.Cut(payload, ","); found {
		payload = data
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("empty payload")
	}
	return base64.StdEncoding.DecodeString(payload)
}

// writeAtomic writes data to a temp file beside path, then renames it.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
