package artifacts

import (
	"io/fs"

	"github.com/okian/gameaccess/pkg/logger"
)

// Default file names inside the artifact directory.
const (
	DefaultTransformerFile = "preprocessor.json"
	DefaultClassifierFile  = "lgbm.json"
	DefaultDecoderFile     = "label_encoder.json"
)

// Option configures a Store.
type Option func(*Store)

// WithFS reads artifacts from fsys instead of the directory passed to NewStore.
func WithFS(fsys fs.FS) Option {
	return func(s *Store) {
		if fsys != nil {
			s.fsys = fsys
		}
	}
}

// WithTransformerFile overrides the transformer file name.
func WithTransformerFile(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.transformerFile = name
		}
	}
}

// WithClassifierFile overrides the classifier file name.
func WithClassifierFile(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.classifierFile = name
		}
	}
}

// WithDecoderFile overrides the decoder file name.
func WithDecoderFile(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.decoderFile = name
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}
