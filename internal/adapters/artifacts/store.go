// Package artifacts loads the fitted feature transformer, classifier and label
// decoder from disk and exposes them read-only.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/okian/gameaccess/internal/domain/inference"
	"github.com/okian/gameaccess/pkg/logger"
	"github.com/okian/gameaccess/pkg/metrics"
)

// Set is the loaded pipeline. It is safe for concurrent use once returned.
type Set struct {
	Transformer *ColumnTransformer
	Classifier  *Booster
	Decoder     *LabelEncoder
}

var (
	_ inference.Transformer = (*ColumnTransformer)(nil)
	_ inference.Classifier  = (*Booster)(nil)
	_ inference.Decoder     = (*LabelEncoder)(nil)
)

// Store loads a Set once and caches the result.
type Store struct {
	dir  string
	fsys fs.FS

	transformerFile string
	classifierFile  string
	decoderFile     string

	logger logger.Logger

	once sync.Once
	set  *Set
	err  error
}

// NewStore creates a store reading from dir.
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{
		dir:             dir,
		transformerFile: DefaultTransformerFile,
		classifierFile:  DefaultClassifierFile,
		decoderFile:     DefaultDecoderFile,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fsys == nil {
		s.fsys = os.DirFS(dir)
	}
	return s
}

// Load reads all three artifacts on first call. Later calls return the cached
// set or the cached error.
func (s *Store) Load(ctx context.Context) (*Set, error) {
	s.once.Do(func() {
		if s.logger == nil {
			s.logger = logger.Named("artifacts")
		}
		start := time.Now()
		s.set, s.err = s.load(ctx)
		elapsed := time.Since(start)
		if s.err != nil {
			s.logger.Error(ctx, "failed to load artifacts",
				logger.String("dir", s.dir),
				logger.Error(s.err),
			)
			return
		}
		metrics.RecordArtifactLoad(3, float64(elapsed.Milliseconds()))
		s.logger.Info(ctx, "artifacts loaded",
			logger.String("dir", s.dir),
			logger.Int("features", s.set.Transformer.Width()),
			logger.Int("classes", s.set.Classifier.NumClasses()),
			logger.String("objective", s.set.Classifier.Objective()),
			logger.Duration("elapsed_ms", elapsed),
		)
	})
	return s.set, s.err
}

func (s *Store) load(ctx context.Context) (*Set, error) {
	t, err := loadOne(s, "transformer", s.transformerFile, ParseColumnTransformer)
	if err != nil {
		return nil, err
	}
	c, err := loadOne(s, "classifier", s.classifierFile, ParseBooster)
	if err != nil {
		return nil, err
	}
	d, err := loadOne(s, "decoder", s.decoderFile, ParseLabelEncoder)
	if err != nil {
		return nil, err
	}

	if t.Width() < c.NumFeatures() {
		metrics.RecordArtifactLoadError("classifier")
		return nil, fmt.Errorf("%w: transformer emits %d features, classifier reads %d",
			ErrInvalidArtifact, t.Width(), c.NumFeatures())
	}
	if n := len(d.classes); n != c.NumClasses() {
		metrics.RecordArtifactLoadError("decoder")
		return nil, fmt.Errorf("%w: decoder has %d classes, classifier predicts %d",
			ErrInvalidArtifact, n, c.NumClasses())
	}
	s.logger.Debug(ctx, "artifact shapes agree", logger.Any("classes", d.Classes()))
	return &Set{Transformer: t, Classifier: c, Decoder: d}, nil
}

func loadOne[T any](s *Store, artifact, name string, parse func([]byte) (T, error)) (T, error) {
	var zero T
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		metrics.RecordArtifactLoadError(artifact)
		if errors.Is(err, fs.ErrNotExist) {
			return zero, fmt.Errorf("%w: %s (%s)", ErrMissingArtifact, artifact, name)
		}
		return zero, fmt.Errorf("%w: %s (%s): %w", ErrInvalidArtifact, artifact, name, err)
	}
	v, err := parse(data)
	if err != nil {
		metrics.RecordArtifactLoadError(artifact)
		return zero, fmt.Errorf("%s (%s): %w", artifact, name, err)
	}
	return v, nil
}
