package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/openkraft/buildgate/internal/domain"
)

// BundleService writes the sources and javadoc archives of each module.
type BundleService struct {
	bundler domain.Bundler
	logger  *zap.Logger
}

func NewBundleService(bundler domain.Bundler, logger *zap.Logger) *BundleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BundleService{bundler: bundler, logger: logger}
}

// Bundle writes every bundle of p.
func (s *BundleService) Bundle(ctx context.Context, p domain.ModulePolicy) ([]domain.BundleResult, error) {
	results := make([]domain.BundleResult, 0, len(p.Bundles))
	for _, b := range p.Bundles {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		size, err := s.bundler.Bundle(ctx, b)
		if err != nil {
			return results, fmt.Errorf("bundling %s %s: %w", p.Module, b.Classifier, err)
		}
		s.logger.Debug("bundle written",
			zap.String("module", p.Module),
			zap.String("classifier", b.Classifier),
			zap.Int64("size", size))
		results = append(results, domain.BundleResult{
			Module:     p.Module,
			Classifier: b.Classifier,
			Path:       b.Output,
			Size:       size,
		})
	}
	return results, nil
}

// BundleAll writes the bundles of every module of ws.
func (s *BundleService) BundleAll(ctx context.Context, ws *Workspace) ([]domain.BundleResult, error) {
	var all []domain.BundleResult
	for _, p := range ws.Policies {
		results, err := s.Bundle(ctx, p)
		all = append(all, results...)
		if err != nil {
			return all, err
		}
	}
	return all, nil
}
