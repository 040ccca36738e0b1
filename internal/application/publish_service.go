package application

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/openkraft/buildgate/internal/domain"
)

// PublishService uploads each module's jar, bundles and POM to the
// repository selected by the workspace version.
type PublishService struct {
	properties domain.PropertySource
	bundles    *BundleService
	describer  domain.Describer
	repository domain.Repository
	git        domain.GitInfo
	logger     *zap.Logger
}

func NewPublishService(
	properties domain.PropertySource,
	bundles *BundleService,
	describer domain.Describer,
	repository domain.Repository,
	git domain.GitInfo,
	logger *zap.Logger,
) *PublishService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublishService{
		properties: properties,
		bundles:    bundles,
		describer:  describer,
		repository: repository,
		git:        git,
		logger:     logger,
	}
}

// Policy derives the publication policy of ws: channel from the version,
// credentials from the external properties.
func (s *PublishService) Policy(ws *Workspace) (domain.PublicationPolicy, error) {
	props, err := s.properties.Properties(ws.Root)
	if err != nil {
		return domain.PublicationPolicy{}, fmt.Errorf("reading properties: %w", err)
	}
	creds := ws.File.Publishing.Credentials.Resolve(props)
	return domain.NewPublicationPolicy(ws.Config, ws.File.Publishing.Repository, creds), nil
}

// Plan lists the URLs a publish would write, without network I/O.
func (s *PublishService) Plan(ws *Workspace) ([]domain.PublicationPlan, error) {
	policy, err := s.Policy(ws)
	if err != nil {
		return nil, err
	}
	plans := make([]domain.PublicationPlan, 0, len(ws.Policies))
	for _, p := range ws.Policies {
		plan := domain.PublicationPlan{Module: p.Module, Policy: policy}
		for _, f := range files(p, nil) {
			plan.Targets = append(plan.Targets, policy.TargetURL(p.Coordinates, f.Classifier, f.Extension))
		}
		plan.Targets = append(plan.Targets, policy.MetadataURL(p.Coordinates))
		plans = append(plans, plan)
	}
	return plans, nil
}

// Publish uploads every module. A failure of one module is recorded in its
// result and does not stop the others; the error return is reserved for
// failures that affect all modules.
func (s *PublishService) Publish(ctx context.Context, ws *Workspace) ([]domain.PublishResult, error) {
	policy, err := s.Policy(ws)
	if err != nil {
		return nil, err
	}
	if policy.DestinationURL == "" {
		return nil, fmt.Errorf("%w: no %s repository configured", domain.ErrConfig, policy.Channel)
	}
	if policy.Credentials == nil {
		s.logger.Warn("no repository credentials, uploading anonymously",
			zap.String("channel", string(policy.Channel)))
	}

	commit := ""
	if s.git != nil && s.git.IsGitRepo(ws.Root) {
		commit, _ = s.git.CommitHash(ws.Root)
	}

	results := make([]domain.PublishResult, 0, len(ws.Policies))
	for _, p := range ws.Policies {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r := domain.PublishResult{Module: p.Module, Channel: policy.Channel}
		uploaded, err := s.publishModule(ctx, policy, p, commit)
		r.Uploaded = uploaded
		if err != nil {
			r.Error = err.Error()
			s.logger.Error("publish failed",
				zap.String("module", p.Module),
				zap.String("channel", string(policy.Channel)),
				zap.Error(err))
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *PublishService) publishModule(ctx context.Context, policy domain.PublicationPolicy, p domain.ModulePolicy, commit string) ([]string, error) {
	if _, err := os.Stat(p.Artifact); err != nil {
		return nil, fmt.Errorf("artifact not built: %s", p.Artifact)
	}
	if _, err := s.bundles.Bundle(ctx, p); err != nil {
		return nil, err
	}
	pom, err := s.describer.Describe(p, commit)
	if err != nil {
		return nil, err
	}
	return s.repository.Upload(ctx, policy, domain.Artifact{
		Coordinates: p.Coordinates,
		Files:       files(p, pom),
	})
}

// files lists what is published for a module: the jar, its bundles and the
// POM, in that order.
func files(p domain.ModulePolicy, pom []byte) []domain.PublishFile {
	out := []domain.PublishFile{{LocalPath: p.Artifact, Extension: "jar"}}
	for _, b := range p.Bundles {
		out = append(out, domain.PublishFile{LocalPath: b.Output, Classifier: b.Classifier, Extension: "jar"})
	}
	return append(out, domain.PublishFile{Extension: "pom", Content: pom})
}
