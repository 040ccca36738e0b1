package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/openkraft/buildgate/internal/adapters/outbound/bundle"
	"github.com/openkraft/buildgate/internal/adapters/outbound/config"
	"github.com/openkraft/buildgate/internal/adapters/outbound/coverage"
	"github.com/openkraft/buildgate/internal/adapters/outbound/gitinfo"
	"github.com/openkraft/buildgate/internal/adapters/outbound/history"
	"github.com/openkraft/buildgate/internal/adapters/outbound/license"
	"github.com/openkraft/buildgate/internal/adapters/outbound/lint"
	"github.com/openkraft/buildgate/internal/adapters/outbound/maven"
	"github.com/openkraft/buildgate/internal/adapters/outbound/properties"
	"github.com/openkraft/buildgate/internal/adapters/outbound/scanner"
	"github.com/openkraft/buildgate/internal/adapters/outbound/testrun"
	"github.com/openkraft/buildgate/internal/application"
	"github.com/openkraft/buildgate/internal/domain"
	"go.uber.org/zap"
)

const uploadTimeout = 5 * time.Minute

func newWorkspaceService() *application.WorkspaceService {
	return application.NewWorkspaceService(config.New(), scanner.New())
}

// NewEngineFactory returns the engines configured by the workspace file.
func NewEngineFactory(logger *zap.Logger) application.EngineFactory {
	return func(ws *application.Workspace) (application.Engines, error) {
		headers, err := newHeaderEngine(ws)
		if err != nil {
			return application.Engines{}, err
		}
		f := ws.File
		return application.Engines{
			Linter:   lint.New(f.Lint.Command, ws.Root, f.Lint.ConfigDir, logger),
			Headers:  headers,
			Tests:    testrun.New(f.Test.Command, f.Test.ResultsDir, f.Test.CoverageData, logger),
			Coverage: coverage.New(),
		}, nil
	}
}

func newHeaderEngine(ws *application.Workspace) (domain.HeaderEngine, error) {
	return license.Load(ws.HeaderPath(), ws.File.License.Year, ws.File.License.Style)
}

func newPipelineService(opts *options) *application.PipelineService {
	return application.NewPipelineService(
		newWorkspaceService(),
		NewEngineFactory(opts.logger),
		gitinfo.New(),
		history.New(),
		opts.logger,
	)
}

func newLicenseService() *application.LicenseService {
	return application.NewLicenseService(newWorkspaceService(), newHeaderEngine)
}

func newBundleService(opts *options) *application.BundleService {
	return application.NewBundleService(bundle.New(), opts.logger)
}

func newPublishService(opts *options) (*application.PublishService, error) {
	overrides, err := properties.ParseOverrides(opts.properties)
	if err != nil {
		return nil, err
	}
	if len(overrides) > 0 {
		opts.logger.Debug("property overrides", zap.Strings("keys", properties.Keys(overrides)))
	}
	return application.NewPublishService(
		properties.New(overrides),
		newBundleService(opts),
		maven.POMWriter{},
		maven.New(&http.Client{Timeout: uploadTimeout}, opts.logger),
		gitinfo.New(),
		opts.logger,
	), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
