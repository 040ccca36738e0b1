package application

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openkraft/buildgate/internal/domain"
)

// Engines are the external tools a run drives. They are built per workspace
// because their settings come from the workspace file.
type Engines struct {
	Linter   domain.Linter
	Headers  domain.HeaderEngine
	Tests    domain.TestRunner
	Coverage domain.CoverageEngine
}

// EngineFactory builds the engines for a loaded workspace.
type EngineFactory func(ws *Workspace) (Engines, error)

// RunRequest selects what a run does.
type RunRequest struct {
	Root    string
	CI      bool
	Jobs    int
	Modules []string

	// GatesOnly stops every module after license verification.
	GatesOnly bool
}

// PipelineService runs lint, license, tests and the coverage report for
// every module of a workspace.
type PipelineService struct {
	workspace *WorkspaceService
	engines   EngineFactory
	git       domain.GitInfo
	history   domain.RunHistory
	logger    *zap.Logger
	now       func() time.Time
}

func NewPipelineService(
	workspace *WorkspaceService,
	engines EngineFactory,
	git domain.GitInfo,
	history domain.RunHistory,
	logger *zap.Logger,
) *PipelineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PipelineService{
		workspace: workspace,
		engines:   engines,
		git:       git,
		history:   history,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes the pipeline. Configuration errors are returned before any
// module work starts; every other failure is recorded on the module it
// belongs to.
func (s *PipelineService) Run(ctx context.Context, req RunRequest) (*domain.RunSummary, error) {
	ws, err := s.workspace.Load(req.Root)
	if err != nil {
		return nil, err
	}
	ws, err = ws.Select(req.Modules)
	if err != nil {
		return nil, err
	}
	engines, err := s.engines(ws)
	if err != nil {
		return nil, err
	}

	summary := &domain.RunSummary{
		RunID:     uuid.NewString(),
		Workspace: ws.Config,
		CI:        req.CI,
		StartedAt: s.now(),
		Modules:   make([]domain.ModuleResult, len(ws.Policies)),
	}
	if s.git != nil && s.git.IsGitRepo(ws.Root) {
		if hash, err := s.git.CommitHash(ws.Root); err == nil {
			summary.Commit = hash
		}
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	logger := s.logger.With(zap.String("run_id", summary.RunID))
	logger.Info("run started",
		zap.Int("modules", len(ws.Policies)),
		zap.Bool("ci", req.CI),
		zap.Int("jobs", jobs))

	cov := ws.CoveragePolicy()

	// Modules never cancel each other, so the group carries no context.
	var g errgroup.Group
	g.SetLimit(jobs)
	for i := range ws.Policies {
		m, p := ws.Modules[i], ws.Policies[i]
		g.Go(func() error {
			mr := &moduleRun{
				engines:   engines,
				module:    m,
				policy:    p,
				gate:      ws.GatePolicy(p, req.CI),
				coverage:  cov,
				gatesOnly: req.GatesOnly,
				logger:    logger.With(zap.String("module", p.Module)),
			}
			summary.Modules[i] = mr.run(ctx)
			return nil
		})
	}
	_ = g.Wait()

	summary.Duration = s.now().Sub(summary.StartedAt)
	logger.Info("run finished",
		zap.Bool("passed", summary.Passed()),
		zap.Duration("duration", summary.Duration))

	if s.history != nil && !req.GatesOnly {
		if err := s.history.Save(ws.Root, summary.Entry()); err != nil {
			logger.Warn("saving run history", zap.Error(err))
		}
	}
	return summary, nil
}

// moduleRun drives one module through its gate run. It is owned by a single
// goroutine.
type moduleRun struct {
	engines   Engines
	module    domain.Module
	policy    domain.ModulePolicy
	gate      domain.QualityGatePolicy
	coverage  domain.CoverageReportPolicy
	gatesOnly bool
	logger    *zap.Logger

	state  *domain.GateRun
	result domain.ModuleResult
}

func (r *moduleRun) run(ctx context.Context) domain.ModuleResult {
	r.state = domain.NewGateRun(r.policy.Module, r.gate)
	r.result = domain.ModuleResult{Module: r.policy.Module}

	err := r.stages(ctx)
	r.result.Stages = r.state.History()
	switch {
	case err == nil:
		if r.result.Outcome == "" {
			r.result.Outcome = domain.OutcomePassed
		}
	case ctx.Err() != nil:
		r.result.Outcome = domain.OutcomeAborted
		r.result.Error = ctx.Err().Error()
	default:
		var gateErr *domain.GateError
		if errors.As(err, &gateErr) {
			r.result.Outcome = domain.OutcomeGateFailed
			r.result.FailedAt = gateErr.Check
		} else {
			r.result.Outcome = domain.OutcomeError
			r.result.Error = err.Error()
		}
	}
	r.logger.Info("module finished",
		zap.String("outcome", string(r.result.Outcome)),
		zap.String("stage", string(r.state.Current())))
	return r.result
}

func (r *moduleRun) stages(ctx context.Context) error {
	if err := r.lint(ctx); err != nil {
		return r.fail(err)
	}
	if err := r.license(ctx); err != nil {
		return r.fail(err)
	}
	if err := r.advance(ctx, domain.StageReadyForTest); err != nil {
		return r.fail(err)
	}
	if r.gatesOnly {
		return nil
	}

	tests, err := r.engines.Tests.Run(ctx, r.policy)
	if err != nil {
		return r.fail(fmt.Errorf("running tests: %w", err))
	}
	r.result.Tests = tests
	if err := r.state.Advance(domain.StageTestRun); err != nil {
		return err
	}

	// The report follows every test run, failed or not, and nothing else.
	report, err := r.engines.Coverage.Generate(ctx, tests, r.coverage)
	if err != nil {
		return fmt.Errorf("generating report: %w", err)
	}
	r.result.Report = report
	if err := r.state.Advance(domain.StageReportGenerated); err != nil {
		return err
	}

	if tests.Failed() {
		r.result.Outcome = domain.OutcomeTestsFailed
	}
	return nil
}

func (r *moduleRun) lint(ctx context.Context) error {
	for _, check := range r.gate.LintChecks() {
		if err := ctx.Err(); err != nil {
			return err
		}
		set, _ := r.module.SourceSet(check.SourceSetName())
		vs, err := r.engines.Linter.Lint(ctx, r.module, set)
		if err != nil {
			return fmt.Errorf("%s: %w", check, err)
		}
		r.result.Violations = append(r.result.Violations, vs...)
		if errs := domain.Errors(vs); len(errs) > 0 {
			return &domain.GateError{Module: r.policy.Module, Check: check, Violations: errs}
		}
		r.logger.Debug("check passed", zap.String("check", string(check)), zap.Int("findings", len(vs)))
	}
	return r.advance(ctx, domain.StageLintChecked)
}

func (r *moduleRun) license(ctx context.Context) error {
	if r.gate.RunLicenseAutoFix && r.hasCheck(domain.CheckLicenseFormat) {
		fixed, err := r.engines.Headers.Format(r.allFiles())
		if err != nil {
			return fmt.Errorf("%s: %w", domain.CheckLicenseFormat, err)
		}
		r.result.Fixed = fixed
		if len(fixed) > 0 {
			r.logger.Info("license headers rewritten", zap.Int("files", len(fixed)))
		}
		if err := r.advance(ctx, domain.StageAutoFixed); err != nil {
			return err
		}
	}

	for _, check := range r.gate.LicenseChecks() {
		if err := ctx.Err(); err != nil {
			return err
		}
		set, _ := r.module.SourceSet(check.SourceSetName())
		vs, err := r.engines.Headers.Check(set.Files)
		if err != nil {
			return fmt.Errorf("%s: %w", check, err)
		}
		if len(vs) > 0 {
			r.result.Violations = append(r.result.Violations, vs...)
			return &domain.GateError{Module: r.policy.Module, Check: check, Violations: vs}
		}
	}
	return r.advance(ctx, domain.StageLicenseVerified)
}

func (r *moduleRun) advance(ctx context.Context, to domain.Stage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.state.Advance(to)
}

// fail moves the run to the failed stage. An aborted run stays where it
// halted.
func (r *moduleRun) fail(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if ferr := r.state.Fail(); ferr != nil {
		r.logger.Debug("cannot mark failed", zap.Error(ferr))
	}
	return err
}

func (r *moduleRun) hasCheck(tag domain.CheckTag) bool {
	for _, c := range r.gate.Checks {
		if c == tag {
			return true
		}
	}
	return false
}

func (r *moduleRun) allFiles() []string {
	var files []string
	for _, set := range r.module.SourceSets {
		files = append(files, set.Files...)
	}
	return files
}
