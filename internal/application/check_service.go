package application

import (
	"context"

	"github.com/openkraft/buildgate/internal/domain"
)

// CheckService runs the quality gates without tests, for a quick pre-commit
// pass. Nothing is recorded in history.
type CheckService struct {
	pipeline *PipelineService
}

func NewCheckService(pipeline *PipelineService) *CheckService {
	return &CheckService{pipeline: pipeline}
}

// Check runs lint and license verification for the selected modules.
func (s *CheckService) Check(ctx context.Context, req RunRequest) (*domain.RunSummary, error) {
	req.GatesOnly = true
	return s.pipeline.Run(ctx, req)
}
