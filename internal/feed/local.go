package feed

import (
	"context"
	"fmt"
	"time"

	"cpubars/internal/models"
	"cpubars/internal/utils"

	"github.com/shirou/gopsutil/v4/cpu"
)

// localInterval is fixed; the sampling rate is not configurable.
const localInterval = time.Second

// LocalSource samples this host's per-core utilization instead of reading
// a remote feed.
type LocalSource struct {
	Logger *utils.Logger
	// Sample returns one reading per core. Defaults to gopsutil.
	Sample func(ctx context.Context) ([]float64, error)
}

// NewLocalSource samples with gopsutil.
func NewLocalSource(logger *utils.Logger) *LocalSource {
	return &LocalSource{Logger: logger, Sample: samplePerCore}
}

func samplePerCore(ctx context.Context) ([]float64, error) {
	return cpu.PercentWithContext(ctx, localInterval, true)
}

// Run samples until ctx is cancelled. Cancellation returns nil.
func (s *LocalSource) Run(ctx context.Context, handle Handler) error {
	sample := s.Sample
	if sample == nil {
		sample = samplePerCore
	}
	utils.Logf(s.Logger, "Sampling local CPUs every %s", localInterval)
	for {
		values, err := sample(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("sample local cpus: %w", err)
		}
		if handle != nil {
			if err := handle(models.SampleSet(values)); err != nil {
				utils.Logf(s.Logger, "Render failed: %v", err)
			}
		}
	}
}
