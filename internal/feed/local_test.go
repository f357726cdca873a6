package feed

import (
	"context"
	"errors"
	"testing"

	"cpubars/internal/models"
)

func TestLocalSourceFeedsHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	readings := [][]float64{{10, 20}, {30, 40}}
	calls := 0
	src := &LocalSource{
		Logger: testLogger(t),
		Sample: func(context.Context) ([]float64, error) {
			v := readings[calls%len(readings)]
			calls++
			return v, nil
		},
	}

	var got []models.SampleSet
	err := src.Run(ctx, func(s models.SampleSet) error {
		got = append(got, s)
		if len(got) == 2 {
			cancel()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected nil after cancel, got %v", err)
	}
	if len(got) != 2 || got[1][0] != 30 {
		t.Fatalf("unexpected sample sets: %v", got)
	}
}

func TestLocalSourceSampleError(t *testing.T) {
	boom := errors.New("no /proc")
	src := &LocalSource{
		Logger: testLogger(t),
		Sample: func(context.Context) ([]float64, error) { return nil, boom },
	}
	if err := src.Run(context.Background(), nil); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped sample error, got %v", err)
	}
}
