package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"cpubars/internal/models"
)

const maxSnapshotBytes = 1 << 20

// FetchSnapshot reads the current sample set once from /api/cpus on the page
// origin. A nil client uses http.DefaultClient.
func FetchSnapshot(ctx context.Context, client *http.Client, page string) (models.SampleSet, error) {
	target, err := SnapshotURL(page)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build snapshot request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch snapshot: %s returned %s", target, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes))
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return models.DecodeSampleSet(body)
}
