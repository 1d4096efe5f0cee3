package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/promptkeep/promptkeep/internal/adapter"
	"github.com/promptkeep/promptkeep/models"
)

// QuotaGuard runs the pre-flight capacity check. It asks the backend whether
// the plan's upload batch would fit the account limits BEFORE any mutation
// is issued, so a rejected batch has exactly zero remote side effects.
type QuotaGuard struct {
	transport adapter.Transport
}

func NewQuotaGuard(transport adapter.Transport) *QuotaGuard {
	return &QuotaGuard{transport: transport}
}

// Check computes the prospective cost of the plan (new remote records and
// payload bytes across all uploads) and asks the backend for headroom.
// Returns *adapter.QuotaExceededError when the batch must be rejected, or an
// optional near-limit warning when the pass may proceed.
func (q *QuotaGuard) Check(ctx context.Context, plan models.SyncPlan) (*models.QuotaWarning, error) {
	if len(plan.Uploads) == 0 {
		return nil, nil
	}

	var uploadBytes int64
	for _, u := range plan.Uploads {
		size, err := payloadSize(u.Prompt)
		if err != nil {
			return nil, fmt.Errorf("measure upload payload %s: %w", u.Prompt.ID, err)
		}
		uploadBytes += size
	}

	warning, err := q.transport.CheckQuota(ctx, plan.CreateCount(), uploadBytes)
	if err != nil {
		return nil, fmt.Errorf("quota pre-flight: %w", err)
	}
	return warning, nil
}

// payloadSize measures a prompt the way the backend accounts storage: the
// serialized JSON length.
func payloadSize(p models.Prompt) (int64, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return 0, err
	}
	return int64(len(raw)), nil
}
