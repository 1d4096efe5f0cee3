package models

// QuotaInfo is the backend-reported usage and limits for an account or team.
type QuotaInfo struct {
	// PromptCount and StorageBytes are the current usage.
	PromptCount  int   `json:"promptCount"`
	StorageBytes int64 `json:"storageBytes"`

	// MaxPrompts and MaxStorageBytes are the plan limits. Zero means
	// unlimited.
	MaxPrompts      int   `json:"maxPrompts"`
	MaxStorageBytes int64 `json:"maxStorageBytes"`
}

// QuotaWarning is surfaced when a sync pass would push usage past the
// warning threshold (90% of either limit) without exceeding it. The pass
// still proceeds.
type QuotaWarning struct {
	// Kind names the limit being approached: "prompts" or "storage".
	Kind string `json:"kind"`

	// UsagePercent is the prospective usage after the pass, in percent.
	UsagePercent float64 `json:"usagePercent"`
}
