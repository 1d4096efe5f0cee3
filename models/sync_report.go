package models

// SyncReport summarizes what one executed sync pass did. It is what the
// caller renders to the user.
type SyncReport struct {
	Uploaded      int
	Downloaded    int
	DeletedLocal  int
	DeletedRemote int
	Forked        int
	Adopted       int

	// QuotaWarning is set when the pass crossed the near-limit threshold.
	QuotaWarning *QuotaWarning
}
