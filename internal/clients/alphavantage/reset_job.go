package alphavantage

// ResetJob clears the daily request counter. Schedule it at midnight US
// Eastern, which is when Alpha Vantage resets its free tier quota.
type ResetJob struct {
	client *Client
}

// NewResetJob creates a reset job for the client.
func NewResetJob(client *Client) *ResetJob {
	return &ResetJob{client: client}
}

// Run resets the counter.
func (j *ResetJob) Run() error {
	j.client.ResetDailyCounter()
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *ResetJob) Name() string {
	return "alphavantage_quota_reset"
}
