package domain

import "time"

// TaskIDIngestion is the periodic full ingestion pass.
const TaskIDIngestion = "ingestion"

// HistoryRetention is the number of task results kept per task.
const HistoryRetention = 100

// DefaultIngestionInterval is how often serve runs a pass unless configured.
const DefaultIngestionInterval = time.Hour

// ScheduledTask is the persisted state of a periodic task. It survives
// restarts so an overdue pass runs as soon as serve starts.
type ScheduledTask struct {
	ID       string
	Name     string
	Interval time.Duration
	Enabled  bool

	LastRun     time.Time
	NextRun     time.Time
	LastSuccess time.Time

	// LastError is the error of the latest run, empty after a success.
	LastError string
}

// Due reports whether the task should run at now.
func (t *ScheduledTask) Due(now time.Time) bool {
	return t.Enabled && !now.Before(t.NextRun)
}

// TaskResult is one entry of a task's run history.
type TaskResult struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string

	// Produced is the number of records created or merged by the pass.
	Produced int
}

// Duration returns how long the run took.
func (r TaskResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// SchedulerConfig is the [scheduler] section of the config file.
type SchedulerConfig struct {
	Enabled     bool
	TaskConfigs map[string]TaskConfig
}

// TaskConfig configures one task.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Task returns the configuration of taskID, or the zero TaskConfig.
func (c *SchedulerConfig) Task(taskID string) TaskConfig {
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig runs ingestion hourly.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]TaskConfig{
			TaskIDIngestion: {Enabled: true, Interval: DefaultIngestionInterval},
		},
	}
}
