package events

import "time"

// NATS subjects for merge job lifecycle events.
const (
	SubjectJobStarted    = "gaze.merge.job.started"
	SubjectJobCompleted  = "gaze.merge.job.completed"
	SubjectFileCompleted = "gaze.merge.file.completed"
	SubjectFileFailed    = "gaze.merge.file.failed"
)

// JobStarted is emitted once when a batch run begins.
type JobStarted struct {
	JobID     string    `json:"job_id"`
	InputDir  string    `json:"input_dir"`
	Files     int       `json:"files"`
	Threshold float64   `json:"threshold"`
	Mode      string    `json:"mode"`
	Timestamp time.Time `json:"timestamp"`
}

// FileCompleted is emitted per input file successfully merged and written.
type FileCompleted struct {
	JobID       string    `json:"job_id"`
	File        string    `json:"file"`
	Runs        int       `json:"runs"`
	RowsMerged  int       `json:"rows_merged"`
	PassThrough int       `json:"pass_through"`
	Timestamp   time.Time `json:"timestamp"`
}

// FileFailed is emitted per input file that could not be processed.
type FileFailed struct {
	JobID     string    `json:"job_id"`
	File      string    `json:"file"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// JobCompleted is emitted once after the whole batch finishes.
type JobCompleted struct {
	JobID       string    `json:"job_id"`
	Files       int       `json:"files"`
	FilesFailed int       `json:"files_failed"`
	Runs        int       `json:"runs"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher publishes merge lifecycle events. A nil Publisher is valid and
// drops everything, so callers don't have to branch on configuration.
type Publisher struct {
	client *Client
}

func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) JobStarted(evt JobStarted) error {
	return p.publish(SubjectJobStarted, evt)
}

func (p *Publisher) JobCompleted(evt JobCompleted) error {
	return p.publish(SubjectJobCompleted, evt)
}

func (p *Publisher) FileCompleted(evt FileCompleted) error {
	return p.publish(SubjectFileCompleted, evt)
}

func (p *Publisher) FileFailed(evt FileFailed) error {
	return p.publish(SubjectFileFailed, evt)
}

func (p *Publisher) publish(subject string, evt any) error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Publish(subject, evt)
}
