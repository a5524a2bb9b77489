// Package backup uploads a local save file to TapTap cloud save on a cron
// schedule.
//
// The first upload creates the save unless a uuid was configured. The
// uuid is learned from the CloudSaveCreate response, so the event stream
// must be fed to Job.Observe; later uploads update that save in place.
package backup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/roach88/tapsdk"
	"github.com/roach88/tapsdk/internal/seq"
)

// Uploader is the part of tapsdk.CloudSave a Job uses.
type Uploader interface {
	Create(requestID int64, req tapsdk.CreateRequest) error
	Update(requestID int64, req tapsdk.UpdateRequest) error
}

// Settings describe the save being backed up.
type Settings struct {
	// UUID of an existing save. Empty means create one first.
	UUID      string
	Name      string
	Summary   string
	Extra     string
	DataFile  string
	CoverFile string
}

// Job performs one upload per Upload call.
//
// Thread-safety: Upload and Observe may be called from different
// goroutines.
type Job struct {
	saves    Uploader
	ids      seq.Source
	settings Settings
	logger   *zap.Logger
	started  time.Time
	now      func() time.Time

	mu       sync.Mutex
	uuid     string
	creating int64 // request id of the outstanding create, 0 if none
}

// Option configures a Job.
type Option func(*Job)

// WithLogger sets the job logger.
func WithLogger(l *zap.Logger) Option {
	return func(j *Job) { j.logger = l }
}

// WithNow replaces the clock used to compute playtime.
func WithNow(now func() time.Time) Option {
	return func(j *Job) { j.now = now }
}

// NewJob creates a job issuing request ids from ids.
func NewJob(saves Uploader, ids seq.Source, settings Settings, opts ...Option) *Job {
	j := &Job{
		saves:    saves,
		ids:      ids,
		settings: settings,
		logger:   zap.NewNop(),
		now:      time.Now,
		uuid:     settings.UUID,
	}
	for _, opt := range opts {
		opt(j)
	}
	j.started = j.now()
	return j
}

// UUID returns the save being updated, or "" before the first create
// completed.
func (j *Job) UUID() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.uuid
}

// Upload issues a create or an update. While a create is outstanding no
// further request is sent, so a slow response never produces two saves.
func (j *Job) Upload() error {
	j.mu.Lock()
	uuid, creating := j.uuid, j.creating
	j.mu.Unlock()

	if uuid == "" && creating != 0 {
		j.logger.Info("backup skipped, create still pending", zap.Int64("request_id", creating))
		return nil
	}

	req := tapsdk.CreateRequest{
		Name:          j.settings.Name,
		Summary:       j.settings.Summary,
		Extra:         j.settings.Extra,
		Playtime:      uint32(j.now().Sub(j.started) / time.Second),
		DataFilePath:  j.settings.DataFile,
		CoverFilePath: j.settings.CoverFile,
	}
	id := j.ids.Next()

	if uuid != "" {
		if err := j.saves.Update(id, tapsdk.UpdateRequest{UUID: uuid, CreateRequest: req}); err != nil {
			return fmt.Errorf("update %s: %w", uuid, err)
		}
		j.logger.Info("backup update queued", zap.Int64("request_id", id), zap.String("uuid", uuid))
		return nil
	}

	j.mu.Lock()
	j.creating = id
	j.mu.Unlock()
	if err := j.saves.Create(id, req); err != nil {
		j.mu.Lock()
		j.creating = 0
		j.mu.Unlock()
		return fmt.Errorf("create: %w", err)
	}
	j.logger.Info("backup create queued", zap.Int64("request_id", id))
	return nil
}

// Observe consumes responses to the job's own requests and ignores
// everything else.
func (j *Job) Observe(ev tapsdk.Event) {
	switch ev := ev.(type) {
	case tapsdk.CloudSaveCreate:
		j.mu.Lock()
		defer j.mu.Unlock()
		if ev.RequestID != j.creating || j.creating == 0 {
			return
		}
		j.creating = 0
		if ev.Error != nil {
			j.logger.Warn("backup create failed", zap.Int64("request_id", ev.RequestID), zap.Error(ev.Error))
			return
		}
		if ev.Save != nil {
			j.uuid = ev.Save.UUID
			j.logger.Info("backup created", zap.String("uuid", j.uuid))
		}
	case tapsdk.CloudSaveUpdate:
		if ev.Error != nil {
			j.logger.Warn("backup update failed", zap.Int64("request_id", ev.RequestID), zap.Error(ev.Error))
		}
	}
}

// Parser accepts five-field expressions and descriptors like "@every 1h".
var Parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Schedule runs j on spec until ctx is cancelled, then waits for a
// running upload to finish. It returns ctx.Err().
func Schedule(ctx context.Context, spec string, j *Job) error {
	c := cron.New(
		cron.WithParser(Parser),
		cron.WithLogger(cronLogger{j.logger.Sugar()}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{j.logger.Sugar()})),
	)
	if _, err := c.AddFunc(spec, func() {
		if err := j.Upload(); err != nil {
			j.logger.Error("backup failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
