package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/robfig/cron/v3"

	"github.com/villegasmiguelangel268-maker/listify/internal/model"
	"github.com/villegasmiguelangel268-maker/listify/internal/store"
)

var (
	ErrDisabled   = errors.New("backup not configured")
	ErrInProgress = errors.New("backup already running")
	ErrNoRecord   = errors.New("backup record not found")
)

const (
	DefaultPrefix   = "listify/"
	snapshotVersion = 1
	keyTimeFormat   = "2006-01-02T150405.000Z"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Target is the item list being backed up. *grocery.Manager satisfies it.
type Target interface {
	Items() []model.GroceryItem
	ReplaceAll(ctx context.Context, items []model.GroceryItem) error
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func (c S3Config) complete() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Config holds backup manager configuration.
type Config struct {
	S3         S3Config
	Passphrase string
	// Schedule is a standard five-field cron spec; empty disables scheduling.
	Schedule  string
	Retention time.Duration
	Prefix    string
}

// State represents the backup manager state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	LastKey    string     `json:"last_key,omitempty"`
	NextRun    *time.Time `json:"next_run,omitempty"`
	Error      string     `json:"error,omitempty"`
	InProgress bool       `json:"in_progress"`
}

// StatusCallback is called whenever the backup state changes.
type StatusCallback func(Status)

// Result describes one uploaded snapshot.
type Result struct {
	Key       string `json:"key"`
	ItemCount int    `json:"item_count"`
	SizeBytes int64  `json:"size_bytes"`
}

// Object is a snapshot stored in the bucket.
type Object struct {
	Key          string    `json:"key"`
	SizeBytes    int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

type snapshot struct {
	Version   int                 `json:"version"`
	CreatedAt time.Time           `json:"created_at"`
	Items     []model.GroceryItem `json:"items"`
}

// Manager uploads encrypted snapshots of the grocery list to S3-compatible
// storage and restores them.
type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	status   Status
	callback StatusCallback
	logger   *slog.Logger

	target  Target
	history *store.BackupStore
	client  s3Client

	cron    *cron.Cron
	entryID cron.EntryID
	now     func() time.Time
}

// NewManager creates a backup manager. history may be nil when the list is
// not persisted; uploads then go unrecorded locally.
func NewManager(cfg Config, target Target, history *store.BackupStore, callback StatusCallback, logger *slog.Logger) *Manager {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	m := &Manager{
		cfg:      cfg,
		target:   target,
		history:  history,
		callback: callback,
		logger:   logger,
		status:   Status{State: StateDisabled},
		now:      func() time.Time { return time.Now().UTC() },
	}

	if cfg.S3.complete() && cfg.Passphrase != "" {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether uploads are possible.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

// Start restores the last successful backup into the status and schedules
// recurring backups. Scheduling is skipped when backups are disabled or no
// schedule is configured.
func (m *Manager) Start(ctx context.Context) error {
	m.loadLastSuccess(ctx)

	m.mu.Lock()
	if m.client == nil || m.cfg.Schedule == "" {
		m.mu.Unlock()
		return nil
	}

	c := cron.New(cron.WithLocation(time.UTC))
	id, err := c.AddFunc(m.cfg.Schedule, func() { m.scheduled(ctx) })
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("parse backup schedule %q: %w", m.cfg.Schedule, err)
	}
	m.cron = c
	m.entryID = id
	c.Start()
	next := c.Entry(id).Next
	m.status.NextRun = &next
	m.mu.Unlock()

	m.logger.Info("backup schedule started", "schedule", m.cfg.Schedule, "next_run", next)
	return nil
}

// Stop halts the schedule and waits for a running scheduled backup.
func (m *Manager) Stop() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	m.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(fn func(*Status)) {
	m.mu.Lock()
	fn(&m.status)
	if m.cron != nil {
		next := m.cron.Entry(m.entryID).Next
		m.status.NextRun = &next
	}
	s := m.status
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(s)
	}
}

func (m *Manager) scheduled(ctx context.Context) {
	res, err := m.RunNow(ctx)
	if err != nil {
		m.logger.Error("scheduled backup failed", "error", err)
		return
	}
	m.logger.Info("scheduled backup complete", "key", res.Key, "items", res.ItemCount)

	if err := m.Cleanup(ctx); err != nil {
		m.logger.Warn("backup cleanup failed", "error", err)
	}
}

// begin marks a backup as running. Only one may run at a time.
func (m *Manager) begin() (s3Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil, ErrDisabled
	}
	if m.status.InProgress {
		return nil, ErrInProgress
	}
	m.status.State = StateRunning
	m.status.InProgress = true
	m.status.Error = ""
	return m.client, nil
}

func (m *Manager) fail(recordID int64, err error) error {
	if m.history != nil && recordID != 0 {
		m.history.UpdateStatus(context.Background(), recordID, model.BackupStatusFailed, err.Error())
	}
	m.setStatus(func(s *Status) {
		s.State = StateError
		s.InProgress = false
		s.Error = err.Error()
	})
	return err
}

// RunNow encrypts the current list and uploads it.
func (m *Manager) RunNow(ctx context.Context) (Result, error) {
	client, err := m.begin()
	if err != nil {
		return Result{}, err
	}
	m.setStatus(func(*Status) {})

	now := m.now()
	key := m.cfg.Prefix + "backup-" + now.Format(keyTimeFormat) + ".json.enc"

	var recordID int64
	if m.history != nil {
		record, err := m.history.Create(ctx, key)
		if err != nil {
			return Result{}, m.fail(0, fmt.Errorf("create backup record: %w", err))
		}
		recordID = record.ID
	}

	items := m.target.Items()
	plaintext, err := json.Marshal(snapshot{Version: snapshotVersion, CreatedAt: now, Items: items})
	if err != nil {
		return Result{}, m.fail(recordID, fmt.Errorf("marshal snapshot: %w", err))
	}

	sealed, err := Encrypt(plaintext, m.cfg.Passphrase)
	if err != nil {
		return Result{}, m.fail(recordID, fmt.Errorf("encrypt: %w", err))
	}

	if m.history != nil {
		m.history.UpdateStatus(ctx, recordID, model.BackupStatusUploading, "")
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.S3.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(sealed),
		ContentLength: aws.Int64(int64(len(sealed))),
	})
	if err != nil {
		return Result{}, m.fail(recordID, fmt.Errorf("upload to s3: %w", err))
	}

	if m.history != nil {
		m.history.UpdateCompleted(ctx, recordID, len(items), int64(len(sealed)))
	}

	m.setStatus(func(s *Status) {
		s.State = StateIdle
		s.InProgress = false
		s.LastBackup = &now
		s.LastKey = key
	})
	return Result{Key: key, ItemCount: len(items), SizeBytes: int64(len(sealed))}, nil
}

// Restore downloads the snapshot at key, decrypts it and replaces the whole
// list with its contents. It returns the number of restored items.
func (m *Manager) Restore(ctx context.Context, key string) (int, error) {
	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()
	if client == nil {
		return 0, ErrDisabled
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.S3.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	sealed, err := io.ReadAll(result.Body)
	if err != nil {
		return 0, fmt.Errorf("read backup: %w", err)
	}

	plaintext, err := Decrypt(sealed, m.cfg.Passphrase)
	if err != nil {
		return 0, err
	}

	var snap snapshot
	if err := json.Unmarshal(plaintext, &snap); err != nil {
		return 0, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return 0, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}

	if err := m.target.ReplaceAll(ctx, snap.Items); err != nil {
		return 0, fmt.Errorf("restore items: %w", err)
	}
	m.logger.Info("backup restored", "key", key, "items", len(snap.Items), "created_at", snap.CreatedAt)
	return len(snap.Items), nil
}

// List returns the snapshots in the bucket, newest first.
func (m *Manager) List(ctx context.Context) ([]Object, error) {
	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()
	if client == nil {
		return nil, ErrDisabled
	}

	var objects []Object
	p := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(m.cfg.S3.Bucket),
		Prefix: aws.String(m.cfg.Prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list backups: %w", err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, Object{
				Key:          aws.ToString(obj.Key),
				SizeBytes:    aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	sort.Slice(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})
	return objects, nil
}

// Cleanup deletes snapshots older than the retention period, along with
// their local history records. A zero retention keeps everything.
func (m *Manager) Cleanup(ctx context.Context) error {
	if m.cfg.Retention <= 0 {
		return nil
	}
	objects, err := m.List(ctx)
	if err != nil {
		return err
	}

	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()

	before := m.now().Add(-m.cfg.Retention)
	for _, obj := range objects {
		if !obj.LastModified.Before(before) {
			continue
		}
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(m.cfg.S3.Bucket),
			Key:    aws.String(obj.Key),
		}); err != nil {
			m.logger.Warn("delete old backup", "key", obj.Key, "error", err)
		}
	}

	if m.history != nil {
		if _, err := m.history.DeleteOlderThan(ctx, before); err != nil {
			return fmt.Errorf("delete old backup records: %w", err)
		}
	}
	return nil
}

// History returns locally recorded backups, newest first. It is empty when
// the manager has no history store.
func (m *Manager) History(ctx context.Context, limit int) ([]model.BackupRecord, error) {
	if m.history == nil {
		return nil, nil
	}
	return m.history.List(ctx, limit)
}

// Record returns one locally recorded backup. It reports ErrNoRecord when id
// is unknown or there is no history store.
func (m *Manager) Record(ctx context.Context, id int64) (*model.BackupRecord, error) {
	if m.history == nil {
		return nil, ErrNoRecord
	}
	b, err := m.history.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNoRecord
	}
	return b, nil
}

// loadLastSuccess seeds the status with the newest completed upload so it
// survives restarts.
func (m *Manager) loadLastSuccess(ctx context.Context) {
	if m.history == nil {
		return
	}
	latest, err := m.history.LatestCompleted(ctx)
	if err != nil {
		m.logger.Warn("read last backup", "error", err)
		return
	}
	if latest == nil || latest.CompletedAt == nil {
		return
	}
	m.setStatus(func(st *Status) {
		if st.LastBackup == nil {
			at := *latest.CompletedAt
			st.LastBackup = &at
			st.LastKey = latest.Key
		}
	})
}
