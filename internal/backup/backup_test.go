package backup

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/perivale/fitquest/internal/database"
	"github.com/perivale/fitquest/internal/store"
)

// fakeS3 records uploaded and deleted objects in memory.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.objects[*input.Key] = data
	f.mu.Unlock()
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	data, ok := f.objects[*input.Key]
	f.mu.Unlock()
	if !ok {
		return nil, os.ErrNotExist
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(newByteReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	delete(f.objects, *input.Key)
	f.deleted = append(f.deleted, *input.Key)
	f.mu.Unlock()
	return &s3.DeleteObjectOutput{}, nil
}

type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(data []byte) *byteReader { return &byteReader{data: data} }

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

func setupManager(t *testing.T) (*Manager, *fakeS3, *store.BackupStore) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "fitquest.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	bs := store.NewBackupStore(db)
	m := NewManager(Config{
		S3:         S3Config{Bucket: "test", AccessKey: "k", SecretKey: "s", Region: "auto"},
		DBPath:     dbPath,
		Passphrase: "hunter2",
		Interval:   time.Hour,
		Keep:       2,
	}, db, bs, slog.New(slog.DiscardHandler))

	fake := newFakeS3()
	m.client = fake
	return m, fake, bs
}

func TestRunNowUploadsAndRecords(t *testing.T) {
	m, fake, bs := setupManager(t)

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	record, err := bs.GetByID(id)
	if err != nil || record == nil {
		t.Fatalf("backup record not found: %v", err)
	}
	if record.SizeBytes <= 0 {
		t.Errorf("size = %d, want > 0", record.SizeBytes)
	}
	if len(record.SHA256) != 64 {
		t.Errorf("sha256 = %q, want 64 hex chars", record.SHA256)
	}

	fake.mu.Lock()
	data, ok := fake.objects[record.ObjectKey]
	fake.mu.Unlock()
	if !ok {
		t.Fatalf("object %s not uploaded", record.ObjectKey)
	}
	if int64(len(data)) != record.SizeBytes {
		t.Errorf("uploaded %d bytes, record says %d", len(data), record.SizeBytes)
	}

	status := m.Status()
	if status.State != StateIdle || status.LastBackup == nil {
		t.Errorf("status = %+v, want idle with last backup set", status)
	}
}

func TestDownloadRoundTrip(t *testing.T) {
	m, _, _ := setupManager(t)

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	body, size, err := m.Download(context.Background(), id)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read download: %v", err)
	}
	if int64(len(data)) != size {
		t.Errorf("downloaded %d bytes, want %d", len(data), size)
	}
}

func TestCleanupKeepsNewest(t *testing.T) {
	m, fake, bs := setupManager(t)

	for i := 0; i < 4; i++ {
		if _, err := m.RunNow(context.Background()); err != nil {
			t.Fatalf("run backup %d: %v", i, err)
		}
		// Distinct created_at values so retention ordering is stable
		time.Sleep(5 * time.Millisecond)
	}

	if err := m.Cleanup(context.Background()); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	remaining, err := bs.List()
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(remaining) != 2 {
		t.Errorf("remaining records = %d, want 2", len(remaining))
	}

	fake.mu.Lock()
	deleted := len(fake.deleted)
	fake.mu.Unlock()
	if deleted != 2 {
		t.Errorf("deleted objects = %d, want 2", deleted)
	}
}

func TestManagerDisabledWithoutCredentials(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := NewManager(Config{DBPath: "/tmp/nope.db"}, db, store.NewBackupStore(db), slog.New(slog.DiscardHandler))
	if m.Enabled() {
		t.Error("manager without credentials should be disabled")
	}
	if _, err := m.RunNow(context.Background()); err == nil {
		t.Error("RunNow should fail when disabled")
	}
}
