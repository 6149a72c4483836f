package r2s3

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// Worked example from the AWS SigV4 documentation.
func TestSigningKey_AWSExample(t *testing.T) {
	k := signingKey("wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY", "20120215", "us-east-1", "iam")
	if got := hex.EncodeToString(k); got != "f4780e2d9f65fa895f9c67b32ce1baf0b0d8a43505a000a1a9e090d414db404d" {
		t.Fatalf("signing key: %s", got)
	}
}

func TestNew_RequiresCredentials(t *testing.T) {
	if _, err := New(Options{Endpoint: "acc.r2.cloudflarestorage.com", Bucket: "b", AccessKeyID: "k"}); err == nil {
		t.Fatalf("expected error without secret")
	}
	c, err := New(Options{Endpoint: "acc.r2.cloudflarestorage.com/", Bucket: "b", AccessKeyID: "k", SecretAccessKey: "s"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if c.endpoint != "https://acc.r2.cloudflarestorage.com" || c.signer.region != "auto" {
		t.Fatalf("client: endpoint=%s region=%s", c.endpoint, c.signer.region)
	}
}

func TestClient_PutFile(t *testing.T) {
	body := []byte("minute log bytes")
	sum := sha256.Sum256(body)

	var gotPath, gotAuth, gotHash, gotDate string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotHash = r.Header.Get("x-amz-content-sha256")
		gotDate = r.Header.Get("x-amz-date")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := New(Options{Endpoint: srv.URL, Bucket: "clock", AccessKeyID: "AK", SecretAccessKey: "SK"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	c.signer.now = func() time.Time { return time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC) }

	p := filepath.Join(t.TempDir(), "minutes-2026-10-17-08.jsonl.zst")
	if err := os.WriteFile(p, body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := c.PutFile(context.Background(), "wc//minutes/minutes-2026-10-17-08.jsonl.zst", p); err != nil {
		t.Fatalf("put: %v", err)
	}
	if gotPath != "/clock/wc/minutes/minutes-2026-10-17-08.jsonl.zst" {
		t.Fatalf("path: %s", gotPath)
	}
	if string(gotBody) != string(body) {
		t.Fatalf("body: %q", gotBody)
	}
	if gotHash != hex.EncodeToString(sum[:]) || gotDate != "20261017T083000Z" {
		t.Fatalf("headers: hash=%s date=%s", gotHash, gotDate)
	}
	if !strings.HasPrefix(gotAuth, "AWS4-HMAC-SHA256 Credential=AK/20261017/auto/s3/aws4_request, SignedHeaders=host;x-amz-content-sha256;x-amz-date, Signature=") {
		t.Fatalf("auth: %s", gotAuth)
	}
}

func TestClient_PutFileReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "AccessDenied", http.StatusForbidden)
	}))
	defer srv.Close()

	c, _ := New(Options{Endpoint: srv.URL, Bucket: "clock", AccessKeyID: "AK", SecretAccessKey: "SK"})
	p := filepath.Join(t.TempDir(), "f")
	_ = os.WriteFile(p, []byte("x"), 0o644)
	err := c.PutFile(context.Background(), "f", p)
	if err == nil || !strings.Contains(err.Error(), "status=403") || !strings.Contains(err.Error(), "AccessDenied") {
		t.Fatalf("err: %v", err)
	}
	if err := c.PutFile(context.Background(), "/", p); err == nil {
		t.Fatalf("expected empty key error")
	}
}

func TestCleanKey(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"/":          "",
		"/a//b/":     "a/b",
		`a\b.zst`:    "a/b.zst",
		"../escape":  "escape",
		"x/./y/../z": "x/z",
	}
	for in, want := range cases {
		if got := cleanKey(in); got != want {
			t.Fatalf("cleanKey(%q)=%q want %q", in, got, want)
		}
	}
}

type fakeUploader struct {
	mu    sync.Mutex
	fails int
	keys  []string
	calls int
}

func (f *fakeUploader) PutFile(_ context.Context, key, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fails > 0 {
		f.fails--
		return errors.New("transient")
	}
	f.keys = append(f.keys, key)
	return nil
}

func TestMirror_UploadsWithRetry(t *testing.T) {
	dataDir := t.TempDir()
	p := filepath.Join(dataDir, "minutes", "minutes-2026-10-17-08.jsonl.zst")
	_ = os.MkdirAll(filepath.Dir(p), 0o755)
	_ = os.WriteFile(p, []byte("x"), 0o644)

	up := &fakeUploader{fails: 2}
	m := NewMirror(up, dataDir, "/wc/", 1, nil)
	m.backoff = func(int) time.Duration { return 0 }
	m.Enqueue(p)
	m.Close()

	if up.calls != 3 || len(up.keys) != 1 || up.keys[0] != "wc/minutes/minutes-2026-10-17-08.jsonl.zst" {
		t.Fatalf("uploader: calls=%d keys=%v", up.calls, up.keys)
	}
	st := m.Stats()
	if st.UploadSuccessTotal != 1 || st.UploadFailTotal != 0 || st.LastSuccessUnix == 0 || st.QueueCapacity != 256 {
		t.Fatalf("stats: %+v", st)
	}
}

func TestMirror_GivesUpAfterAttempts(t *testing.T) {
	dataDir := t.TempDir()
	p := filepath.Join(dataDir, "f")
	_ = os.WriteFile(p, []byte("x"), 0o644)

	up := &fakeUploader{fails: 100}
	m := NewMirror(up, dataDir, "", 1, nil)
	m.backoff = func(int) time.Duration { return 0 }
	m.Enqueue(p)
	m.Close()

	if up.calls != 4 {
		t.Fatalf("calls: %d", up.calls)
	}
	if st := m.Stats(); st.UploadFailTotal != 1 || st.UploadSuccessTotal != 0 {
		t.Fatalf("stats: %+v", st)
	}
}

func TestMirror_ObjectKey(t *testing.T) {
	dataDir := t.TempDir()
	m := &Mirror{dataDir: dataDir}
	if k, err := m.ObjectKey(filepath.Join(dataDir, "minutes", "a.zst")); err != nil || k != "minutes/a.zst" {
		t.Fatalf("key=%q err=%v", k, err)
	}
	if _, err := m.ObjectKey(filepath.Join(dataDir, "..", "elsewhere")); err == nil {
		t.Fatalf("expected outside error")
	}
	if _, err := m.ObjectKey(dataDir); err == nil {
		t.Fatalf("expected error for the data dir itself")
	}
}

func TestMirror_NilIsInert(t *testing.T) {
	var m *Mirror
	m.Enqueue("x")
	m.Close()
	if m.Stats() != (MirrorStats{}) {
		t.Fatalf("nil stats")
	}
}
