package main

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wordclock.ai/internal/clock"
	"wordclock.ai/internal/config"
	"wordclock.ai/internal/overlay"
	"wordclock.ai/internal/persistence/indexdb"
	"wordclock.ai/internal/persistence/r2s3"
)

type fixedSource struct{ t time.Time }

func (s fixedSource) Now() time.Time { return s.t }

func TestWriteMetrics(t *testing.T) {
	d := overlay.NewDisplay(overlay.DefaultSettings(), 0, 0)
	r := clock.New(clock.Config{}, fixedSource{t: time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)}, d, log.New(io.Discard, "", 0))
	r.Step()

	rec := httptest.NewRecorder()
	writeMetrics(rec, r, nil, nil)
	body := rec.Body.String()
	for _, want := range []string{
		"wordclock_time_set 1\n",
		"wordclock_hour 3\n",
		"wordclock_minute 0\n",
		"wordclock_lit_cells 12\n",
		`wordclock_active{word_color="05CBFF"} 1` + "\n",
		"wordclock_frames_rendered_total 1\n",
		"wordclock_observers 0\n",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "wordclock_index_") {
		t.Fatalf("index metrics without index")
	}
}

func TestLoadSettings_WritesBackIncompleteStore(t *testing.T) {
	dir := t.TempDir()
	logger := log.New(io.Discard, "", 0)
	idx, err := openRuntimeIndex(dir, false, logger)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer idx.Close()
	ctx := context.Background()

	fb := overlay.Settings{Active: false, Color: config.Color(0xABCDEF)}
	st, err := loadSettings(ctx, idx, fb, logger)
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if st != fb {
		t.Fatalf("settings: %+v", st)
	}
	got, complete, err := idx.LoadSettings(ctx, overlay.DefaultSettings())
	if err != nil || !complete || got != fb {
		t.Fatalf("store after write-back: %+v complete=%v err=%v", got, complete, err)
	}

	// A complete store wins over the config fallback.
	st, err = loadSettings(ctx, idx, overlay.DefaultSettings(), logger)
	if err != nil || st != fb {
		t.Fatalf("second load: %+v %v", st, err)
	}

	if _, ok := idx.(*indexdb.SQLiteIndex); !ok {
		t.Fatalf("expected sqlite backend, got %T", idx)
	}
}

func TestOpenRuntimeIndex_Disabled(t *testing.T) {
	idx, err := openRuntimeIndex(t.TempDir(), true, log.New(io.Discard, "", 0))
	if err != nil || idx != nil {
		t.Fatalf("disabled: %v %v", idx, err)
	}
	t.Setenv("WORDCLOCK_INDEX_BACKEND", "postgres")
	if _, err := openRuntimeIndex(t.TempDir(), false, log.New(io.Discard, "", 0)); err == nil {
		t.Fatalf("expected unsupported backend error")
	}
}

func TestPreviewHandler(t *testing.T) {
	d := overlay.NewDisplay(overlay.Settings{Active: true, Color: config.Color(0xFF0000)}, 1, 0)
	d.SetTime(3, 0)
	h := previewHandler(d, config.DisplayConfig{Width: 15, Height: 11})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/v1/preview.png?scale=2", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("status=%d type=%s", rec.Code, rec.Header().Get("Content-Type"))
	}
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 22 {
		t.Fatalf("bounds: %v", b)
	}
	// "E" of ES sits at plate (0,0), matrix (1,0).
	if r, g, _, _ := img.At(2, 0).RGBA(); r>>8 != 0xFF || g != 0 {
		t.Fatalf("lit pixel not red")
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); r != 0 {
		t.Fatalf("offset column should be dark")
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("WC_TEST_BOOL", "true")
	if !envBool("WC_TEST_BOOL", false) {
		t.Fatalf("envBool true")
	}
	t.Setenv("WC_TEST_BOOL", "maybe")
	if envBool("WC_TEST_BOOL", false) {
		t.Fatalf("envBool fallback")
	}
	t.Setenv("WC_TEST_STR", "  x.yaml ")
	if got := envString("WC_TEST_STR", "d"); got != "x.yaml" {
		t.Fatalf("envString: %q", got)
	}
	if got := envString("WC_TEST_UNSET", "d"); got != "d" {
		t.Fatalf("envString default: %q", got)
	}

	t.Setenv("DEPLOY_ENV", "production")
	if defaultEnableAdminHTTP() {
		t.Fatalf("admin http enabled in production")
	}
	t.Setenv("DEPLOY_ENV", "")
	if !defaultEnableAdminHTTP() {
		t.Fatalf("admin http disabled in dev")
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	if !isLoopbackRemote("127.0.0.1:80") || isLoopbackRemote("192.168.0.2:80") {
		t.Fatalf("loopback detection")
	}
}

func TestBuildMinuteMirror(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	t.Setenv("WORDCLOCK_R2_MIRROR", "")
	m, err := buildMinuteMirror(t.TempDir(), logger)
	if err != nil || m != nil {
		t.Fatalf("disabled mirror: m=%v err=%v", m, err)
	}

	t.Setenv("WORDCLOCK_R2_MIRROR", "true")
	t.Setenv("WORDCLOCK_R2_ENDPOINT", "acc.r2.cloudflarestorage.com")
	t.Setenv("WORDCLOCK_R2_BUCKET", "clock")
	t.Setenv("WORDCLOCK_R2_ACCESS_KEY_ID", "")
	t.Setenv("WORDCLOCK_R2_SECRET_ACCESS_KEY", "")
	if _, err := buildMinuteMirror(t.TempDir(), logger); err == nil {
		t.Fatalf("expected error without credentials")
	}

	t.Setenv("WORDCLOCK_R2_ACCESS_KEY_ID", "AK")
	t.Setenv("WORDCLOCK_R2_SECRET_ACCESS_KEY", "SK")
	m, err = buildMinuteMirror(t.TempDir(), logger)
	if err != nil || m == nil {
		t.Fatalf("enabled mirror: m=%v err=%v", m, err)
	}
	m.Close()
}

func TestEnvInt(t *testing.T) {
	t.Setenv("WORDCLOCK_TEST_INT", "")
	if envInt("WORDCLOCK_TEST_INT", 3) != 3 {
		t.Fatalf("default")
	}
	t.Setenv("WORDCLOCK_TEST_INT", "5")
	if envInt("WORDCLOCK_TEST_INT", 3) != 5 {
		t.Fatalf("parsed")
	}
	t.Setenv("WORDCLOCK_TEST_INT", "-2")
	if envInt("WORDCLOCK_TEST_INT", 3) != 3 {
		t.Fatalf("non-positive falls back")
	}
}

func TestWriteMirrorMetrics(t *testing.T) {
	rec := httptest.NewRecorder()
	writeMirrorMetrics(rec, r2s3.MirrorStats{QueueDepth: 2, UploadSuccessTotal: 7, UploadFailTotal: 1})
	body := rec.Body.String()
	for _, want := range []string{
		"wordclock_r2_mirror_queue_depth 2\n",
		"wordclock_r2_mirror_upload_success_total 7\n",
		"wordclock_r2_mirror_upload_fail_total 1\n",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q:\n%s", want, body)
		}
	}
}
