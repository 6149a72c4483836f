package main

import (
	"fmt"
	"net/http"

	"wordclock.ai/internal/clock"
	"wordclock.ai/internal/persistence/r2s3"
)

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// writeMetrics writes the minimal Prometheus exposition format.
func writeMetrics(rw http.ResponseWriter, r *clock.Runner, idx runtimeIndex, mirror *r2s3.Mirror) {
	rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

	d := r.Display()
	h, m, ok := d.Time()
	f := d.Frame()
	s := d.Settings()
	st := r.Stats()

	fmt.Fprintf(rw, "# HELP wordclock_time_set Whether the plate has been rendered at least once.\n")
	fmt.Fprintf(rw, "# TYPE wordclock_time_set gauge\n")
	fmt.Fprintf(rw, "wordclock_time_set %d\n", b2i(ok))

	fmt.Fprintf(rw, "# HELP wordclock_hour Hour shown on the plate (0..11).\n")
	fmt.Fprintf(rw, "# TYPE wordclock_hour gauge\n")
	fmt.Fprintf(rw, "wordclock_hour %d\n", h)

	fmt.Fprintf(rw, "# HELP wordclock_minute Minute shown on the plate.\n")
	fmt.Fprintf(rw, "# TYPE wordclock_minute gauge\n")
	fmt.Fprintf(rw, "wordclock_minute %d\n", m)

	fmt.Fprintf(rw, "# HELP wordclock_lit_cells Lit letters on the plate.\n")
	fmt.Fprintf(rw, "# TYPE wordclock_lit_cells gauge\n")
	fmt.Fprintf(rw, "wordclock_lit_cells %d\n", f.Lit())

	fmt.Fprintf(rw, "# HELP wordclock_active Whether the overlay is painted.\n")
	fmt.Fprintf(rw, "# TYPE wordclock_active gauge\n")
	fmt.Fprintf(rw, "wordclock_active{word_color=%q} %d\n", s.Color.Hex(), b2i(s.Active))

	fmt.Fprintf(rw, "# HELP wordclock_observers Connected observer sessions.\n")
	fmt.Fprintf(rw, "# TYPE wordclock_observers gauge\n")
	fmt.Fprintf(rw, "wordclock_observers %d\n", st.Observers)

	fmt.Fprintf(rw, "# HELP wordclock_frames_rendered_total Plate rebuilds.\n")
	fmt.Fprintf(rw, "# TYPE wordclock_frames_rendered_total counter\n")
	fmt.Fprintf(rw, "wordclock_frames_rendered_total %d\n", st.FramesRendered)

	fmt.Fprintf(rw, "# HELP wordclock_frames_sent_total FRAME messages queued to observers.\n")
	fmt.Fprintf(rw, "# TYPE wordclock_frames_sent_total counter\n")
	fmt.Fprintf(rw, "wordclock_frames_sent_total %d\n", st.FramesSent)

	fmt.Fprintf(rw, "# HELP wordclock_frames_dropped_total FRAME messages dropped for slow observers.\n")
	fmt.Fprintf(rw, "# TYPE wordclock_frames_dropped_total counter\n")
	fmt.Fprintf(rw, "wordclock_frames_dropped_total %d\n", st.FramesDropped)

	fmt.Fprintf(rw, "# HELP wordclock_minute_log_errors_total Failed minute log writes.\n")
	fmt.Fprintf(rw, "# TYPE wordclock_minute_log_errors_total counter\n")
	fmt.Fprintf(rw, "wordclock_minute_log_errors_total %d\n", st.LogErrors)

	if mirror != nil {
		writeMirrorMetrics(rw, mirror.Stats())
	}

	if idx == nil {
		return
	}
	is := idx.Stats()
	fmt.Fprintf(rw, "# HELP wordclock_index_queue_depth Minute index writer backlog.\n")
	fmt.Fprintf(rw, "# TYPE wordclock_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "wordclock_index_queue_depth %d\n", is.QueueDepth)

	fmt.Fprintf(rw, "# HELP wordclock_index_queue_capacity Minute index writer capacity.\n")
	fmt.Fprintf(rw, "# TYPE wordclock_index_queue_capacity gauge\n")
	fmt.Fprintf(rw, "wordclock_index_queue_capacity %d\n", is.QueueCapacity)

	fmt.Fprintf(rw, "# HELP wordclock_index_dropped_total Minutes dropped because the index writer was behind.\n")
	fmt.Fprintf(rw, "# TYPE wordclock_index_dropped_total counter\n")
	fmt.Fprintf(rw, "wordclock_index_dropped_total %d\n", is.DropMinuteTotal)
}

func writeMirrorMetrics(rw http.ResponseWriter, s r2s3.MirrorStats) {
	fmt.Fprintf(rw, "# HELP wordclock_r2_mirror_queue_depth Minute log files waiting for upload.\n")
	fmt.Fprintf(rw, "# TYPE wordclock_r2_mirror_queue_depth gauge\n")
	fmt.Fprintf(rw, "wordclock_r2_mirror_queue_depth %d\n", s.QueueDepth)

	fmt.Fprintf(rw, "# HELP wordclock_r2_mirror_dropped_total Files not queued because the queue was full.\n")
	fmt.Fprintf(rw, "# TYPE wordclock_r2_mirror_dropped_total counter\n")
	fmt.Fprintf(rw, "wordclock_r2_mirror_dropped_total %d\n", s.DroppedTotal)

	fmt.Fprintf(rw, "# HELP wordclock_r2_mirror_upload_success_total Uploaded files.\n")
	fmt.Fprintf(rw, "# TYPE wordclock_r2_mirror_upload_success_total counter\n")
	fmt.Fprintf(rw, "wordclock_r2_mirror_upload_success_total %d\n", s.UploadSuccessTotal)

	fmt.Fprintf(rw, "# HELP wordclock_r2_mirror_upload_fail_total Files that failed every upload attempt.\n")
	fmt.Fprintf(rw, "# TYPE wordclock_r2_mirror_upload_fail_total counter\n")
	fmt.Fprintf(rw, "wordclock_r2_mirror_upload_fail_total %d\n", s.UploadFailTotal)

	fmt.Fprintf(rw, "# HELP wordclock_r2_mirror_last_success_unix Time of the last successful upload.\n")
	fmt.Fprintf(rw, "# TYPE wordclock_r2_mirror_last_success_unix gauge\n")
	fmt.Fprintf(rw, "wordclock_r2_mirror_last_success_unix %d\n", s.LastSuccessUnix)
}
