package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"wordclock.ai/internal/persistence/r2s3"
)

// buildMinuteMirror returns nil unless WORDCLOCK_R2_MIRROR is set. Closed
// hourly minute logs are then uploaded to the configured bucket.
func buildMinuteMirror(dataDir string, logger *log.Logger) (*r2s3.Mirror, error) {
	if !envBool("WORDCLOCK_R2_MIRROR", false) {
		return nil, nil
	}
	opts := r2s3.Options{
		Endpoint:        os.Getenv("WORDCLOCK_R2_ENDPOINT"),
		Bucket:          os.Getenv("WORDCLOCK_R2_BUCKET"),
		Region:          os.Getenv("WORDCLOCK_R2_REGION"),
		AccessKeyID:     os.Getenv("WORDCLOCK_R2_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("WORDCLOCK_R2_SECRET_ACCESS_KEY"),
	}
	client, err := r2s3.New(opts)
	if err != nil {
		return nil, fmt.Errorf("WORDCLOCK_R2_MIRROR=true: %w", err)
	}
	prefix := strings.TrimSpace(os.Getenv("WORDCLOCK_R2_PREFIX"))
	return r2s3.NewMirror(client, dataDir, prefix, envInt("WORDCLOCK_R2_UPLOAD_WORKERS", 1), logger), nil
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
