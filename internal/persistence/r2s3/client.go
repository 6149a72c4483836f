package r2s3

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
)

const (
	sigV4Algorithm = "AWS4-HMAC-SHA256"
	sigV4Service   = "s3"
	defaultRegion  = "auto"
)

// Options addresses one bucket on an S3-compatible store (Cloudflare R2,
// MinIO, AWS). Region defaults to "auto", which is what R2 expects.
type Options struct {
	Endpoint        string
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// Client uploads objects with path-style URLs and SigV4 signing.
type Client struct {
	endpoint   string
	bucket     string
	signer     signer
	httpClient *http.Client
}

func New(opts Options) (*Client, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	bucket := strings.TrimSpace(opts.Bucket)
	keyID := strings.TrimSpace(opts.AccessKeyID)
	secret := strings.TrimSpace(opts.SecretAccessKey)
	if endpoint == "" || bucket == "" || keyID == "" || secret == "" {
		return nil, fmt.Errorf("endpoint/bucket/access key/secret key are required")
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint: %s", endpoint)
	}
	region := strings.TrimSpace(opts.Region)
	if region == "" {
		region = defaultRegion
	}
	return &Client{
		endpoint: strings.TrimRight(u.String(), "/"),
		bucket:   bucket,
		signer: signer{
			keyID:  keyID,
			secret: secret,
			region: region,
			now:    time.Now,
		},
		httpClient: &http.Client{Timeout: time.Minute},
	}, nil
}

// PutFile uploads the file at localPath as objectKey.
func (c *Client) PutFile(ctx context.Context, objectKey, localPath string) error {
	key := cleanKey(objectKey)
	if key == "" {
		return fmt.Errorf("invalid object key %q", objectKey)
	}
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return err
	}
	if st.IsDir() {
		return fmt.Errorf("%s is a directory", localPath)
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}
	payloadHash := hex.EncodeToString(h.Sum(nil))
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	uri := "/" + c.bucket + "/" + escapeKey(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.endpoint+uri, f)
	if err != nil {
		return err
	}
	req.ContentLength = st.Size()
	req.Header.Set("Content-Type", "application/zstd")
	c.signer.sign(req, uri, payloadHash)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 == 2 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
	return fmt.Errorf("put %s: status=%d body=%s", key, resp.StatusCode, strings.TrimSpace(string(body)))
}

// signer produces AWS Signature Version 4 headers for unsigned-query
// requests whose payload hash is already known.
type signer struct {
	keyID  string
	secret string
	region string
	now    func() time.Time
}

func (s signer) sign(req *http.Request, canonicalURI, payloadHash string) {
	t := s.now().UTC()
	amzDate := t.Format("20060102T150405Z")
	day := t.Format("20060102")

	host := req.URL.Host
	req.Header.Set("x-amz-content-sha256", payloadHash)
	req.Header.Set("x-amz-date", amzDate)

	const signedHeaders = "host;x-amz-content-sha256;x-amz-date"
	canonical := req.Method + "\n" +
		canonicalURI + "\n" +
		"\n" +
		"host:" + host + "\n" +
		"x-amz-content-sha256:" + payloadHash + "\n" +
		"x-amz-date:" + amzDate + "\n" +
		"\n" +
		signedHeaders + "\n" +
		payloadHash

	scope := day + "/" + s.region + "/" + sigV4Service + "/aws4_request"
	sum := sha256.Sum256([]byte(canonical))
	toSign := sigV4Algorithm + "\n" + amzDate + "\n" + scope + "\n" + hex.EncodeToString(sum[:])

	sig := hex.EncodeToString(hmacSHA256(signingKey(s.secret, day, s.region, sigV4Service), toSign))
	req.Header.Set("Authorization", fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		sigV4Algorithm, s.keyID, scope, signedHeaders, sig))
}

func signingKey(secret, day, region, service string) []byte {
	k := hmacSHA256([]byte("AWS4"+secret), day)
	k = hmacSHA256(k, region)
	k = hmacSHA256(k, service)
	return hmacSHA256(k, "aws4_request")
}

func hmacSHA256(key []byte, data string) []byte {
	m := hmac.New(sha256.New, key)
	_, _ = m.Write([]byte(data))
	return m.Sum(nil)
}

// cleanKey normalizes slashes and rejects keys that escape the bucket root.
func cleanKey(key string) string {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if key == "" {
		return ""
	}
	clean := strings.TrimPrefix(path.Clean("/"+key), "/")
	if clean == "" || clean == "." {
		return ""
	}
	return clean
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
