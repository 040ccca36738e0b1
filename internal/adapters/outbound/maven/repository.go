package maven

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/openkraft/buildgate/internal/domain"
)

// maxErrorBody caps how much of a failed response is kept.
const maxErrorBody = 4096

// Repository implements domain.Repository against a Maven-layout HTTP
// repository such as Nexus.
type Repository struct {
	Client *http.Client
	Logger *zap.Logger
	Now    func() time.Time
}

func New(client *http.Client, logger *zap.Logger) *Repository {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{Client: client, Logger: logger, Now: time.Now}
}

// Upload PUTs every file of a, each followed by its .sha1 and .md5
// checksums, then merges the version into the artifact's maven-metadata.xml
// and PUTs that the same way. It returns the uploaded URLs and stops at the
// first failure.
func (r *Repository) Upload(ctx context.Context, p domain.PublicationPolicy, a domain.Artifact) ([]string, error) {
	if p.DestinationURL == "" {
		return nil, fmt.Errorf("%w: no repository url for channel %s", domain.ErrConfig, p.Channel)
	}

	var uploaded []string
	for _, f := range a.Files {
		content := f.Content
		if content == nil {
			data, err := os.ReadFile(f.LocalPath)
			if err != nil {
				return uploaded, fmt.Errorf("reading %s: %w", f.LocalPath, err)
			}
			content = data
		}

		target := p.TargetURL(a.Coordinates, f.Classifier, f.Extension)
		urls, err := r.putWithChecksums(ctx, p.Credentials, target, content)
		uploaded = append(uploaded, urls...)
		if err != nil {
			return uploaded, err
		}
		r.Logger.Info("uploaded",
			zap.String("artifact", a.Coordinates.String()),
			zap.String("channel", string(p.Channel)),
			zap.String("url", target))
	}

	urls, err := r.publishMetadata(ctx, p, a.Coordinates)
	uploaded = append(uploaded, urls...)
	return uploaded, err
}

func (r *Repository) publishMetadata(ctx context.Context, p domain.PublicationPolicy, c domain.ArtifactCoordinates) ([]string, error) {
	target := p.MetadataURL(c)
	m, err := r.fetchMetadata(ctx, p.Credentials, target)
	if err != nil {
		return nil, err
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	m.withVersion(c, p.Channel, now())
	body, err := m.encode()
	if err != nil {
		return nil, err
	}
	urls, err := r.putWithChecksums(ctx, p.Credentials, target, body)
	if err != nil {
		return urls, err
	}
	r.Logger.Debug("updated metadata",
		zap.String("artifact", c.String()),
		zap.Strings("versions", m.Versioning.Versions))
	return urls, nil
}

func (r *Repository) putWithChecksums(ctx context.Context, creds *domain.Credentials, target string, content []byte) ([]string, error) {
	sha := sha1.Sum(content)
	sum := md5.Sum(content)
	var uploaded []string
	for _, put := range []struct {
		url  string
		body []byte
	}{
		{target, content},
		{target + ".sha1", []byte(hex.EncodeToString(sha[:]))},
		{target + ".md5", []byte(hex.EncodeToString(sum[:]))},
	} {
		if err := r.put(ctx, creds, put.url, put.body); err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, put.url)
	}
	return uploaded, nil
}

func (r *Repository) put(ctx context.Context, creds *domain.Credentials, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return &domain.PublishError{URL: url, Err: err}
	}
	req.ContentLength = int64(len(body))
	req.Header.Set("Content-Type", "application/octet-stream")
	if creds != nil {
		req.SetBasicAuth(creds.Username, creds.Password)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return &domain.PublishError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.PublishError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(msg),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
