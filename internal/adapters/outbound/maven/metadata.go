package maven

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/openkraft/buildgate/internal/domain"
)

// metadataTimestamp is the lastUpdated layout of maven-metadata.xml.
const metadataTimestamp = "20060102150405"

type metadata struct {
	XMLName      xml.Name   `xml:"metadata"`
	ModelVersion string     `xml:"modelVersion,attr,omitempty"`
	GroupID      string     `xml:"groupId"`
	ArtifactID   string     `xml:"artifactId"`
	Versioning   versioning `xml:"versioning"`
}

type versioning struct {
	Latest      string   `xml:"latest,omitempty"`
	Release     string   `xml:"release,omitempty"`
	Versions    []string `xml:"versions>version"`
	LastUpdated string   `xml:"lastUpdated,omitempty"`
}

// withVersion records c.Version as the latest version. Only the release
// channel moves the release marker.
func (m *metadata) withVersion(c domain.ArtifactCoordinates, ch domain.Channel, now time.Time) {
	m.GroupID = c.Group
	m.ArtifactID = c.ArtifactID
	if !slices.Contains(m.Versioning.Versions, c.Version) {
		m.Versioning.Versions = append(m.Versioning.Versions, c.Version)
	}
	m.Versioning.Latest = c.Version
	if ch == domain.ChannelRelease {
		m.Versioning.Release = c.Version
	}
	m.Versioning.LastUpdated = now.UTC().Format(metadataTimestamp)
}

func (m *metadata) encode() ([]byte, error) {
	out, err := xml.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding maven metadata: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// fetchMetadata reads the artifact's current maven-metadata.xml. A missing
// file yields empty metadata.
func (r *Repository) fetchMetadata(ctx context.Context, creds *domain.Credentials, url string) (*metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.PublishError{URL: url, Err: err}
	}
	if creds != nil {
		req.SetBasicAuth(creds.Username, creds.Password)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, &domain.PublishError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &metadata{ModelVersion: "1.1.0"}, nil
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.PublishError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(msg),
		}
	}

	var m metadata
	if err := xml.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, &domain.PublishError{URL: url, Err: fmt.Errorf("decoding maven metadata: %w", err)}
	}
	return &m, nil
}
