package domain

import "strings"

// Channel is the publication destination category.
type Channel string

const (
	ChannelSnapshot Channel = "snapshot"
	ChannelRelease  Channel = "release"
)

// SnapshotSuffix marks a version as a snapshot.
const SnapshotSuffix = "-SNAPSHOT"

// ResolveChannel returns Release unless the version ends with "-SNAPSHOT".
func ResolveChannel(version string) Channel {
	if strings.HasSuffix(version, SnapshotSuffix) {
		return ChannelSnapshot
	}
	return ChannelRelease
}

// Endpoints are the two fixed repository URLs, one per channel.
type Endpoints struct {
	Name     string `json:"name"     yaml:"name"`
	Snapshot string `json:"snapshot" yaml:"snapshot" validate:"omitempty,url"`
	Release  string `json:"release"  yaml:"release"  validate:"omitempty,url"`
}

// DefaultEndpoints returns the proxi-nexus repositories.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Name:     "proxi-nexus",
		Snapshot: "https://nexus.mardroemmar.dev/repository/maven-snapshots/",
		Release:  "https://nexus.mardroemmar.dev/repository/maven-releases/",
	}
}

// URLFor selects the endpoint for a channel.
func (e Endpoints) URLFor(c Channel) string {
	if c == ChannelSnapshot {
		return e.Snapshot
	}
	return e.Release
}

// Credentials authenticate an upload. A nil *Credentials means anonymous.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"-"`
}

// CredentialProperties name the external properties holding credentials.
type CredentialProperties struct {
	User     string `yaml:"user"     json:"user"`
	Password string `yaml:"password" json:"password"`
}

// DefaultCredentialProperties returns proxiUser / proxiPassword.
func DefaultCredentialProperties() CredentialProperties {
	return CredentialProperties{User: "proxiUser", Password: "proxiPassword"}
}

// Resolve reads the credentials from props. When neither property is set the
// result is nil and the upload goes out anonymously.
func (c CredentialProperties) Resolve(props map[string]string) *Credentials {
	user, okU := props[c.User]
	pass, okP := props[c.Password]
	if !okU && !okP {
		return nil
	}
	return &Credentials{Username: user, Password: pass}
}

// PublicationPolicy is evaluated at publish time from the workspace version.
type PublicationPolicy struct {
	Channel        Channel      `json:"channel"`
	RepositoryName string       `json:"repository_name"`
	DestinationURL string       `json:"destination_url"`
	Credentials    *Credentials `json:"credentials,omitempty"`
}

// NewPublicationPolicy derives the channel and destination for ws.
func NewPublicationPolicy(ws WorkspaceConfig, ep Endpoints, creds *Credentials) PublicationPolicy {
	ch := ws.Channel()
	return PublicationPolicy{
		Channel:        ch,
		RepositoryName: ep.Name,
		DestinationURL: ep.URLFor(ch),
		Credentials:    creds,
	}
}

// PublishFile is one file uploaded for an artifact.
type PublishFile struct {
	LocalPath  string `json:"local_path,omitempty"`
	Classifier string `json:"classifier,omitempty"`
	Extension  string `json:"extension"`
	Content    []byte `json:"-"`
}

// Artifact is everything published for one module.
type Artifact struct {
	Coordinates ArtifactCoordinates `json:"coordinates"`
	Files       []PublishFile       `json:"files"`
}

// PublicationPlan describes what a publish would upload, without network I/O.
type PublicationPlan struct {
	Module  string            `json:"module"`
	Policy  PublicationPolicy `json:"policy"`
	Targets []string          `json:"targets"`
}

// PublishResult is the per-module outcome of a publish.
type PublishResult struct {
	Module   string   `json:"module"`
	Channel  Channel  `json:"channel"`
	Uploaded []string `json:"uploaded"`
	Error    string   `json:"error,omitempty"`
}

// TargetURL is the Maven layout location of one artifact file under the
// policy's destination.
func (p PublicationPolicy) TargetURL(c ArtifactCoordinates, classifier, ext string) string {
	return strings.TrimSuffix(p.DestinationURL, "/") + "/" + c.RepositoryPath() + "/" + c.FileName(classifier, ext)
}

// MetadataURL is the artifact-level maven-metadata.xml listing every
// published version of c.
func (p PublicationPolicy) MetadataURL(c ArtifactCoordinates) string {
	return strings.TrimSuffix(p.DestinationURL, "/") + "/" + strings.ReplaceAll(c.Group, ".", "/") + "/" + c.ArtifactID + "/" + MetadataFileName
}

// MetadataFileName is the repository metadata file of an artifact.
const MetadataFileName = "maven-metadata.xml"
