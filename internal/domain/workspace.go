package domain

import (
	"strings"

	"github.com/fatih/camelcase"
)

// WorkspaceConfig is the identity shared by every module of a workspace.
// It is built once per run and handed to module setup by value.
type WorkspaceConfig struct {
	GroupID string `json:"group_id"`
	Version string `json:"version"`
}

// NewWorkspaceConfig validates and returns the workspace identity.
func NewWorkspaceConfig(groupID, version string) (WorkspaceConfig, error) {
	groupID = strings.TrimSpace(groupID)
	version = strings.TrimSpace(version)
	if groupID == "" {
		return WorkspaceConfig{}, configErrorf("workspace group must not be empty")
	}
	if version == "" {
		return WorkspaceConfig{}, configErrorf("workspace version must not be empty")
	}
	return WorkspaceConfig{GroupID: groupID, Version: version}, nil
}

// Channel resolves the publication channel for the workspace version.
func (w WorkspaceConfig) Channel() Channel { return ResolveChannel(w.Version) }

// Coordinates returns the artifact coordinates for a module.
func (w WorkspaceConfig) Coordinates(m Module) ArtifactCoordinates {
	id := m.ArtifactID
	if id == "" {
		id = ArtifactIDFor(m.Name)
	}
	return ArtifactCoordinates{Group: w.GroupID, ArtifactID: id, Version: w.Version}
}

// ArtifactCoordinates identify a published artifact.
type ArtifactCoordinates struct {
	Group      string `json:"group"`
	ArtifactID string `json:"artifact_id"`
	Version    string `json:"version"`
}

func (c ArtifactCoordinates) String() string {
	return c.Group + ":" + c.ArtifactID + ":" + c.Version
}

// FileName returns "<artifact>-<version>[-classifier].<ext>".
func (c ArtifactCoordinates) FileName(classifier, ext string) string {
	name := c.ArtifactID + "-" + c.Version
	if classifier != "" {
		name += "-" + classifier
	}
	return name + "." + ext
}

// RepositoryPath is the Maven layout directory for these coordinates.
func (c ArtifactCoordinates) RepositoryPath() string {
	return strings.ReplaceAll(c.Group, ".", "/") + "/" + c.ArtifactID + "/" + c.Version
}

// ArtifactIDFor turns a module name into a kebab-case artifact id:
// "MessageCore" -> "message-core", "moonshine_core" -> "moonshine-core".
func ArtifactIDFor(name string) string {
	var parts []string
	for _, field := range strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.' || r == '/'
	}) {
		for _, word := range camelcase.Split(field) {
			if word = strings.TrimSpace(word); word != "" {
				parts = append(parts, strings.ToLower(word))
			}
		}
	}
	return strings.Join(parts, "-")
}
