package maven

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/openkraft/buildgate/internal/domain"
)

const pomNamespace = "http://maven.apache.org/POM/4.0.0"

type pomProject struct {
	XMLName      xml.Name         `xml:"project"`
	Xmlns        string           `xml:"xmlns,attr"`
	ModelVersion string           `xml:"modelVersion"`
	GroupID      string           `xml:"groupId"`
	ArtifactID   string           `xml:"artifactId"`
	Version      string           `xml:"version"`
	Packaging    string           `xml:"packaging"`
	SCM          *pomSCM          `xml:"scm,omitempty"`
	Dependencies *pomDependencies `xml:"dependencies,omitempty"`
}

type pomSCM struct {
	Tag string `xml:"tag"`
}

type pomDependencies struct {
	Dependency []pomDependency `xml:"dependency"`
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version,omitempty"`
	Scope      string `xml:"scope,omitempty"`
}

// POM renders the project descriptor for a module. commit is recorded as the
// scm tag when known.
func POM(c domain.ArtifactCoordinates, deps []domain.Dependency, commit string) ([]byte, error) {
	p := pomProject{
		Xmlns:        pomNamespace,
		ModelVersion: "4.0.0",
		GroupID:      c.Group,
		ArtifactID:   c.ArtifactID,
		Version:      c.Version,
		Packaging:    "jar",
	}
	if commit != "" {
		p.SCM = &pomSCM{Tag: commit}
	}
	for _, d := range deps {
		parts := strings.Split(d.Coordinates, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("%w: dependency %q is not group:artifact[:version]", domain.ErrConfig, d.Coordinates)
		}
		pd := pomDependency{GroupID: parts[0], ArtifactID: parts[1], Scope: mavenScope(d.Scope)}
		if len(parts) == 3 {
			pd.Version = parts[2]
		}
		if p.Dependencies == nil {
			p.Dependencies = &pomDependencies{}
		}
		p.Dependencies.Dependency = append(p.Dependencies.Dependency, pd)
	}

	data, err := xml.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding pom: %w", err)
	}
	return append([]byte(xml.Header), append(data, '\n')...), nil
}

// mavenScope maps build scopes onto Maven's. Compile-only dependencies are
// not exported.
func mavenScope(s string) string {
	switch s {
	case "", "api", "compile":
		return "compile"
	case "implementation", "runtime":
		return "runtime"
	case "test", "testImplementation":
		return "test"
	case "compileOnly", "provided":
		return "provided"
	default:
		return s
	}
}

// POMWriter implements domain.Describer.
type POMWriter struct{}

func (POMWriter) Describe(p domain.ModulePolicy, commit string) ([]byte, error) {
	return POM(p.Coordinates, p.Dependencies, commit)
}
