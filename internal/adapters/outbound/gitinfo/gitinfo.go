package gitinfo

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// Repo implements domain.GitInfo using go-git. The workspace may live in a
// subdirectory of the repository.
type Repo struct{}

func New() *Repo {
	return &Repo{}
}

func open(path string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
}

func (g *Repo) IsGitRepo(path string) bool {
	_, err := open(path)
	return err == nil
}

// CommitHash returns the full HEAD hash.
func (g *Repo) CommitHash(path string) (string, error) {
	repo, err := open(path)
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("reading HEAD: %w", err)
	}

	return head.Hash().String(), nil
}
