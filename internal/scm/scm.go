package scm

import (
	"errors"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
)

const shortHashLen = 12

// Revision returns the abbreviated HEAD commit of the git repository containing root. A root
// outside any repository, or a repository without commits, yields "".
func Revision(root string) (string, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	hash := head.Hash().String()
	if len(hash) > shortHashLen {
		hash = hash[:shortHashLen]
	}
	return hash, nil
}
