package cardsource

import (
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// CachePath returns the local checkout directory for a repository URL. The
// name hashes the URL so different sources never collide; base defaults to
// the user cache dir.
func CachePath(url, base string) (string, error) {
	if base == "" {
		userCache, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("resolve user cache dir: %w", err)
		}
		base = filepath.Join(userCache, "learning-matan")
	}
	h := crc32.ChecksumIEEE([]byte(url))
	return filepath.Join(base, fmt.Sprintf("cards-%08x", h)), nil
}

// Sync clones the repository into localPath if it doesn't exist there yet,
// or pulls the latest changes if it does.
func Sync(url, localPath string) error {
	_, err := os.Stat(localPath)
	switch {
	case os.IsNotExist(err):
		if _, err := git.PlainClone(localPath, false, &git.CloneOptions{URL: url}); err != nil {
			return fmt.Errorf("clone %s: %w", url, err)
		}
	case err == nil:
		repo, err := git.PlainOpen(localPath)
		if err != nil {
			return fmt.Errorf("open repo at %s: %w", localPath, err)
		}
		worktree, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("get worktree at %s: %w", localPath, err)
		}
		err = worktree.Pull(&git.PullOptions{RemoteName: "origin"})
		if err != nil && err != git.NoErrAlreadyUpToDate {
			return fmt.Errorf("pull %s: %w", localPath, err)
		}
	default:
		return fmt.Errorf("check path %s: %w", localPath, err)
	}
	return nil
}
