package source

import (
	"errors"
	"sync"

	git "github.com/go-git/go-git/v5"
	gitPlumbing "github.com/go-git/go-git/v5/plumbing"
	"github.com/hashicorp/go-hclog"
)

// New creates a new instance of RepoMngr
func New(l hclog.Logger) *RepoMngr {
	x := RepoMngr{
		l:  l.Named("git"),
		Mu: new(sync.Mutex),
	}
	return &x
}

// Bootstrap clones the project at Url into Path.  If Path already
// holds a repository it is opened instead.
func (r *RepoMngr) Bootstrap() error {
	if r.Path == "" {
		r.l.Warn("Error in repo manager, path must be set to bootstrap")
		return errors.New("repository path unset")
	}
	r.Mu.Lock()
	defer r.Mu.Unlock()

	repo, err := git.PlainOpen(r.Path)
	if err == nil {
		r.l.Debug("Using existing repository", "path", r.Path)
		r.repo = repo
		return nil
	}

	if r.Url == "" {
		r.l.Warn("Error in repo manager, url must be set to bootstrap")
		return errors.New("repository url unset")
	}
	r.l.Debug("Cloning repository", "path", r.Path, "url", r.Url)
	r.repo, err = git.PlainClone(r.Path, false, &git.CloneOptions{URL: r.Url})
	if err != nil {
		r.l.Trace("Error running PlainClone", "error", err)
		return err
	}
	return nil
}

// At returns the current HEAD hash.
func (r *RepoMngr) At() (string, error) {
	if r.repo == nil {
		return "", errors.New("repository not bootstrapped")
	}
	head, err := r.repo.Head()
	if err != nil {
		r.l.Trace("Error getting HEAD")
		return "", err
	}
	return head.Hash().String(), nil
}

// Checkout moves the worktree to a revision, which may be a hash, a
// branch or a tag.
func (r *RepoMngr) Checkout(rev string) error {
	if r.repo == nil {
		r.l.Warn("Error in repo manager, repo must be bootstrapped to checkout")
		return errors.New("repository not bootstrapped")
	}
	r.Mu.Lock()
	defer r.Mu.Unlock()

	hash, err := r.repo.ResolveRevision(gitPlumbing.Revision(rev))
	if err != nil {
		r.l.Trace("Error resolving revision", "rev", rev, "error", err)
		return err
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		r.l.Trace("Error getting worktree")
		return err
	}
	r.l.Debug("Checking out", "path", r.Path, "rev", rev, "hash", hash.String())
	return worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true})
}
