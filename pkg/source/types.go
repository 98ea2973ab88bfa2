package source

import (
	"sync"

	git "github.com/go-git/go-git/v5"
	"github.com/hashicorp/go-hclog"
)

// A RepoMngr manages the git side of a project checkout.
type RepoMngr struct {
	l    hclog.Logger
	Path string
	Url  string
	Mu   *sync.Mutex
	repo *git.Repository
}

// A Predicate decides whether a file, given as a slash separated path
// relative to the walk root, should be selected.
type Predicate func(rel string) bool
