package receiver

import (
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/scbuild/pkg/ledger"
)

// Receiver serves the outputs of build runs and takes packaged
// projects via HTTP so that builders elsewhere can fetch them.
type Receiver struct {
	l      hclog.Logger
	path   string
	ledger *ledger.Ledger

	mu sync.Mutex
}

// PackagesDir is where uploaded packaged projects are kept, below
// the receiver's path.
const PackagesDir = "packages"
