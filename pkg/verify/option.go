package verify

import (
	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/scbuild/pkg/builder"
	"github.com/the-maldridge/scbuild/pkg/ledger"
)

// WithLogger sets up the logging instance for the verifier.
func WithLogger(l hclog.Logger) Option {
	return func(v *Verifier) {
		v.l = l.Named("verify")
	}
}

// WithBuilder sets the builder used for both builds.
func WithBuilder(b *builder.Builder) Option {
	return func(v *Verifier) {
		v.builder = b
	}
}

// WithLedger records every verification in lg.
func WithLedger(lg *ledger.Ledger) Option {
	return func(v *Verifier) {
		v.ledger = lg
	}
}
