package driven

import (
	"context"

	"github.com/ericfisherdev/hastrava/internal/domain/model"
)

// OptionsStore defines the driven port for user options persistence.
// Get returns (nil, nil) if options were never saved; callers should apply
// defaults when nil is returned.
type OptionsStore interface {
	Get(ctx context.Context) (*model.Options, error)
	Set(ctx context.Context, opts model.Options) error
}
