package blog

import (
	"context"
	"fmt"

	"github.com/compozy/modhost/engine/data"
	"github.com/compozy/modhost/modules/blog/repository"
	"github.com/compozy/modhost/pkg/config"
)

const configKey = "blog"

// initializer reads the modules.blog settings into the options the
// repositories are built with.
type initializer struct {
	opts *repository.Options
}

func (i *initializer) ConfigureOptions(_ context.Context, cfg *config.Config) error {
	opts := repository.DefaultOptions()
	if err := cfg.Module(configKey, &opts); err != nil {
		return err
	}
	if opts.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", opts.PageSize)
	}
	*i.opts = opts
	return nil
}

func (i *initializer) ConfigureServices(_ context.Context, _ *data.Manifest) error {
	return nil
}
