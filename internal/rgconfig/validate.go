package rgconfig

import (
	"github.com/pkg/errors"

	"github.com/RustWorks/rgis-map/internal/reproject"
)

func (c Config) validate() error {
	if !reproject.Supported(c.TargetCRS) {
		return errors.Errorf("unsupported target CRS %q", c.TargetCRS)
	}

	if !reproject.Supported(c.DefaultSourceCRS) {
		return errors.Errorf("unsupported default source CRS %q", c.DefaultSourceCRS)
	}

	if c.TickMillis <= 0 {
		return errors.Errorf("tickMillis must be positive, got %d", c.TickMillis)
	}

	return nil
}
