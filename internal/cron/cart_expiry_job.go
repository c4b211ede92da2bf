package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/cartreserve-backend/pkg/logger"
)

const defaultCartSweepBatch = 500

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type expiredCartReleaser interface {
	ExpiredSessions(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
	ReleaseExpired(ctx context.Context, sessionKey string, cutoff time.Time) (int, error)
}

// CartExpiryJobParams configure the cart reservation sweeper.
type CartExpiryJobParams struct {
	Logger    *logger.Logger
	Carts     expiredCartReleaser
	BatchSize int
}

// NewCartExpiryJob builds the job that returns expired cart holds to stock.
func NewCartExpiryJob(params CartExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart releaser required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultCartSweepBatch
	}
	return &cartExpiryJob{
		logg:  params.Logger,
		carts: params.Carts,
		batch: batch,
		now:   time.Now,
	}, nil
}

type cartExpiryJob struct {
	logg  *logger.Logger
	carts expiredCartReleaser
	batch int
	now   func() time.Time
}

func (j *cartExpiryJob) Name() string { return "cart-expiry-sweep" }

// Run sweeps one batch of sessions whose every hold has lapsed. A failing
// session is reported but does not stop the rest of the batch.
func (j *cartExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	sessions, err := j.carts.ExpiredSessions(ctx, cutoff, j.batch)
	if err != nil {
		return fmt.Errorf("query expired carts: %w", err)
	}

	var (
		errs     []error
		swept    int
		released int
	)
	for _, key := range sessions {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		units, err := j.carts.ReleaseExpired(ctx, key, cutoff)
		if err != nil {
			errs = append(errs, fmt.Errorf("release cart %s: %w", redactKey(key), err))
			continue
		}
		if units > 0 {
			swept++
			released += units
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates":     len(sessions),
		"carts_released": swept,
		"units_released": released,
		"failed":         len(errs),
	})
	if len(sessions) > 0 {
		j.logg.Info(logCtx, "cart expiry sweep complete")
	} else {
		j.logg.Debug(logCtx, "no expired carts")
	}
	return multierr.Combine(errs...)
}

func redactKey(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:8]
}
