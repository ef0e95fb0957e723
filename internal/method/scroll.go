package method

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// ScrollToBottom scrolls down in fixed steps to trigger lazy-loaded content.
// The scrollable height is re-read before every step, so content that grows
// the page keeps the loop going until MaxSteps is reached.
func (m *Method) ScrollToBottom(ctx context.Context) error {
	opts := m.opts.Scroll
	scrolled := 0

	for step := 0; step < opts.MaxSteps; step++ {
		if err := sleep(ctx, opts.Interval); err != nil {
			return err
		}

		height, err := m.page.ScrollHeight(ctx)
		if err != nil {
			return err
		}
		if err = m.page.ScrollBy(ctx, opts.Step); err != nil {
			return err
		}
		scrolled += opts.Step

		if scrolled >= height {
			log.Debugf("Scrolled %dpx of %dpx in %d steps", scrolled, height, step+1)
			return nil
		}
	}

	log.Debugf("Scroll stopped after %d steps (%dpx)", opts.MaxSteps, scrolled)
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("scroll interrupted: %w", err)
		}
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scroll interrupted: %w", ctx.Err())
	}
}
