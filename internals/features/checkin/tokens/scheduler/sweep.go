package scheduler

import (
	"context"
	"log"
	"time"

	"gerejaku_backend/internals/features/checkin/tokens/store"

	"github.com/robfig/cron/v3"
)

const sweepTimeout = 30 * time.Second

// SweepOnce menghapus token yang sudah kedaluwarsa. Dipakai cron dan CLI.
func SweepOnce(ctx context.Context, st store.Store, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	n, err := st.Sweep(ctx, now)
	if err != nil {
		log.Printf("[TOKEN-SWEEP ERROR] Gagal hapus token kadaluarsa: %v", err)
		return 0, err
	}
	if n > 0 {
		log.Printf("[TOKEN-SWEEP] %d token kadaluarsa dihapus", n)
	}
	return n, nil
}

// StartTokenSweepScheduler: panggil dari main.go. Kembalikan cron supaya bisa di-Stop saat shutdown.
func StartTokenSweepScheduler(st store.Store, schedule string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(schedule, func() {
		_, _ = SweepOnce(context.Background(), st, time.Now())
	}); err != nil {
		return nil, err
	}
	c.Start()
	log.Printf("[TOKEN-SWEEP] started schedule=%q", schedule)
	return c, nil
}
