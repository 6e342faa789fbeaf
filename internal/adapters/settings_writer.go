package adapters

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"domverify/internal/ports"
	"domverify/internal/types"
)

// CoalescingSettingsWriter turns any number of Schedule calls into a single
// write of the latest state, either on Flush or after Delay.
type CoalescingSettingsWriter struct {
	Store  ports.SettingsStorePort
	Source func() types.SettingsFile
	Delay  time.Duration

	mu     sync.Mutex
	dirty  bool
	timer  *time.Timer
	writes int
}

var _ ports.SettingsSchedulerPort = (*CoalescingSettingsWriter)(nil)

func NewCoalescingSettingsWriter(store ports.SettingsStorePort, delay time.Duration) *CoalescingSettingsWriter {
	return &CoalescingSettingsWriter{Store: store, Delay: delay}
}

func (w *CoalescingSettingsWriter) Schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dirty = true
	if w.Delay <= 0 || w.timer != nil {
		return
	}
	w.timer = time.AfterFunc(w.Delay, func() {
		if err := w.Flush(context.Background()); err != nil {
			log.Error().Err(err).Msg("deferred settings write failed")
		}
	})
}

// Flush writes pending state, if any.
func (w *CoalescingSettingsWriter) Flush(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if !w.dirty || w.Source == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := w.Store.Write(w.Source()); err != nil {
		return err
	}
	w.dirty = false
	w.writes++
	log.Ctx(ctx).Debug().Int("writes", w.writes).Msg("settings written")
	return nil
}

// Writes reports how many writes reached the store.
func (w *CoalescingSettingsWriter) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}
