package pages

import (
	"context"
	"sync"
	"time"

	"recolector/internal/models"
)

const MsgHistoryError = "Error al cargar historial de entregas"

type HistoryStats struct {
	Deliveries  int     `json:"deliveries"`
	TotalPoints float64 `json:"total_points"`
	ThisMonth   int     `json:"this_month"`
}

type HistoryState struct {
	Loading     bool                `json:"loading"`
	Redemptions []models.Redemption `json:"redemptions"`
	Stats       HistoryStats        `json:"stats"`
}

func (s HistoryState) Empty() bool { return !s.Loading && len(s.Redemptions) == 0 }

type HistoryPage struct {
	lifecycle
	deps Deps
	now  func() time.Time

	mu    sync.RWMutex
	state HistoryState
}

func NewHistoryPage(deps Deps) *HistoryPage {
	p := &HistoryPage{deps: deps, now: time.Now}
	p.init()
	return p
}

func (p *HistoryPage) Load(ctx context.Context) error {
	ctx, epoch, done := p.begin(ctx)
	defer done()

	p.mu.Lock()
	p.state.Loading = true
	p.mu.Unlock()

	list, err := p.deps.Backend.CompletedRedemptions(ctx)
	if !p.current(epoch) {
		return ErrDiscarded
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Loading = false
	if err != nil {
		report(p.deps.Notifier, err, MsgHistoryError)
		return err
	}
	p.state.Redemptions = list
	p.state.Stats = historyStats(list, p.now())
	return nil
}

func (p *HistoryPage) State() HistoryState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// historyStats sums point magnitudes and counts deliveries updated in now's
// calendar month.
func historyStats(list []models.Redemption, now time.Time) HistoryStats {
	stats := HistoryStats{Deliveries: len(list)}
	for _, r := range list {
		stats.TotalPoints += r.AbsPoints()
		if r.UpdatedAt.IsZero() {
			continue
		}
		at := r.UpdatedAt.In(now.Location())
		if at.Year() == now.Year() && at.Month() == now.Month() {
			stats.ThisMonth++
		}
	}
	return stats
}
