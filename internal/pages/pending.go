package pages

import (
	"context"
	"sync"

	"recolector/internal/models"
	"recolector/internal/notify"
)

const (
	MsgPendingError  = "Error al cargar canjes pendientes"
	MsgNoPending     = "No hay entregas pendientes"
	MsgDeliveredOK   = "¡Artículo marcado como entregado!"
	MsgDeliverFailed = "Error al marcar como entregado"
)

type PendingState struct {
	Loading     bool                `json:"loading"`
	Redemptions []models.Redemption `json:"redemptions"`
	// Delivering is the id being marked delivered, or zero.
	Delivering int64 `json:"delivering"`
}

func (s PendingState) Empty() bool { return !s.Loading && len(s.Redemptions) == 0 }

func (s PendingState) EmptyMessage() string { return MsgNoPending }

type PendingPage struct {
	lifecycle
	deps Deps

	mu    sync.RWMutex
	state PendingState
}

func NewPendingPage(deps Deps) *PendingPage {
	p := &PendingPage{deps: deps}
	p.init()
	return p
}

func (p *PendingPage) Load(ctx context.Context) error {
	ctx, epoch, done := p.begin(ctx)
	defer done()

	p.mu.Lock()
	p.state.Loading = true
	p.mu.Unlock()

	list, err := p.deps.Backend.PendingRedemptions(ctx)
	if !p.current(epoch) {
		return ErrDiscarded
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Loading = false
	if err != nil {
		report(p.deps.Notifier, err, MsgPendingError)
		return err
	}
	p.state.Redemptions = list
	return nil
}

// MarkDelivered records the hand-off and reloads the list. On failure the
// list is left as it was. Only one hand-off runs at a time; others get ErrBusy.
func (p *PendingPage) MarkDelivered(ctx context.Context, id int64) error {
	p.mu.Lock()
	if p.state.Delivering != 0 {
		p.mu.Unlock()
		return ErrBusy
	}
	p.state.Delivering = id
	p.mu.Unlock()

	err := p.deps.Backend.MarkDelivered(ctx, id)

	p.mu.Lock()
	p.state.Delivering = 0
	p.mu.Unlock()

	if err != nil {
		reportMessage(p.deps.Notifier, err, MsgDeliverFailed)
		return err
	}
	p.deps.Notifier.Push(MsgDeliveredOK, notify.Success)
	return p.Load(ctx)
}

func (p *PendingPage) State() PendingState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}
