package pages

import (
	"context"
	"sync"

	"recolector/internal/models"
)

const MsgDashboardError = "Error al cargar estadísticas"

type DashboardState struct {
	Loading  bool                  `json:"loading"`
	Greeting string                `json:"greeting"`
	Summary  *models.PointsSummary `json:"summary"`
}

type DashboardPage struct {
	lifecycle
	deps Deps

	mu    sync.RWMutex
	state DashboardState
}

func NewDashboardPage(deps Deps) *DashboardPage {
	p := &DashboardPage{deps: deps}
	p.init()
	return p
}

func (p *DashboardPage) Load(ctx context.Context) error {
	ctx, epoch, done := p.begin(ctx)
	defer done()

	p.mu.Lock()
	p.state.Loading = true
	p.mu.Unlock()

	summary, err := p.deps.Backend.PointsSummary(ctx)
	if !p.current(epoch) {
		return ErrDiscarded
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Loading = false
	p.state.Greeting = greeting(p.deps.Session)
	if err != nil {
		report(p.deps.Notifier, err, MsgDashboardError)
		return err
	}
	p.state.Summary = summary
	return nil
}

func (p *DashboardPage) State() DashboardState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func greeting(s Session) string {
	snap := s.Snapshot()
	if snap.User == nil || snap.User.Nombre == "" {
		return "¡Hola!"
	}
	return "¡Hola, " + snap.User.Nombre + "!"
}
