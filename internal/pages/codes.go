package pages

import (
	"context"
	"sync"

	"recolector/internal/models"
)

const (
	MsgCodesError = "Error al cargar QRs"
	MsgNoCodes    = "No se encontraron QRs"
)

type CodesState struct {
	Loading bool            `json:"loading"`
	Filter  string          `json:"filter"`
	All     []models.QRCode `json:"all"`
	// Visible is All narrowed by Filter.
	Visible []models.QRCode `json:"visible"`
	// Totals counts All per status.
	Totals map[string]int `json:"totals"`
}

// Empty reports whether there is nothing to list under the current filter.
func (s CodesState) Empty() bool { return !s.Loading && len(s.Visible) == 0 }

func (s CodesState) EmptyMessage() string { return MsgNoCodes }

type CodesPage struct {
	lifecycle
	deps Deps

	mu    sync.RWMutex
	state CodesState
}

func NewCodesPage(deps Deps) *CodesPage {
	p := &CodesPage{deps: deps}
	p.init()
	return p
}

// Load fetches every issued code; filtering happens locally.
func (p *CodesPage) Load(ctx context.Context) error {
	ctx, epoch, done := p.begin(ctx)
	defer done()

	p.mu.Lock()
	p.state.Loading = true
	p.mu.Unlock()

	codes, err := p.deps.Backend.ListCodes(ctx, models.CodeQuery{})
	if !p.current(epoch) {
		return ErrDiscarded
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Loading = false
	if err != nil {
		report(p.deps.Notifier, err, MsgCodesError)
		return err
	}
	p.state.All = codes
	p.state.Totals = countByStatus(codes)
	p.state.Visible = filterCodes(codes, p.state.Filter)
	return nil
}

// SetFilter narrows the list to one status; empty shows all.
func (p *CodesPage) SetFilter(status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Filter = status
	p.state.Visible = filterCodes(p.state.All, status)
}

// Find returns the code whose claim or QR code matches.
func (p *CodesPage) Find(code string) (models.QRCode, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, c := range p.state.All {
		if c.CodigoQR == code || c.CodigoReclamacion == code {
			return c, true
		}
	}
	return models.QRCode{}, false
}

func (p *CodesPage) State() CodesState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func filterCodes(codes []models.QRCode, status string) []models.QRCode {
	out := make([]models.QRCode, 0, len(codes))
	for _, c := range codes {
		if status == "" || c.Estado == status {
			out = append(out, c)
		}
	}
	return out
}

func countByStatus(codes []models.QRCode) map[string]int {
	totals := make(map[string]int, len(models.CodeStatuses))
	for _, s := range models.CodeStatuses {
		totals[s] = 0
	}
	for _, c := range codes {
		totals[c.Estado]++
	}
	return totals
}
