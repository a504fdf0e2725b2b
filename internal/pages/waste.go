package pages

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"recolector/internal/models"
)

const MsgWasteError = "Error al cargar residuos"

// WasteFilter narrows the received-waste list locally. Dates are inclusive
// calendar days; zero values match everything.
type WasteFilter struct {
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Estado string    `json:"estado"`
	Tipo   string    `json:"tipo"`
}

func (f WasteFilter) match(r models.ReceivedWaste) bool {
	if f.Estado != "" && r.Estado != f.Estado {
		return false
	}
	if f.Tipo != "" && r.TipoResiduo != f.Tipo {
		return false
	}
	if !f.From.IsZero() && r.FechaRecepcion.Before(startOfDay(f.From)) {
		return false
	}
	if !f.To.IsZero() && !r.FechaRecepcion.Before(startOfDay(f.To).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// ParseFilterDate reads a YYYY-MM-DD filter bound as a calendar day in the
// collector's local time zone.
func ParseFilterDate(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, s, time.Local)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type WasteStats struct {
	Records int     `json:"records"`
	Kg      float64 `json:"kg"`
	Points  float64 `json:"points"`
	Pending int     `json:"pending"`
	Claimed int     `json:"claimed"`
}

type WasteState struct {
	Loading bool                   `json:"loading"`
	Records []models.ReceivedWaste `json:"records"`
	Types   []models.WasteType     `json:"types"`
	Filter  WasteFilter            `json:"filter"`
	// Visible is Records narrowed by Filter.
	Visible []models.ReceivedWaste `json:"visible"`
	// Stats covers every record regardless of the filter.
	Stats WasteStats `json:"stats"`
	// RecordsErr and TypesErr hold the per-resource failure of the last load.
	RecordsErr error `json:"-"`
	TypesErr   error `json:"-"`
}

type WastePage struct {
	lifecycle
	deps Deps

	mu    sync.RWMutex
	state WasteState
}

func NewWastePage(deps Deps) *WastePage {
	p := &WastePage{deps: deps}
	p.init()
	return p
}

// Load fetches records and the catalog concurrently. Each resource succeeds
// or fails on its own; whatever arrived is kept.
func (p *WastePage) Load(ctx context.Context) error {
	ctx, epoch, done := p.begin(ctx)
	defer done()

	p.mu.Lock()
	p.state.Loading = true
	p.mu.Unlock()

	var (
		page     *models.ReceivedWastePage
		types    []models.WasteType
		wasteErr error
		typesErr error
		wg       conc.WaitGroup
	)
	wg.Go(func() { page, wasteErr = p.deps.Backend.ReceivedWaste(ctx, models.WasteQuery{}) })
	wg.Go(func() { types, typesErr = p.deps.Backend.WasteTypes(ctx) })
	wg.Wait()

	if !p.current(epoch) {
		return ErrDiscarded
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Loading = false
	p.state.RecordsErr = wasteErr
	p.state.TypesErr = typesErr

	if wasteErr != nil {
		report(p.deps.Notifier, wasteErr, MsgWasteError)
	} else {
		p.state.Records = page.Residuos
		p.state.Stats = wasteStats(page.Residuos)
		p.state.Visible = filterWaste(page.Residuos, p.state.Filter)
	}
	if typesErr != nil {
		report(p.deps.Notifier, typesErr, MsgCatalogError)
	} else {
		p.state.Types = types
	}

	if wasteErr != nil {
		return wasteErr
	}
	return typesErr
}

func (p *WastePage) SetFilter(f WasteFilter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Filter = f
	p.state.Visible = filterWaste(p.state.Records, f)
}

// ClearFilter shows every record again.
func (p *WastePage) ClearFilter() { p.SetFilter(WasteFilter{}) }

func (p *WastePage) State() WasteState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func filterWaste(records []models.ReceivedWaste, f WasteFilter) []models.ReceivedWaste {
	out := make([]models.ReceivedWaste, 0, len(records))
	for _, r := range records {
		if f.match(r) {
			out = append(out, r)
		}
	}
	return out
}

func wasteStats(records []models.ReceivedWaste) WasteStats {
	s := WasteStats{Records: len(records)}
	for _, r := range records {
		s.Kg += r.CantidadKg.Float()
		s.Points += r.PuntosOtorgados.Float()
		switch r.Estado {
		case models.StatusAvailable:
			s.Pending++
		case models.StatusClaimed:
			s.Claimed++
		}
	}
	return s
}
