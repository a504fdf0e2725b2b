package pages

import (
	"context"
	"math"
	"sync"

	"recolector/internal/models"
	"recolector/internal/notify"
)

const (
	MsgCatalogError   = "Error al cargar tipos de residuos"
	MsgGenerateOK     = "¡QR generado exitosamente!"
	MsgGenerateFailed = "Error al generar QR"
)

// GenerateForm is the waste delivery being registered.
type GenerateForm struct {
	TipoResiduo string  `json:"tipo_residuo" validate:"required"`
	CantidadKg  float64 `json:"cantidad_kg" validate:"required,gt=0"`
}

type GenerateState struct {
	Loading    bool               `json:"loading"`
	Submitting bool               `json:"submitting"`
	Types      []models.WasteType `json:"types"`
	Form       GenerateForm       `json:"form"`
	// Created is the server's answer to the last submission; its points are authoritative.
	Created *models.CreatedCode `json:"created"`
}

type GeneratePage struct {
	lifecycle
	deps Deps

	mu    sync.RWMutex
	state GenerateState
}

func NewGeneratePage(deps Deps) *GeneratePage {
	p := &GeneratePage{deps: deps}
	p.init()
	return p
}

// Load fetches the waste type catalog.
func (p *GeneratePage) Load(ctx context.Context) error {
	ctx, epoch, done := p.begin(ctx)
	defer done()

	p.mu.Lock()
	p.state.Loading = true
	p.mu.Unlock()

	types, err := p.deps.Backend.WasteTypes(ctx)
	if !p.current(epoch) {
		return ErrDiscarded
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Loading = false
	if err != nil {
		report(p.deps.Notifier, err, MsgCatalogError)
		return err
	}
	p.state.Types = types
	return nil
}

// Estimate is the advisory points preview: kg times the type's rate, rounded.
// Unknown types estimate to zero.
func (p *GeneratePage) Estimate(tipo string, kg float64) int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Estimate(p.state.Types, tipo, kg)
}

func Estimate(types []models.WasteType, tipo string, kg float64) int64 {
	if kg <= 0 {
		return 0
	}
	for _, t := range types {
		if t.Nombre == tipo {
			return int64(math.Round(kg * t.PuntosPorKg.Float()))
		}
	}
	return 0
}

// Submit validates the form, creates the collection record and exposes the
// created code. The form is cleared on success. A second Submit while one is
// in flight returns ErrBusy.
func (p *GeneratePage) Submit(ctx context.Context, form GenerateForm) (*models.CreatedCode, error) {
	if err := validate.Struct(form); err != nil {
		return nil, invalid(p.deps.Notifier, MsgFillAllFields, err)
	}
	ctx, epoch, done := p.begin(ctx)
	defer done()

	p.mu.Lock()
	if p.state.Submitting {
		p.mu.Unlock()
		return nil, ErrBusy
	}
	p.state.Form = form
	p.state.Submitting = true
	p.mu.Unlock()

	created, err := p.deps.Backend.CreateCollection(ctx, models.CreateCollectionRequest{
		TipoResiduo: form.TipoResiduo,
		CantidadKg:  form.CantidadKg,
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Submitting = false
	if !p.current(epoch) {
		return nil, ErrDiscarded
	}
	if err != nil {
		reportMessage(p.deps.Notifier, err, MsgGenerateFailed)
		return nil, err
	}
	p.state.Created = created
	p.state.Form = GenerateForm{}
	p.deps.Notifier.Push(MsgGenerateOK, notify.Success)
	return created, nil
}

func (p *GeneratePage) State() GenerateState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := p.state
	s.Types = append([]models.WasteType(nil), p.state.Types...)
	return s
}
