package pages

import (
	"context"
	"sync"

	"recolector/internal/models"
	"recolector/internal/notify"
)

const (
	MsgProfileError     = "Error al cargar perfil"
	MsgProfileUpdated   = "Perfil actualizado correctamente"
	MsgProfileFailed    = "Error al actualizar perfil"
	MsgPasswordMismatch = "Las contraseñas no coinciden"
	MsgPasswordChanged  = "Contraseña cambiada correctamente"
	MsgPasswordFailed   = "Error al cambiar contraseña"
)

var profileRules = map[string]string{
	"DNI.max":                     "El DNI debe tener como máximo 8 caracteres",
	"NewPassword.min":             "La nueva contraseña debe tener al menos 6 caracteres",
	"NewPasswordConfirmation.min": "La nueva contraseña debe tener al menos 6 caracteres",
}

type ProfileState struct {
	Loading bool                 `json:"loading"`
	Saving  bool                 `json:"saving"`
	User    *models.User         `json:"user"`
	Form    models.ProfileUpdate `json:"form"`
}

type ProfilePage struct {
	lifecycle
	deps Deps

	mu    sync.RWMutex
	state ProfileState
}

// NewProfilePage seeds the form from the session user.
func NewProfilePage(deps Deps) *ProfilePage {
	p := &ProfilePage{deps: deps}
	p.init()
	if u := deps.Session.Snapshot().User; u != nil {
		p.state.User = u
		p.state.Form = formFromUser(*u)
	}
	return p
}

func formFromUser(u models.User) models.ProfileUpdate {
	return models.ProfileUpdate{
		Nombre:   u.Nombre,
		Apellido: u.Apellido,
		Email:    u.Email,
		Telefono: u.Telefono,
		DNI:      u.DNI,
	}
}

// Load refreshes the account from the API.
func (p *ProfilePage) Load(ctx context.Context) error {
	ctx, epoch, done := p.begin(ctx)
	defer done()

	p.mu.Lock()
	p.state.Loading = true
	p.mu.Unlock()

	user, err := p.deps.Backend.Profile(ctx)
	if !p.current(epoch) {
		return ErrDiscarded
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Loading = false
	if err != nil {
		report(p.deps.Notifier, err, MsgProfileError)
		return err
	}
	p.state.User = user
	p.state.Form = formFromUser(*user)
	return nil
}

// Update saves the profile and merges the result into the session user: the
// server's copy when it returns one, the submitted form otherwise.
func (p *ProfilePage) Update(ctx context.Context, form models.ProfileUpdate) error {
	if err := validate.Struct(form); err != nil {
		return invalid(p.deps.Notifier, validationMessage(err, profileRules), err)
	}

	p.mu.Lock()
	p.state.Saving = true
	p.state.Form = form
	p.mu.Unlock()

	resp, err := p.deps.Backend.UpdateProfile(ctx, form)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Saving = false
	if err != nil {
		reportMessage(p.deps.Notifier, err, MsgProfileFailed)
		return err
	}

	patch := models.PatchFromUser(models.User{
		Nombre:   form.Nombre,
		Apellido: form.Apellido,
		Email:    form.Email,
		Telefono: form.Telefono,
		DNI:      form.DNI,
	})
	if resp != nil && resp.User != nil {
		patch = models.PatchFromUser(*resp.User)
		p.state.Form = formFromUser(*resp.User)
	}
	if err := p.deps.Session.UpdateUser(patch); err != nil {
		p.deps.Notifier.Push(MsgProfileFailed, notify.Error)
		return err
	}
	if snap := p.deps.Session.Snapshot(); snap.User != nil {
		p.state.User = snap.User
	}
	p.deps.Notifier.Push(MsgProfileUpdated, notify.Success)
	return nil
}

// ChangePassword checks the confirmation locally before calling the API.
func (p *ProfilePage) ChangePassword(ctx context.Context, form models.PasswordChange) error {
	if form.NewPassword != form.NewPasswordConfirmation {
		return invalid(p.deps.Notifier, MsgPasswordMismatch, nil)
	}
	if err := validate.Struct(form); err != nil {
		return invalid(p.deps.Notifier, validationMessage(err, profileRules), err)
	}

	p.mu.Lock()
	p.state.Saving = true
	p.mu.Unlock()

	_, err := p.deps.Backend.ChangePassword(ctx, form)

	p.mu.Lock()
	p.state.Saving = false
	p.mu.Unlock()

	if err != nil {
		reportMessage(p.deps.Notifier, err, MsgPasswordFailed)
		return err
	}
	p.deps.Notifier.Push(MsgPasswordChanged, notify.Success)
	return nil
}

func (p *ProfilePage) State() ProfileState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}
