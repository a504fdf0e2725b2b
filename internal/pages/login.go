package pages

import (
	"context"

	"recolector/internal/auth"
	"recolector/internal/notify"
)

const MsgWelcome = "¡Bienvenido!"

// Authenticator is the login half of the session store.
type Authenticator interface {
	Login(ctx context.Context, email, password string) auth.Result
}

type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type LoginPage struct {
	auth     Authenticator
	notifier notify.Notifier
}

func NewLoginPage(a Authenticator, n notify.Notifier) *LoginPage {
	return &LoginPage{auth: a, notifier: n}
}

// Submit validates the form, logs in and announces the outcome.
func (p *LoginPage) Submit(ctx context.Context, form LoginForm) auth.Result {
	if err := validate.Struct(form); err != nil {
		msg := validationMessage(err, nil)
		_ = invalid(p.notifier, msg, err)
		return auth.Result{Message: msg}
	}
	res := p.auth.Login(ctx, form.Email, form.Password)
	if res.Success {
		p.notifier.Push(MsgWelcome, notify.Success)
	} else {
		p.notifier.Push(res.Message, notify.Error)
	}
	return res
}
