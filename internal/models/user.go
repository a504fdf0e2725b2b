package models

// RoleCollector is the only role allowed to hold a session.
const RoleCollector = "recolector"

// User is the authenticated account as returned by /login and /perfil.
type User struct {
	ID       int64  `json:"id"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"email"`
	Rol      string `json:"rol"`
	Puntos   Number `json:"puntos"`
	Telefono string `json:"telefono,omitempty"`
	DNI      string `json:"dni,omitempty"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	if u.Apellido == "" {
		return u.Nombre
	}
	return u.Nombre + " " + u.Apellido
}

// IsCollector reports whether the account may use this client.
func (u User) IsCollector() bool { return u.Rol == RoleCollector }

// UserPatch carries the fields to merge into the session user. Nil fields are
// left untouched.
type UserPatch struct {
	Nombre   *string
	Apellido *string
	Email    *string
	Telefono *string
	DNI      *string
	Puntos   *Number
}

// Apply merges p into u and returns the result.
func (p UserPatch) Apply(u User) User {
	if p.Nombre != nil {
		u.Nombre = *p.Nombre
	}
	if p.Apellido != nil {
		u.Apellido = *p.Apellido
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Telefono != nil {
		u.Telefono = *p.Telefono
	}
	if p.DNI != nil {
		u.DNI = *p.DNI
	}
	if p.Puntos != nil {
		u.Puntos = *p.Puntos
	}
	return u
}

// PatchFromUser builds a patch that overwrites every profile field with u's.
func PatchFromUser(u User) UserPatch {
	return UserPatch{
		Nombre:   &u.Nombre,
		Apellido: &u.Apellido,
		Email:    &u.Email,
		Telefono: &u.Telefono,
		DNI:      &u.DNI,
	}
}

// Person is the customer embedded in codes and redemptions.
type Person struct {
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	DNI      string `json:"dni,omitempty"`
	Email    string `json:"email,omitempty"`
}

func (p *Person) FullName() string {
	if p == nil || p.Nombre == "" {
		return ""
	}
	if p.Apellido == "" {
		return p.Nombre
	}
	return p.Nombre + " " + p.Apellido
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

// ProfileUpdate is the PUT /perfil body.
type ProfileUpdate struct {
	Nombre   string `json:"nombre" validate:"required"`
	Apellido string `json:"apellido" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Telefono string `json:"telefono"`
	DNI      string `json:"dni" validate:"required,max=8"`
}

type ProfileResponse struct {
	Message string `json:"message,omitempty"`
	User    *User  `json:"user,omitempty"`
}

// PasswordChange is the PATCH /perfil/password body.
type PasswordChange struct {
	CurrentPassword         string `json:"current_password" validate:"required"`
	NewPassword             string `json:"new_password" validate:"required,min=6"`
	NewPasswordConfirmation string `json:"new_password_confirmation" validate:"required,min=6"`
}

// Message is the generic {"message": "..."} reply.
type Message struct {
	Message string `json:"message,omitempty"`
}
