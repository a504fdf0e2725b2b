// Package pages holds one controller per screen of the collector client. A
// controller loads its data through the Backend, keeps the result as its
// state, derives stats locally and reports failures as notifications.
package pages

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"

	"recolector/internal/auth"
	"recolector/internal/httpclient"
	"recolector/internal/models"
	"recolector/internal/notify"
)

// Messages shared by several pages.
const (
	MsgFillAllFields = "Por favor completa todos los campos"
	MsgInvalidEmail  = "Ingresa un correo electrónico válido"
)

var (
	// ErrDiscarded is returned when a load finished after its page was unmounted.
	ErrDiscarded = errors.New("page unmounted")
	// ErrBusy is returned when an action is started while the previous one is in flight.
	ErrBusy = errors.New("action already in progress")
)

// FormError is a submission rejected before reaching the API.
type FormError struct {
	Message string
	Err     error
}

func (e *FormError) Error() string { return e.Message }

func (e *FormError) Unwrap() error { return e.Err }

// invalid reports a rejected form and returns the error for the caller.
func invalid(n notify.Notifier, msg string, err error) error {
	n.Push(msg, notify.Error)
	return &FormError{Message: msg, Err: err}
}

// Backend is the slice of the remote API the pages call.
type Backend interface {
	PointsSummary(ctx context.Context) (*models.PointsSummary, error)
	ListCodes(ctx context.Context, q models.CodeQuery) ([]models.QRCode, error)
	CreateCollection(ctx context.Context, req models.CreateCollectionRequest) (*models.CreatedCode, error)
	PendingRedemptions(ctx context.Context) ([]models.Redemption, error)
	CompletedRedemptions(ctx context.Context) ([]models.Redemption, error)
	MarkDelivered(ctx context.Context, id int64) error
	ReceivedWaste(ctx context.Context, q models.WasteQuery) (*models.ReceivedWastePage, error)
	WasteTypes(ctx context.Context) ([]models.WasteType, error)
	CollectionPoints(ctx context.Context) ([]models.CollectionPoint, error)
	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, req models.ProfileUpdate) (*models.ProfileResponse, error)
	ChangePassword(ctx context.Context, req models.PasswordChange) (*models.Message, error)
}

// Session is the read side of the session store plus the profile write-back.
type Session interface {
	Snapshot() auth.Snapshot
	UpdateUser(patch models.UserPatch) error
}

// Deps are the collaborators every page is built with.
type Deps struct {
	Backend  Backend
	Session  Session
	Notifier notify.Notifier
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// lifecycle ties in-flight loads to the page being mounted. Unmount cancels
// them and bumps the epoch so results arriving afterwards are dropped.
type lifecycle struct {
	mu     sync.Mutex
	epoch  uint64
	ctx    context.Context
	cancel context.CancelFunc
}

func (l *lifecycle) init() {
	l.ctx, l.cancel = context.WithCancel(context.Background())
}

// begin derives a context cancelled by either parent or Unmount.
func (l *lifecycle) begin(parent context.Context) (context.Context, uint64, context.CancelFunc) {
	l.mu.Lock()
	mount, epoch := l.ctx, l.epoch
	l.mu.Unlock()

	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(mount, cancel)
	return ctx, epoch, func() {
		stop()
		cancel()
	}
}

func (l *lifecycle) current(epoch uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.epoch == epoch
}

// Unmount discards every in-flight load. The page can be loaded again afterwards.
func (l *lifecycle) Unmount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancel()
	l.epoch++
	l.ctx, l.cancel = context.WithCancel(context.Background())
}

// report turns a failed call into an error notification. Rejected credentials
// are reported once by the session expiry hook instead.
func report(n notify.Notifier, err error, fallback string) {
	if httpclient.IsUnauthorized(err) {
		return
	}
	n.Push(fallback, notify.Error)
}

// reportMessage is report but prefers the server's message.
func reportMessage(n notify.Notifier, err error, fallback string) {
	if httpclient.IsUnauthorized(err) {
		return
	}
	n.Push(httpclient.MessageOr(err, fallback), notify.Error)
}

// validationMessage maps the first failed rule to a user-facing message.
func validationMessage(err error, byField map[string]string) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return MsgFillAllFields
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return MsgFillAllFields
		}
	}
	fe := verrs[0]
	if msg, ok := byField[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if fe.Tag() == "email" {
		return MsgInvalidEmail
	}
	return MsgFillAllFields
}
