package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"recolector/internal/files"
	"recolector/internal/httpclient"
	"recolector/internal/models"
	"recolector/internal/notify"
	"recolector/internal/pages"
)

// Brand is the title shown in the header.
const Brand = "EcoPuntos Recolector"

type NavLink struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

var navLinks = []NavLink{
	{Path: "/", Label: "Dashboard"},
	{Path: "/generar-qr", Label: "Generar QR"},
	{Path: "/mis-qrs", Label: "Mis QRs"},
	{Path: "/entregas", Label: "Entregas"},
	{Path: "/historial-entregas", Label: "Historial"},
	{Path: "/residuos", Label: "Residuos"},
	{Path: "/perfil", Label: "Perfil"},
}

type Header struct {
	Brand  string    `json:"brand"`
	User   string    `json:"user"`
	Points float64   `json:"points"`
	Theme  string    `json:"theme"`
	Links  []NavLink `json:"links"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler signs in. The redirect tells the client where to go next.
func (s *Shell) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Error: "invalid body", Notifications: s.queue.List()})
		return
	}
	res := pages.NewLoginPage(s.store, s.queue).Submit(r.Context(), pages.LoginForm{Email: body.Email, Password: body.Password})
	if !res.Success {
		writeJSON(w, http.StatusBadRequest, envelope{Error: res.Message, Notifications: s.queue.List()})
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"redirect": "/", "user": s.store.Snapshot().User})
}

func (s *Shell) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	s.store.Logout(r.Context())
	s.respond(w, http.StatusOK, map[string]string{"redirect": "/login"})
}

func (s *Shell) HeaderHandler(w http.ResponseWriter, r *http.Request) {
	h := Header{Brand: Brand, Theme: string(s.theme.Current()), Links: navLinks}
	if u := s.store.Snapshot().User; u != nil {
		h.User = u.FullName()
		h.Points = u.Puntos.Float()
	}
	s.respond(w, http.StatusOK, h)
}

func (s *Shell) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	p := pages.NewDashboardPage(s.deps())
	defer p.Unmount()
	if err := p.Load(r.Context()); err != nil {
		s.fail(w, err, p.State())
		return
	}
	s.respond(w, http.StatusOK, p.State())
}

func (s *Shell) CatalogHandler(w http.ResponseWriter, r *http.Request) {
	p := pages.NewGeneratePage(s.deps())
	defer p.Unmount()
	if err := p.Load(r.Context()); err != nil {
		s.fail(w, err, nil)
		return
	}
	s.respond(w, http.StatusOK, p.State().Types)
}

// EstimateHandler previews the points for ?tipo=&kg= against the current catalog.
func (s *Shell) EstimateHandler(w http.ResponseWriter, r *http.Request) {
	kg, err := strconv.ParseFloat(r.URL.Query().Get("kg"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Error: "kg must be a number", Notifications: s.queue.List()})
		return
	}
	p := pages.NewGeneratePage(s.deps())
	defer p.Unmount()
	if err := p.Load(r.Context()); err != nil {
		s.fail(w, err, nil)
		return
	}
	s.respond(w, http.StatusOK, map[string]int64{"puntos": p.Estimate(r.URL.Query().Get("tipo"), kg)})
}

func (s *Shell) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	var body models.CreateCollectionRequest
	if err := decodeBody(r, &body); err != nil {
		s.queue.Push(pages.MsgFillAllFields, notify.Error)
		writeJSON(w, http.StatusBadRequest, envelope{Error: "invalid body", Notifications: s.queue.List()})
		return
	}
	p := pages.NewGeneratePage(s.deps())
	defer p.Unmount()
	created, err := p.Submit(r.Context(), pages.GenerateForm{TipoResiduo: body.TipoResiduo, CantidadKg: body.CantidadKg})
	if err != nil {
		s.fail(w, err, nil)
		return
	}
	s.respond(w, http.StatusCreated, created)
}

func (s *Shell) CodesHandler(w http.ResponseWriter, r *http.Request) {
	p := pages.NewCodesPage(s.deps())
	defer p.Unmount()
	p.SetFilter(r.URL.Query().Get("estado"))
	if err := p.Load(r.Context()); err != nil {
		s.fail(w, err, p.State())
		return
	}
	s.respond(w, http.StatusOK, p.State())
}

// QRImageHandler renders one of the collector's codes as a PNG download.
func (s *Shell) QRImageHandler(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["codigo"]
	p := pages.NewCodesPage(s.deps())
	defer p.Unmount()
	if err := p.Load(r.Context()); err != nil {
		s.fail(w, err, nil)
		return
	}
	qr, ok := p.Find(code)
	if !ok {
		writeJSON(w, http.StatusNotFound, envelope{Error: pages.MsgNoCodes, Notifications: s.queue.List()})
		return
	}
	content := qr.CodigoQR
	if content == "" {
		content = qr.CodigoReclamacion
	}
	png, err := files.QRPNG(content, files.DefaultQRSize)
	if err != nil {
		s.log.WithError(err).Error("render qr")
		http.Error(w, "failed to render QR", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="`+files.QRFileName(content)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Shell) PendingHandler(w http.ResponseWriter, r *http.Request) {
	p := pages.NewPendingPage(s.deps())
	defer p.Unmount()
	if err := p.Load(r.Context()); err != nil {
		s.fail(w, err, p.State())
		return
	}
	s.respond(w, http.StatusOK, pendingView(p.State()))
}

func (s *Shell) DeliverHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	p := pages.NewPendingPage(s.deps())
	defer p.Unmount()
	if err := p.MarkDelivered(r.Context(), id); err != nil {
		s.fail(w, err, nil)
		return
	}
	s.respond(w, http.StatusOK, pendingView(p.State()))
}

type pendingPayload struct {
	pages.PendingState
	EmptyMessage string `json:"empty_message,omitempty"`
}

func pendingView(st pages.PendingState) pendingPayload {
	out := pendingPayload{PendingState: st}
	if st.Empty() {
		out.EmptyMessage = st.EmptyMessage()
	}
	return out
}

func (s *Shell) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	p := pages.NewHistoryPage(s.deps())
	defer p.Unmount()
	if err := p.Load(r.Context()); err != nil {
		s.fail(w, err, p.State())
		return
	}
	s.respond(w, http.StatusOK, p.State())
}

// WasteHandler lists received waste filtered by ?fecha_inicio&fecha_fin&estado&tipo_residuo.
// A failed catalog still returns the records.
func (s *Shell) WasteHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := pages.WasteFilter{Estado: q.Get("estado"), Tipo: q.Get("tipo_residuo")}
	var err error
	if v := q.Get("fecha_inicio"); v != "" {
		if filter.From, err = pages.ParseFilterDate(v); err != nil {
			http.Error(w, "invalid fecha_inicio", http.StatusBadRequest)
			return
		}
	}
	if v := q.Get("fecha_fin"); v != "" {
		if filter.To, err = pages.ParseFilterDate(v); err != nil {
			http.Error(w, "invalid fecha_fin", http.StatusBadRequest)
			return
		}
	}

	p := pages.NewWastePage(s.deps())
	defer p.Unmount()
	p.SetFilter(filter)
	loadErr := p.Load(r.Context())
	st := p.State()
	if loadErr != nil && st.RecordsErr != nil {
		s.fail(w, st.RecordsErr, st)
		return
	}
	if httpclient.IsUnauthorized(loadErr) {
		s.fail(w, loadErr, nil)
		return
	}
	s.respond(w, http.StatusOK, wasteView(st))
}

type wastePayload struct {
	pages.WasteState
	RecordsError string `json:"records_error,omitempty"`
	TypesError   string `json:"types_error,omitempty"`
}

func wasteView(st pages.WasteState) wastePayload {
	out := wastePayload{WasteState: st}
	if st.RecordsErr != nil {
		out.RecordsError = pages.MsgWasteError
	}
	if st.TypesErr != nil {
		out.TypesError = pages.MsgCatalogError
	}
	return out
}

func (s *Shell) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	p := pages.NewProfilePage(s.deps())
	defer p.Unmount()
	if err := p.Load(r.Context()); err != nil {
		s.fail(w, err, p.State())
		return
	}
	s.respond(w, http.StatusOK, p.State())
}

func (s *Shell) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var body models.ProfileUpdate
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Error: "invalid body", Notifications: s.queue.List()})
		return
	}
	p := pages.NewProfilePage(s.deps())
	defer p.Unmount()
	if err := p.Update(r.Context(), body); err != nil {
		s.fail(w, err, nil)
		return
	}
	s.respond(w, http.StatusOK, p.State())
}

func (s *Shell) PasswordHandler(w http.ResponseWriter, r *http.Request) {
	var body models.PasswordChange
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Error: "invalid body", Notifications: s.queue.List()})
		return
	}
	p := pages.NewProfilePage(s.deps())
	defer p.Unmount()
	if err := p.ChangePassword(r.Context(), body); err != nil {
		s.fail(w, err, nil)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Shell) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, nil)
}

func (s *Shell) DismissHandler(w http.ResponseWriter, r *http.Request) {
	if !s.queue.Dismiss(mux.Vars(r)["id"]) {
		writeJSON(w, http.StatusNotFound, envelope{Error: "unknown notification", Notifications: s.queue.List()})
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Shell) ThemeToggleHandler(w http.ResponseWriter, r *http.Request) {
	next, err := s.theme.Toggle()
	if err != nil {
		s.log.WithError(err).Warn("persist theme")
	}
	s.respond(w, http.StatusOK, map[string]string{"theme": string(next)})
}
