package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"recolector/internal/auth"
	"recolector/internal/config"
	"recolector/internal/files"
	"recolector/internal/httpclient"
	"recolector/internal/logging"
	"recolector/internal/notify"
	"recolector/internal/pages"
	"recolector/internal/service"
	"recolector/internal/theme"
)

// MsgSessionExpired is shown once when the API rejects the stored token.
const MsgSessionExpired = "Tu sesión expiró. Inicia sesión nuevamente."

// App is the wired client: config, logger, session and remote service.
type App struct {
	Config  *config.Config
	Log     *logrus.Logger
	Storage files.Storage
	Client  *httpclient.Client
	Service *service.Service
	Store   *auth.Store
	Queue   *notify.Queue
	Theme   *theme.Service
	Console *Console

	closeLog func()
}

// NewApp wires every component from cfg and restores the persisted session.
func NewApp(cfg *config.Config, out io.Writer) (*App, error) {
	log, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	storage, err := files.OpenSessionStore(cfg.Session, log)
	if err != nil {
		closeLog()
		return nil, err
	}
	return newApp(cfg, log, closeLog, storage, out)
}

func newApp(cfg *config.Config, log *logrus.Logger, closeLog func(), storage files.Storage, out io.Writer) (*App, error) {
	client, err := httpclient.New(httpclient.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		CADir:   cfg.API.CADir,
		Logger:  log,
	})
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("http client: %w", err)
	}
	svc := service.New(client)
	store := auth.NewStore(svc, storage, log)
	client.SetCredentials(store)

	queue := notify.NewQueue(cfg.Notify.TTL)
	console := NewConsole(out, queue)
	store.OnExpired(func() { console.Push(MsgSessionExpired, notify.Warning) })
	store.Restore()

	return &App{
		Config:   cfg,
		Log:      log,
		Storage:  storage,
		Client:   client,
		Service:  svc,
		Store:    store,
		Queue:    queue,
		Theme:    theme.NewService(storage),
		Console:  console,
		closeLog: closeLog,
	}, nil
}

// Deps returns the page collaborators, reporting through the console.
func (a *App) Deps() pages.Deps {
	return pages.Deps{Backend: a.Service, Session: a.Store, Notifier: a.Console}
}

func (a *App) Close() {
	a.Queue.Close()
	if a.closeLog != nil {
		a.closeLog()
	}
}
