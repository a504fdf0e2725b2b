// Package cli is the command-line front end of the collector client. Each
// command drives one page controller and prints its state.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"recolector/internal/config"
	"recolector/internal/notify"
	"recolector/internal/utils"
)

const MsgNotLoggedIn = "No has iniciado sesión. Usa `recolector login`."

type cmdState struct {
	configPath string
	baseURL    string
	logLevel   string

	// newApp is replaced in tests.
	newApp func(cfg *config.Config, out io.Writer) (*App, error)
	app    *App
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&cmdState{newApp: NewApp})
}

func newRootCmd(rt *cmdState) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "recolector",
		Short:         "Cliente de EcoPuntos para recolectores",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rt.configPath)
			if err != nil {
				return err
			}
			if rt.baseURL != "" {
				cfg.API.BaseURL = rt.baseURL
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			if rt.logLevel != "" {
				cfg.Log.Level = rt.logLevel
			}
			app, err := rt.newApp(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			rt.app = app
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rt.configPath, "config", "", "config file (default ./config.yaml or ~/.recolector/config.yaml)")
	flags.StringVar(&rt.baseURL, "base-url", "", "API base URL, overrides api.base_url")
	flags.StringVar(&rt.logLevel, "log-level", "", "log level, overrides log.level")

	rootCmd.AddCommand(
		newLoginCommand(rt),
		newLogoutCommand(rt),
		newWhoamiCommand(rt),
		newDashboardCommand(rt),
		newTypesCommand(rt),
		newGenerateCommand(rt),
		newCodesCommand(rt),
		newPendingCommand(rt),
		newDeliverCommand(rt),
		newDeliveriesCommand(rt),
		newWasteCommand(rt),
		newPointsCommand(rt),
		newProfileCommand(rt),
		newThemeCommand(rt),
		newServeCommand(rt),
	)
	return rootCmd
}

func (rt *cmdState) close() {
	if rt.app != nil {
		rt.app.Close()
		rt.app = nil
	}
}

// requireSession fails the command unless a collector is signed in.
func (rt *cmdState) requireSession() error {
	if rt.app.Store.Snapshot().Authenticated() {
		return nil
	}
	rt.app.Console.Push(MsgNotLoggedIn, notify.Warning)
	return utils.New(ExitNoAuth, MsgNotLoggedIn)
}

// result turns a page outcome into the command error. Messages already shown
// as notifications are not repeated.
func (rt *cmdState) result(err error) error {
	if err == nil {
		return rt.app.Console.Err()
	}
	if !rt.app.Store.Snapshot().Authenticated() {
		return utils.New(ExitNoAuth, MsgSessionExpired)
	}
	if cerr := rt.app.Console.Err(); cerr != nil {
		return cerr
	}
	return err
}

// Execute runs the CLI with os.Args and returns the process exit code.
func Execute(ctx context.Context) int {
	return ExecuteArgs(ctx, os.Args[1:])
}

func ExecuteArgs(ctx context.Context, args []string) int {
	rt := &cmdState{newApp: NewApp}
	defer rt.close()
	cmd := newRootCmd(rt)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ce *utils.CustomError
	if !errors.As(err, &ce) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
	return utils.ExitCode(err)
}
