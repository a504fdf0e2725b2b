package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"recolector/internal/pages"
	"recolector/internal/utils"
)

// PasswordEnv supplies the login password when --password is omitted.
const PasswordEnv = "RECOLECTOR_PASSWORD"

func newLoginCommand(rt *cmdState) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Args:  cobra.NoArgs,
		Short: "Iniciar sesión como recolector",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(PasswordEnv)
			}
			res := pages.NewLoginPage(rt.app.Store, rt.app.Console).Submit(cmd.Context(), pages.LoginForm{Email: email, Password: password})
			if !res.Success {
				return utils.New(ExitFailure, res.Message)
			}
			if u := rt.app.Store.Snapshot().User; u != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", u.FullName(), u.Email)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "correo electrónico")
	cmd.Flags().StringVarP(&password, "password", "p", "", "contraseña (o "+PasswordEnv+")")
	return cmd
}

func newLogoutCommand(rt *cmdState) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Args:  cobra.NoArgs,
		Short: "Cerrar sesión",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt.app.Store.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Sesión cerrada")
			return nil
		},
	}
}

func newWhoamiCommand(rt *cmdState) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Args:  cobra.NoArgs,
		Short: "Mostrar el usuario de la sesión",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireSession(); err != nil {
				return err
			}
			u := rt.app.Store.Snapshot().User
			kv(cmd.OutOrStdout(),
				"Nombre", u.FullName(),
				"Email", u.Email,
				"Rol", u.Rol,
				"Puntos", pts(u.Puntos.Float()),
				"API", rt.app.Client.BaseURL(),
			)
			return nil
		},
	}
}
