package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"recolector/internal/models"
	"recolector/internal/pages"
	"recolector/internal/theme"
)

func newProfileCommand(rt *cmdState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"perfil"},
		Args:    cobra.NoArgs,
		Short:   "Ver y editar el perfil",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireSession(); err != nil {
				return err
			}
			p := pages.NewProfilePage(rt.app.Deps())
			defer p.Unmount()
			if err := p.Load(cmd.Context()); err != nil {
				return rt.result(err)
			}
			printProfile(cmd, p.State().User)
			return nil
		},
	}
	cmd.AddCommand(newProfileUpdateCommand(rt), newPasswordCommand(rt))
	return cmd
}

func printProfile(cmd *cobra.Command, u *models.User) {
	if u == nil {
		return
	}
	kv(cmd.OutOrStdout(),
		"Nombre", u.Nombre,
		"Apellido", u.Apellido,
		"Email", u.Email,
		"Teléfono", u.Telefono,
		"DNI", u.DNI,
		"Puntos", pts(u.Puntos.Float()),
	)
}

func newProfileUpdateCommand(rt *cmdState) *cobra.Command {
	var form models.ProfileUpdate
	cmd := &cobra.Command{
		Use:   "update",
		Args:  cobra.NoArgs,
		Short: "Actualizar datos del perfil",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireSession(); err != nil {
				return err
			}
			p := pages.NewProfilePage(rt.app.Deps())
			defer p.Unmount()

			// Unset flags keep the current values.
			merged := p.State().Form
			flags := cmd.Flags()
			if flags.Changed("nombre") {
				merged.Nombre = form.Nombre
			}
			if flags.Changed("apellido") {
				merged.Apellido = form.Apellido
			}
			if flags.Changed("email") {
				merged.Email = form.Email
			}
			if flags.Changed("telefono") {
				merged.Telefono = form.Telefono
			}
			if flags.Changed("dni") {
				merged.DNI = form.DNI
			}
			if err := p.Update(cmd.Context(), merged); err != nil {
				return rt.result(err)
			}
			printProfile(cmd, p.State().User)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.Nombre, "nombre", "", "nombre")
	f.StringVar(&form.Apellido, "apellido", "", "apellido")
	f.StringVar(&form.Email, "email", "", "correo electrónico")
	f.StringVar(&form.Telefono, "telefono", "", "teléfono")
	f.StringVar(&form.DNI, "dni", "", "DNI (máximo 8 caracteres)")
	return cmd
}

func newPasswordCommand(rt *cmdState) *cobra.Command {
	var form models.PasswordChange
	cmd := &cobra.Command{
		Use:   "password",
		Args:  cobra.NoArgs,
		Short: "Cambiar la contraseña",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireSession(); err != nil {
				return err
			}
			if form.CurrentPassword == "" {
				form.CurrentPassword = os.Getenv(PasswordEnv)
			}
			p := pages.NewProfilePage(rt.app.Deps())
			defer p.Unmount()
			if err := p.ChangePassword(cmd.Context(), form); err != nil {
				return rt.result(err)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.CurrentPassword, "current", "", "contraseña actual (o "+PasswordEnv+")")
	f.StringVar(&form.NewPassword, "new", "", "nueva contraseña")
	f.StringVar(&form.NewPasswordConfirmation, "confirm", "", "confirmar nueva contraseña")
	return cmd
}

func newThemeCommand(rt *cmdState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Args:  cobra.NoArgs,
		Short: "Mostrar el tema actual",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), rt.app.Theme.Current())
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Args:  cobra.NoArgs,
		Short: "Alternar entre tema oscuro y claro",
		RunE: func(cmd *cobra.Command, args []string) error {
			next, err := rt.app.Theme.Toggle()
			if err != nil {
				return fmt.Errorf("save theme: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), next)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:       "set <dark|light>",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(theme.Dark), string(theme.Light)},
		Short:     "Elegir el tema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.app.Theme.Set(theme.Theme(args[0])); err != nil {
				return fmt.Errorf("save theme: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), rt.app.Theme.Current())
			return nil
		},
	})
	return cmd
}
