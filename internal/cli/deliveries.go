package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"recolector/internal/models"
	"recolector/internal/pages"
)

func newPendingCommand(rt *cmdState) *cobra.Command {
	return &cobra.Command{
		Use:     "pending",
		Aliases: []string{"entregas"},
		Args:    cobra.NoArgs,
		Short:   "Canjes pendientes de entrega",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireSession(); err != nil {
				return err
			}
			p := pages.NewPendingPage(rt.app.Deps())
			defer p.Unmount()
			if err := p.Load(cmd.Context()); err != nil {
				return rt.result(err)
			}
			printRedemptions(cmd, p.State())
			return nil
		},
	}
}

func newDeliverCommand(rt *cmdState) *cobra.Command {
	return &cobra.Command{
		Use:   "deliver <id>",
		Args:  cobra.ExactArgs(1),
		Short: "Marcar un canje como entregado",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			if err := rt.requireSession(); err != nil {
				return err
			}
			p := pages.NewPendingPage(rt.app.Deps())
			defer p.Unmount()
			if err := p.MarkDelivered(cmd.Context(), id); err != nil {
				return rt.result(err)
			}
			printRedemptions(cmd, p.State())
			return rt.result(nil)
		},
	}
}

func printRedemptions(cmd *cobra.Command, st pages.PendingState) {
	out := cmd.OutOrStdout()
	if st.Empty() {
		fmt.Fprintln(out, st.EmptyMessage())
		return
	}
	var rows [][]string
	for _, r := range st.Redemptions {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.ArticleName(),
			customer(r.Usuario),
			dni(r.Usuario),
			pts(r.AbsPoints()),
			r.CodigoReclamacion,
			formatDate(r.CreatedAt),
		})
	}
	table(out, []string{"ID", "ARTÍCULO", "CLIENTE", "DNI", "PUNTOS", "CÓDIGO", "FECHA"}, rows)
}

func newDeliveriesCommand(rt *cmdState) *cobra.Command {
	return &cobra.Command{
		Use:     "deliveries",
		Aliases: []string{"historial"},
		Args:    cobra.NoArgs,
		Short:   "Historial de entregas",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireSession(); err != nil {
				return err
			}
			p := pages.NewHistoryPage(rt.app.Deps())
			defer p.Unmount()
			if err := p.Load(cmd.Context()); err != nil {
				return rt.result(err)
			}
			st := p.State()
			out := cmd.OutOrStdout()
			kv(out,
				"Entregas", strconv.Itoa(st.Stats.Deliveries),
				"Puntos canjeados", pts(st.Stats.TotalPoints),
				"Este mes", strconv.Itoa(st.Stats.ThisMonth),
			)
			if st.Empty() {
				fmt.Fprintln(out, "No hay entregas registradas")
				return nil
			}
			var rows [][]string
			for _, r := range st.Redemptions {
				rows = append(rows, []string{
					strconv.FormatInt(r.ID, 10),
					r.ArticleName(),
					customer(r.Usuario),
					pts(r.AbsPoints()),
					formatDate(r.UpdatedAt),
				})
			}
			table(out, []string{"ID", "ARTÍCULO", "CLIENTE", "PUNTOS", "ENTREGADO"}, rows)
			return nil
		},
	}
}

func customer(p *models.Person) string {
	if name := p.FullName(); name != "" {
		return name
	}
	return "-"
}

func dni(p *models.Person) string {
	if p == nil || p.DNI == "" {
		return "-"
	}
	return p.DNI
}
