package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"recolector/internal/notify"
	"recolector/internal/pages"
)

const MsgPointsError = "Error al cargar puntos de acopio"

func newWasteCommand(rt *cmdState) *cobra.Command {
	var from, to, estado, tipo string
	cmd := &cobra.Command{
		Use:     "waste",
		Aliases: []string{"residuos"},
		Args:    cobra.NoArgs,
		Short:   "Residuos recibidos",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := pages.WasteFilter{Estado: estado, Tipo: tipo}
			var err error
			if from != "" {
				if filter.From, err = pages.ParseFilterDate(from); err != nil {
					return fmt.Errorf("--desde: %w", err)
				}
			}
			if to != "" {
				if filter.To, err = pages.ParseFilterDate(to); err != nil {
					return fmt.Errorf("--hasta: %w", err)
				}
			}
			if err := rt.requireSession(); err != nil {
				return err
			}

			p := pages.NewWastePage(rt.app.Deps())
			defer p.Unmount()
			p.SetFilter(filter)
			loadErr := p.Load(cmd.Context())
			st := p.State()
			if st.RecordsErr != nil {
				return rt.result(loadErr)
			}

			out := cmd.OutOrStdout()
			kv(out,
				"Registros", strconv.Itoa(st.Stats.Records),
				"Total kg", kg(st.Stats.Kg),
				"Puntos otorgados", pts(st.Stats.Points),
				"Pendientes", strconv.Itoa(st.Stats.Pending),
				"Reclamados", strconv.Itoa(st.Stats.Claimed),
			)
			var rows [][]string
			for _, r := range st.Visible {
				rows = append(rows, []string{
					formatDate(r.FechaRecepcion),
					r.TipoResiduo,
					kg(r.CantidadKg.Float()),
					pts(r.PuntosOtorgados.Float()),
					r.Estado,
					r.CodigoQR,
				})
			}
			fmt.Fprintf(out, "Historial (%d registros)\n", len(st.Visible))
			table(out, []string{"FECHA", "TIPO", "CANTIDAD", "PUNTOS", "ESTADO", "QR"}, rows)
			return rt.result(loadErr)
		},
	}
	cmd.Flags().StringVar(&from, "desde", "", "fecha inicial (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "hasta", "", "fecha final (YYYY-MM-DD)")
	cmd.Flags().StringVar(&estado, "estado", "", "estado del residuo")
	cmd.Flags().StringVar(&tipo, "tipo", "", "tipo de residuo")
	return cmd
}

func newPointsCommand(rt *cmdState) *cobra.Command {
	return &cobra.Command{
		Use:     "points",
		Aliases: []string{"acopio"},
		Args:    cobra.NoArgs,
		Short:   "Puntos de acopio",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireSession(); err != nil {
				return err
			}
			list, err := rt.app.Service.CollectionPoints(cmd.Context())
			if err != nil {
				if rt.app.Store.Snapshot().Authenticated() {
					rt.app.Console.Push(MsgPointsError, notify.Error)
				}
				return rt.result(err)
			}
			var rows [][]string
			for _, p := range list {
				rows = append(rows, []string{strconv.FormatInt(p.ID, 10), p.DisplayName(), p.Direccion, p.Estado})
			}
			table(cmd.OutOrStdout(), []string{"ID", "NOMBRE", "DIRECCIÓN", "ESTADO"}, rows)
			return nil
		},
	}
}
