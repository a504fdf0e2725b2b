package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"recolector/internal/files"
	"recolector/internal/models"
	"recolector/internal/pages"
)

func newDashboardCommand(rt *cmdState) *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"d"},
		Args:    cobra.NoArgs,
		Short:   "Resumen de puntos y códigos",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireSession(); err != nil {
				return err
			}
			p := pages.NewDashboardPage(rt.app.Deps())
			defer p.Unmount()
			if err := p.Load(cmd.Context()); err != nil {
				return rt.result(err)
			}
			st := p.State()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, st.Greeting)
			s := st.Summary
			kv(out,
				"Puntos distribuidos", pts(s.TotalPuntosDistribuidos.Float()),
				"Residuos registrados", strconv.Itoa(int(s.TotalResiduosRegistrados)),
				"Kg recolectados", kg(s.TotalKgRecolectados.Float()),
				"Entregas pendientes", strconv.Itoa(int(s.ArticulosPendientesEntrega)),
				"QRs disponibles", strconv.Itoa(int(s.QRsDisponibles)),
				"QRs reclamados", strconv.Itoa(int(s.QRsReclamados)),
			)
			if ap := s.PuntoAcopio; ap != nil {
				kv(out, "Punto de acopio", ap.DisplayName(), "Dirección", ap.Direccion, "Estado", ap.Estado)
			}
			return rt.result(nil)
		},
	}
}

func newTypesCommand(rt *cmdState) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Args:  cobra.NoArgs,
		Short: "Tipos de residuo y puntos por kg",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireSession(); err != nil {
				return err
			}
			p := pages.NewGeneratePage(rt.app.Deps())
			defer p.Unmount()
			if err := p.Load(cmd.Context()); err != nil {
				return rt.result(err)
			}
			var rows [][]string
			for _, t := range p.State().Types {
				rows = append(rows, []string{strconv.FormatInt(t.ID, 10), t.Nombre, fmt.Sprintf("%g", t.PuntosPorKg.Float())})
			}
			table(cmd.OutOrStdout(), []string{"ID", "TIPO", "PUNTOS/KG"}, rows)
			return rt.result(nil)
		},
	}
}

func newGenerateCommand(rt *cmdState) *cobra.Command {
	var (
		tipo   string
		weight float64
		qrOut  string
	)
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"generar"},
		Args:    cobra.NoArgs,
		Short:   "Registrar residuos y generar un código QR",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireSession(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			p := pages.NewGeneratePage(rt.app.Deps())
			defer p.Unmount()

			// The estimate is advisory; a missing catalog does not block submission.
			if err := p.Load(cmd.Context()); err == nil && tipo != "" && weight > 0 {
				fmt.Fprintf(out, "Puntos estimados: %d\n", p.Estimate(tipo, weight))
			}

			created, err := p.Submit(cmd.Context(), pages.GenerateForm{TipoResiduo: tipo, CantidadKg: weight})
			if err != nil {
				return rt.result(err)
			}
			pairs := []string{"Código", created.Codigo}
			if r := created.Residuo; r != nil {
				pairs = append(pairs,
					"Tipo", r.Tipo,
					"Cantidad", kg(r.CantidadKg.Float()),
					"Puntos", pts(r.Puntos.Float()),
				)
			}
			kv(out, pairs...)
			if qrOut != "" {
				path, err := files.ExportQR(qrOut, created.Codigo, files.DefaultQRSize)
				if err != nil {
					return fmt.Errorf("export QR: %w", err)
				}
				fmt.Fprintln(out, "QR guardado en", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&tipo, "tipo", "t", "", "tipo de residuo")
	cmd.Flags().Float64VarP(&weight, "kg", "k", 0, "cantidad en kg")
	cmd.Flags().StringVar(&qrOut, "qr-out", "", "directorio donde guardar el QR en PNG")
	return cmd
}

func newCodesCommand(rt *cmdState) *cobra.Command {
	var estado string
	cmd := &cobra.Command{
		Use:     "codes",
		Aliases: []string{"qrs"},
		Args:    cobra.NoArgs,
		Short:   "Listar los QRs emitidos",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireSession(); err != nil {
				return err
			}
			p := pages.NewCodesPage(rt.app.Deps())
			defer p.Unmount()
			p.SetFilter(estado)
			if err := p.Load(cmd.Context()); err != nil {
				return rt.result(err)
			}
			st := p.State()
			out := cmd.OutOrStdout()
			if st.Empty() {
				fmt.Fprintln(out, st.EmptyMessage())
				return nil
			}
			var rows [][]string
			for _, c := range st.Visible {
				rows = append(rows, []string{
					c.CodigoQR,
					c.TipoResiduo,
					kg(c.CantidadKg.Float()),
					pts(c.Puntos.Float()),
					models.StatusLabel(c.Estado),
					c.Customer(),
					formatDate(c.CreatedAt),
				})
			}
			table(out, []string{"CÓDIGO", "TIPO", "CANTIDAD", "PUNTOS", "ESTADO", "CLIENTE", "FECHA"}, rows)
			fmt.Fprintf(out, "Total: %d QRs (disponibles %d, reclamados %d, expirados %d)\n",
				len(st.Visible), st.Totals[models.StatusAvailable], st.Totals[models.StatusClaimed], st.Totals[models.StatusExpired])
			return nil
		},
	}
	cmd.Flags().StringVar(&estado, "estado", "", "filtrar por estado (disponible, reclamado, expirado)")
	cmd.AddCommand(newCodeQRCommand(rt))
	return cmd
}

func newCodeQRCommand(rt *cmdState) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "qr <codigo>",
		Args:  cobra.ExactArgs(1),
		Short: "Guardar un QR emitido como PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.requireSession(); err != nil {
				return err
			}
			p := pages.NewCodesPage(rt.app.Deps())
			defer p.Unmount()
			if err := p.Load(cmd.Context()); err != nil {
				return rt.result(err)
			}
			qr, ok := p.Find(args[0])
			if !ok {
				return fmt.Errorf("%s: %s", pages.MsgNoCodes, args[0])
			}
			content := qr.CodigoQR
			if content == "" {
				content = qr.CodigoReclamacion
			}
			path, err := files.ExportQR(dir, content, files.DefaultQRSize)
			if err != nil {
				return fmt.Errorf("export QR: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "QR guardado en", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "out", "o", ".", "directorio de salida")
	return cmd
}

func formatDate(t models.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02/01/2006 15:04")
}
