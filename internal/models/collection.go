package models

// Code states as reported by the API.
const (
	StatusAvailable = "disponible"
	StatusClaimed   = "reclamado"
	StatusExpired   = "expirado"
)

// CodeStatuses lists the valid filters for issued codes.
var CodeStatuses = []string{StatusAvailable, StatusClaimed, StatusExpired}

// StatusLabel returns the display label for a code status.
func StatusLabel(status string) string {
	switch status {
	case StatusAvailable:
		return "Disponible"
	case StatusClaimed:
		return "Reclamado"
	case StatusExpired:
		return "Expirado"
	default:
		return status
	}
}

// WasteType is one catalog entry with its points rate.
type WasteType struct {
	ID          int64  `json:"id_tipo"`
	Nombre      string `json:"nombre"`
	PuntosPorKg Number `json:"puntos_por_kg"`
}

// QRCode is a code issued by the collector.
type QRCode struct {
	ID                int64   `json:"id_transaccion"`
	CodigoQR          string  `json:"codigo_qr"`
	CodigoReclamacion string  `json:"codigo_reclamacion"`
	TipoResiduo       string  `json:"tipo_residuo"`
	CantidadKg        Number  `json:"cantidad_kg"`
	Puntos            Number  `json:"puntos"`
	Estado            string  `json:"estado"`
	Cliente           *Person `json:"usuario_cliente,omitempty"`
	CreatedAt         Time    `json:"created_at"`
}

// Customer returns the claiming customer's name or "Sin reclamar".
func (q QRCode) Customer() string {
	if name := q.Cliente.FullName(); name != "" {
		return name
	}
	return "Sin reclamar"
}

// CreateCollectionRequest is the POST /recolector/transacciones body.
type CreateCollectionRequest struct {
	TipoResiduo string  `json:"tipo_residuo" validate:"required"`
	CantidadKg  float64 `json:"cantidad_kg" validate:"required,gt=0"`
}

// CreatedWaste is the server-computed part of a new code.
type CreatedWaste struct {
	Tipo        string `json:"tipo"`
	CantidadKg  Number `json:"cantidad_kg"`
	Puntos      Number `json:"puntos"`
	PrecioPorKg Number `json:"precio_por_kg"`
}

// CreatedCode is the reply to a generate call. Its points are authoritative.
type CreatedCode struct {
	Message string        `json:"message,omitempty"`
	Codigo  string        `json:"codigo"`
	Residuo *CreatedWaste `json:"residuo,omitempty"`
}

// CodeQuery filters GET /recolector/qrs.
type CodeQuery struct {
	Estado string `url:"estado,omitempty"`
}

// ReceivedWaste is one row of the collector's received-waste history.
type ReceivedWaste struct {
	ID              int64  `json:"id_residuo"`
	TipoResiduo     string `json:"tipo_residuo"`
	CantidadKg      Number `json:"cantidad_kg"`
	PuntosOtorgados Number `json:"puntos_otorgados"`
	Estado          string `json:"estado"`
	FechaRecepcion  Time   `json:"fecha_recepcion"`
	Observaciones   string `json:"observaciones,omitempty"`
	CodigoQR        string `json:"codigo_qr,omitempty"`
}

// ReceivedWastePage is the GET /recolector/residuos-recibidos envelope.
type ReceivedWastePage struct {
	Residuos            []ReceivedWaste `json:"residuos"`
	PreciosActuales     any             `json:"precios_actuales,omitempty"`
	EstadisticasPorTipo any             `json:"estadisticas_por_tipo,omitempty"`
}

// WasteQuery filters GET /recolector/residuos-recibidos.
type WasteQuery struct {
	FechaInicio string `url:"fecha_inicio,omitempty"`
	FechaFin    string `url:"fecha_fin,omitempty"`
	Estado      string `url:"estado,omitempty"`
	TipoResiduo string `url:"tipo_residuo,omitempty"`
}

// CollectionPoint is a drop-off location.
type CollectionPoint struct {
	ID          int64  `json:"id"`
	Nombre      string `json:"nombre"`
	NombreLugar string `json:"nombre_lugar,omitempty"`
	Direccion   string `json:"direccion"`
	Estado      string `json:"estado"`
}

// DisplayName prefers the place name over the point name.
func (c CollectionPoint) DisplayName() string {
	if c.NombreLugar != "" {
		return c.NombreLugar
	}
	return c.Nombre
}

// PointsSummary is the GET /recolector/puntos dashboard payload.
type PointsSummary struct {
	TotalPuntosDistribuidos    Number           `json:"total_puntos_distribuidos"`
	TotalResiduosRegistrados   Number           `json:"total_residuos_registrados"`
	ArticulosPendientesEntrega Number           `json:"articulos_pendientes_entrega"`
	TotalKgRecolectados        Number           `json:"total_kg_recolectados"`
	QRsDisponibles             Number           `json:"qrs_disponibles"`
	QRsReclamados              Number           `json:"qrs_reclamados"`
	PuntoAcopio                *CollectionPoint `json:"punto_acopio,omitempty"`
}
