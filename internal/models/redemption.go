package models

import "math"

// Article is the store item a customer redeemed points for.
type Article struct {
	Nombre    string `json:"nombre"`
	ImagenURL string `json:"imagen_url,omitempty"`
}

// Redemption is a customer's points-for-article exchange awaiting or past hand-off.
type Redemption struct {
	ID                int64    `json:"id_transaccion"`
	Articulo          *Article `json:"articuloTienda,omitempty"`
	Usuario           *Person  `json:"usuario,omitempty"`
	Puntos            Number   `json:"puntos"`
	CodigoReclamacion string   `json:"codigo_reclamacion,omitempty"`
	Entregado         Bool     `json:"entregado"`
	CreatedAt         Time     `json:"created_at"`
	UpdatedAt         Time     `json:"updated_at"`
}

// ArticleName returns the article name or "Artículo".
func (r Redemption) ArticleName() string {
	if r.Articulo != nil && r.Articulo.Nombre != "" {
		return r.Articulo.Nombre
	}
	return "Artículo"
}

// AbsPoints is the magnitude of the points moved; redemptions are stored negative.
func (r Redemption) AbsPoints() float64 {
	return math.Abs(float64(r.Puntos))
}
