package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberAcceptsStringsAndNumbers(t *testing.T) {
	var w ReceivedWaste
	require.NoError(t, json.Unmarshal([]byte(`{"cantidad_kg":"2.50","puntos_otorgados":13,"fecha_recepcion":"2024-05-02 10:11:12"}`), &w))
	assert.Equal(t, 2.5, w.CantidadKg.Float())
	assert.Equal(t, 13.0, w.PuntosOtorgados.Float())
	assert.Equal(t, time.Date(2024, 5, 2, 10, 11, 12, 0, time.UTC), w.FechaRecepcion.Time)

	var n Number
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &n))
	require.NoError(t, json.Unmarshal([]byte(`null`), &n))
	assert.Zero(t, n)
}

func TestTimeLayouts(t *testing.T) {
	for _, s := range []string{"2024-05-02T10:11:12Z", "2024-05-02T10:11:12.000000Z", "2024-05-02T10:11:12", "2024-05-02"} {
		_, err := ParseTime(s)
		assert.NoError(t, err, s)
	}
	var tm Time
	require.NoError(t, json.Unmarshal([]byte(`null`), &tm))
	assert.True(t, tm.IsZero())
	require.NoError(t, json.Unmarshal([]byte(`"yesterday"`), &tm))
	assert.True(t, tm.IsZero())

	var codes List[QRCode]
	require.NoError(t, json.Unmarshal([]byte(`[{"codigo_qr":"A","created_at":"2024-01-15T10:30:00"},{"codigo_qr":"B","created_at":"pronto"}]`), &codes))
	require.Len(t, codes, 2)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), codes[0].CreatedAt.Time)
	assert.True(t, codes[1].CreatedAt.IsZero())
}

func TestBoolAcceptsNumbersAndStrings(t *testing.T) {
	var list List[Redemption]
	require.NoError(t, json.Unmarshal([]byte(`[{"id_transaccion":1,"entregado":0},{"id_transaccion":2,"entregado":1},{"id_transaccion":3,"entregado":"1"},{"id_transaccion":4,"entregado":true},{"id_transaccion":5,"entregado":"0"},{"id_transaccion":6,"entregado":null}]`), &list))
	require.Len(t, list, 6)
	got := make([]bool, len(list))
	for i, r := range list {
		got[i] = bool(r.Entregado)
	}
	assert.Equal(t, []bool{false, true, true, true, false, false}, got)

	var b Bool
	assert.Error(t, json.Unmarshal([]byte(`"quizás"`), &b))
}

func TestListEnvelope(t *testing.T) {
	var bare, wrapped List[WasteType]
	require.NoError(t, json.Unmarshal([]byte(`[{"id_tipo":1,"nombre":"Plástico","puntos_por_kg":5}]`), &bare))
	require.NoError(t, json.Unmarshal([]byte(`{"data":[{"id_tipo":1,"nombre":"Plástico","puntos_por_kg":"5"}]}`), &wrapped))
	assert.Equal(t, bare, wrapped)
}

func TestUserPatch(t *testing.T) {
	u := User{Nombre: "Ana", Apellido: "Paz", Email: "a@b.com", Rol: RoleCollector}
	name := "Ana María"
	got := UserPatch{Nombre: &name}.Apply(u)
	assert.Equal(t, "Ana María Paz", got.FullName())
	assert.Equal(t, "a@b.com", got.Email)
	assert.True(t, got.IsCollector())
}

func TestDisplayHelpers(t *testing.T) {
	assert.Equal(t, "Sin reclamar", QRCode{}.Customer())
	assert.Equal(t, "Luis Rojas", QRCode{Cliente: &Person{Nombre: "Luis", Apellido: "Rojas"}}.Customer())
	assert.Equal(t, "Artículo", Redemption{}.ArticleName())
	assert.Equal(t, 150.0, Redemption{Puntos: -150}.AbsPoints())
	assert.Equal(t, "Reclamado", StatusLabel(StatusClaimed))
}
