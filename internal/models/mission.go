package models

// MissionLogro is the achievement attached to certain main-story missions.
type MissionLogro struct {
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
	Pegatina    string `json:"pegatina"`
}

// Mission is an immutable main-story catalog entry. Catalog ids form a dense
// integer sequence starting at "1"; progression fetches id N+1.
type Mission struct {
	ID          string        `db:"id" json:"id"`
	Nombre      string        `db:"nombre" json:"nombre"`
	Descripcion string        `db:"descripcion" json:"descripcion"`
	Recompensa  int64         `db:"recompensa" json:"recompensa"`
	Imagen      *string       `db:"imagen" json:"imagen,omitempty"`
	Logro       *MissionLogro `db:"-" json:"logro,omitempty"`

	LogroNombre      *string `db:"logro_nombre" json:"-"`
	LogroDescripcion *string `db:"logro_descripcion" json:"-"`
	LogroPegatina    *string `db:"logro_pegatina" json:"-"`
}

// FoldLogro composes the nested achievement from the flattened columns after a
// scan, and flattens it back before a write.
func (m *Mission) FoldLogro() {
	if m.LogroNombre != nil {
		logro := MissionLogro{Nombre: *m.LogroNombre}
		if m.LogroDescripcion != nil {
			logro.Descripcion = *m.LogroDescripcion
		}
		if m.LogroPegatina != nil {
			logro.Pegatina = *m.LogroPegatina
		}
		m.Logro = &logro
		return
	}
	if m.Logro != nil {
		m.LogroNombre = &m.Logro.Nombre
		m.LogroDescripcion = &m.Logro.Descripcion
		m.LogroPegatina = &m.Logro.Pegatina
	}
}
