package entity

import "time"

// Tipos de ubicación física donde puede haber stock.
const (
	LocationTypeWarehouse = "WAREHOUSE" // bodega
	LocationTypeSite      = "SITE"      // obra / sitio de trabajo
	LocationTypeVehicle   = "VEHICLE"   // vehículo de un técnico
)

// ValidLocationType indica si el tipo pertenece al conjunto cerrado.
func ValidLocationType(t string) bool {
	return t == LocationTypeWarehouse || t == LocationTypeSite || t == LocationTypeVehicle
}

// LocationRef identifica una ubicación por ID + tipo. Es la llave con la que el
// libro de stock y los movimientos referencian ubicaciones heterogéneas.
type LocationRef struct {
	ID   string
	Type string
}

// Location representa una entrada del directorio de ubicaciones (bodega, obra o
// vehículo) con su empresa dueña. El core la consume como hecho resuelto; la
// administración del directorio vive fuera de este subsistema.
type Location struct {
	ID        string
	CompanyID string
	Type      string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Ref devuelve la referencia (ID + tipo) de la ubicación.
func (l *Location) Ref() LocationRef {
	return LocationRef{ID: l.ID, Type: l.Type}
}
