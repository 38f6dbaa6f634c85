package authz

import (
	"github.com/jhoicas/Almacen-api/internal/application/fulfillment"
	domfulfillment "github.com/jhoicas/Almacen-api/internal/domain/fulfillment"
)

// Roles reconocidos por el sistema.
const (
	RoleAdmin      = "admin"
	RoleMaintChief = "jefe_mantenimiento"
	RoleWarehouse  = "bodeguero"
	RoleTechnician = "tecnico"
)

// RoleMatrix autorización estática por rol. El admin puede todo;
// el resto de roles solo las acciones listadas en su fila.
type RoleMatrix struct {
	allowed map[string]map[string]bool
}

var _ fulfillment.Authorizer = (*RoleMatrix)(nil)

func NewRoleMatrix() *RoleMatrix {
	return &RoleMatrix{
		allowed: map[string]map[string]bool{
			RoleTechnician: {
				domfulfillment.ActionCreateRequest:  true,
				domfulfillment.ActionConfirmReceipt: true,
				domfulfillment.ActionCancelRequest:  true,
				domfulfillment.ActionReadStock:      true,
			},
			RoleMaintChief: {
				domfulfillment.ActionCreateRequest:  true,
				domfulfillment.ActionApproveRequest: true,
				domfulfillment.ActionRejectRequest:  true,
				domfulfillment.ActionConfirmReceipt: true,
				domfulfillment.ActionCancelRequest:  true,
				domfulfillment.ActionReadStock:      true,
			},
			RoleWarehouse: {
				domfulfillment.ActionDispatch:       true,
				domfulfillment.ActionReceiveTransit: true,
				domfulfillment.ActionAdjustStock:    true,
				domfulfillment.ActionRegisterReturn: true,
				domfulfillment.ActionRegisterDamage: true,
				domfulfillment.ActionReadStock:      true,
			},
		},
	}
}

// CanPerform indica si el rol puede ejecutar la acción.
func (m *RoleMatrix) CanPerform(role, action string) bool {
	if role == RoleAdmin {
		return true
	}
	return m.allowed[role][action]
}
