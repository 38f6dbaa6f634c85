// Package fulfillment contiene la lógica pura del ciclo de vida de solicitudes:
// la tabla cerrada de transiciones y las acciones autorizables.
package fulfillment

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// Acciones sobre solicitudes y stock. Son las llaves de la tabla de transiciones
// y del chequeo de capacidades (Authorizer.CanPerform).
const (
	ActionCreateRequest  = "request.create"
	ActionApproveRequest = "request.approve"
	ActionRejectRequest  = "request.reject"
	ActionDispatch       = "request.dispatch"
	ActionReceiveTransit = "request.receive_transit"
	ActionConfirmReceipt = "request.confirm_receipt"
	ActionCancelRequest  = "request.cancel"

	ActionAdjustStock    = "stock.adjust"
	ActionRegisterReturn = "stock.return"
	ActionRegisterDamage = "stock.damage"
	ActionReadStock      = "stock.read"
)

// transitions es la lista blanca: estado actual + acción → estado resultante.
// Toda transición fuera de la tabla falla sin escrituras parciales.
// ReceiveTransit y ConfirmReceipt parcial dejan la solicitud en IN_TRANSIT; el
// caso de uso solo promueve a DELIVERED cuando lo entregado alcanza lo aprobado.
var transitions = map[string]map[string]string{
	entity.RequestStatusPending: {
		ActionApproveRequest: entity.RequestStatusApproved,
		ActionRejectRequest:  entity.RequestStatusRejected,
		ActionCancelRequest:  entity.RequestStatusCancelled,
	},
	entity.RequestStatusApproved: {
		ActionDispatch:      entity.RequestStatusInTransit,
		ActionCancelRequest: entity.RequestStatusCancelled,
	},
	entity.RequestStatusInTransit: {
		ActionReceiveTransit: entity.RequestStatusInTransit,
		ActionConfirmReceipt: entity.RequestStatusDelivered,
	},
}

// Next devuelve el estado resultante de aplicar la acción sobre el estado actual,
// y si la transición está permitida.
func Next(status, action string) (string, bool) {
	byAction, ok := transitions[status]
	if !ok {
		return "", false
	}
	next, ok := byAction[action]
	return next, ok
}

// CanTransition indica si la acción es legal desde el estado actual.
func CanTransition(status, action string) bool {
	_, ok := Next(status, action)
	return ok
}
