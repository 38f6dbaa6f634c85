package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
)

// InsufficientStockError indica que la bodega elegida no tiene cantidad disponible
// suficiente. Lleva el faltante exacto para que el aprobador decida otra fuente.
type InsufficientStockError struct {
	ItemID     string
	LocationID string
	Requested  decimal.Decimal
	Available  decimal.Decimal
}

// Shortfall devuelve la cantidad que falta para cubrir lo solicitado.
func (e *InsufficientStockError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Available)
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente en %s: solicitado %s, disponible %s (faltan %s)",
		e.LocationID, e.Requested.String(), e.Available.String(), e.Shortfall().String())
}

// InvalidStateTransitionError indica que la acción no es legal desde el estado actual
// de la solicitud. Señal de carrera o de bug en el caller; no se reintenta.
type InvalidStateTransitionError struct {
	RequestID string
	From      string
	Action    string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("transición inválida: acción %s no permitida desde estado %s (solicitud %s)",
		e.Action, e.From, e.RequestID)
}

// InvariantViolationError indica que una operación dejaría un contador en estado
// imposible (reservado negativo, libro mayor descuadrado). Es fatal para la operación:
// aborta la transacción y se registra para el operador. Nunca se corrige en silencio.
type InvariantViolationError struct {
	Op     string
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariante violado en %s: %s", e.Op, e.Detail)
}

// CrossCompanyRoutingError indica una cadena de traslado entre empresas mal armada:
// la empresa de un tramo no coincide con la empresa del tramo siguiente.
type CrossCompanyRoutingError struct {
	FromCompanyID string
	ToCompanyID   string
}

func (e *CrossCompanyRoutingError) Error() string {
	return fmt.Sprintf("ruta entre empresas inválida: el tramo termina en la empresa %s y el siguiente parte de %s",
		e.ToCompanyID, e.FromCompanyID)
}

// StateAlreadyReachedError indica que el checkpoint ya fue registrado. El caller puede
// tratarlo como no-op; el core lo rechaza para no duplicar entregas ni movimientos.
type StateAlreadyReachedError struct {
	RequestID  string
	Checkpoint string
}

func (e *StateAlreadyReachedError) Error() string {
	return fmt.Sprintf("checkpoint %s ya registrado en la solicitud %s", e.Checkpoint, e.RequestID)
}
