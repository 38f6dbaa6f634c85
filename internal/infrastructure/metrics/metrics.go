// Package metrics expone contadores Prometheus del flujo de solicitudes
// e inventario. El registry se monta en /metrics desde cmd/api.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector agrupa los colectores del servicio sobre un registry propio.
type Collector struct {
	registry *prometheus.Registry

	requestTransitions *prometheus.CounterVec
	movementsRecorded  *prometheus.CounterVec
	insufficientStock  prometheus.Counter
	invariantFailures  prometheus.Counter
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requestTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_request_transitions_total",
				Help: "Transiciones de estado de solicitudes, por acción y resultado",
			},
			[]string{"action", "outcome"},
		),
		movementsRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_movements_recorded_total",
				Help: "Movimientos de stock registrados en el libro mayor, por tipo",
			},
			[]string{"type"},
		),
		insufficientStock: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stock_insufficient_rejections_total",
				Help: "Reservas o transferencias rechazadas por stock insuficiente",
			},
		),
		invariantFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stock_invariant_violations_total",
				Help: "Violaciones de invariantes detectadas (bug o corrupción de datos)",
			},
		),
	}

	c.registry.MustRegister(
		c.requestTransitions,
		c.movementsRecorded,
		c.insufficientStock,
		c.invariantFailures,
	)
	return c
}

// Registry retorna el registry para montar el handler HTTP.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) RequestTransition(action, outcome string) {
	c.requestTransitions.WithLabelValues(action, outcome).Inc()
}

func (c *Collector) MovementRecorded(movementType string) {
	c.movementsRecorded.WithLabelValues(movementType).Inc()
}

func (c *Collector) InsufficientStock() {
	c.insufficientStock.Inc()
}

func (c *Collector) InvariantViolation() {
	c.invariantFailures.Inc()
}
