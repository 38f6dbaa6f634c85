// Package pdf implementa la generación de la Guía de Entrega de materiales
// (soporte documental del despacho de una solicitud de inventario).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Guía de Entrega + N° Solicitud + Fecha             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORIGEN: bodega despachadora                                │
//	│  DESTINO: ubicación receptora + solicitante                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  MATERIAL: código | descripción | unidad | cant. entregada  │
//	│  MOVIMIENTOS: fecha | tipo | cantidad                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: cantidad entregada / valor referencial            │
//	│  FOOTER: firmas entrega / recepción                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appfulfillment "github.com/jhoicas/Almacen-api/internal/application/fulfillment"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa fulfillment.DeliveryNotePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateDeliveryNotePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateDeliveryNotePDF(
	_ context.Context,
	data *appfulfillment.DeliveryNoteData,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Guía de Entrega de Materiales", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data.Request))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(origenRow(data.Source))
	m.AddRows(destinoRow(data.Request, data.Destination))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	// Material solicitado
	m.AddRows(materialHeaderRow())
	m.AddRows(materialRow(data))

	// Historial de movimientos asociados a la solicitud
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(movementsHeaderRow())
	for _, r := range movementRows(data.Movements) {
		m.AddRows(r)
	}

	// Totales y firmas
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(data))
	m.AddRows(line.NewRow(6))
	m.AddRows(signaturesRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y N° de solicitud + fecha (der).
func headerRow(req *entity.InventoryRequest) core.Row {
	fecha := req.CreatedAt.Format("02/01/2006")
	if req.ReceivedAt != nil {
		fecha = req.ReceivedAt.Format("02/01/2006")
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New("GUÍA DE ENTREGA DE MATERIALES", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Soporte de despacho interno", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("SOLICITUD DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(req.ID, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// origenRow: bodega despachadora.
func origenRow(source *entity.Location) core.Row {
	name, kind := "—", "—"
	if source != nil {
		name, kind = source.Name, source.Type
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("ORIGEN (BODEGA DESPACHADORA)", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s   |   Tipo: %s", name, kind),
				props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// destinoRow: ubicación receptora y solicitante.
func destinoRow(req *entity.InventoryRequest, dest *entity.Location) core.Row {
	name := "—"
	if dest != nil {
		name = dest.Name
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("DESTINO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Tipo: %s   |   Solicitante: %s   |   Urgencia: %s",
				req.DestinationLocationType, req.RequesterID, req.Urgency,
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// materialHeaderRow: cabecera de la línea de material.
func materialHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Código", 2, align.Left),
		h("Descripción del material", 5, align.Left),
		h("Unidad", 1, align.Center),
		h("Solicitado", 2, align.Right),
		h("Entregado", 2, align.Right),
	)
}

func materialRow(data *appfulfillment.DeliveryNoteData) core.Row {
	return row.New(7).Add(
		col.New(2).Add(text.New(
			data.Item.Code,
			props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
		)),
		col.New(5).Add(text.New(
			data.Item.Name,
			props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
		)),
		col.New(1).Add(text.New(
			data.Item.UnitMeasure,
			props.Text{Size: 8, Align: align.Center, Top: 1},
		)),
		col.New(2).Add(text.New(
			data.Request.QuantityRequested.StringFixed(2),
			props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
		)),
		col.New(2).Add(text.New(
			data.TotalDelivered.StringFixed(2),
			props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
		)),
	)
}

// movementsHeaderRow: cabecera del historial de movimientos.
func movementsHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 3, align.Left),
		h("Tipo de movimiento", 4, align.Left),
		h("Origen → Destino", 3, align.Left),
		h("Cantidad", 2, align.Right),
	)
}

func movementRows(movements []*entity.MovementRecord) []core.Row {
	result := make([]core.Row, 0, len(movements))
	for _, mv := range movements {
		result = append(result, row.New(7).Add(
			col.New(3).Add(text.New(
				mv.Date.Format("02/01/2006 15:04"),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(4).Add(text.New(
				mv.Type,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				sideLabel(mv.FromLocationType)+" → "+sideLabel(mv.ToLocationType),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				mv.Quantity.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(data *appfulfillment.DeliveryNoteData) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	return row.New(18).Add(
		col.New(4),
		col.New(4).Add(
			label("Valor referencial:"),
			grandLabel("TOTAL ENTREGADO:"),
		),
		col.New(4).Add(
			text.New("$"+data.TotalValue.StringFixed(0), props.Text{
				Size: 9, Align: align.Right, Right: 1,
			}),
			grandValue(data.TotalDelivered.StringFixed(2)),
		),
	)
}

// signaturesRow: espacios de firma para quien entrega y quien recibe.
func signaturesRow() core.Row {
	sign := func(label string) core.Col {
		return col.New(6).Add(
			text.New("______________________________", props.Text{
				Size: 9, Align: align.Center, Top: 1, Color: colorGray,
			}),
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Center, Top: 7,
			}),
		)
	}
	return row.New(14).Add(
		sign("ENTREGA (BODEGA)"),
		sign("RECIBE (SOLICITANTE)"),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func sideLabel(locationType string) string {
	if locationType == "" {
		return "—"
	}
	return locationType
}
