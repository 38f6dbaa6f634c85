package fulfillment

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// DeliveryNoteData datos ya resueltos para render de la guía de entrega.
type DeliveryNoteData struct {
	Request        *entity.InventoryRequest
	Item           *entity.Item
	Source         *entity.Location
	Destination    *entity.Location
	Movements      []*entity.MovementRecord
	TotalDelivered decimal.Decimal
	TotalValue     decimal.Decimal
}

// DeliveryNotePDFGenerator puerto de render. La implementación vive en infraestructura.
type DeliveryNotePDFGenerator interface {
	GenerateDeliveryNotePDF(ctx context.Context, data *DeliveryNoteData) ([]byte, error)
}

// DeliveryNoteService arma los datos de la guía a partir de una solicitud entregada.
type DeliveryNoteService struct {
	generator    DeliveryNotePDFGenerator
	requestRepo  repository.RequestRepository
	itemRepo     repository.ItemRepository
	locationRepo repository.LocationRepository
	movRepo      repository.MovementRepository
}

func NewDeliveryNoteService(
	generator DeliveryNotePDFGenerator,
	requestRepo repository.RequestRepository,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	movRepo repository.MovementRepository,
) *DeliveryNoteService {
	return &DeliveryNoteService{
		generator:    generator,
		requestRepo:  requestRepo,
		itemRepo:     itemRepo,
		locationRepo: locationRepo,
		movRepo:      movRepo,
	}
}

// Generate genera el PDF de la guía. Solo solicitudes con entregas registradas.
func (s *DeliveryNoteService) Generate(ctx context.Context, companyID, requestID string) ([]byte, error) {
	req, err := s.requestRepo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil || req.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if req.QuantityDelivered.IsZero() {
		return nil, fmt.Errorf("%w: la solicitud no tiene entregas registradas", domain.ErrInvalidInput)
	}

	item, err := s.itemRepo.GetByID(req.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	var source *entity.Location
	if req.SourceLocationID != "" {
		if source, err = s.locationRepo.GetByID(req.SourceLocationID); err != nil {
			return nil, err
		}
	}
	dest, err := s.locationRepo.GetByID(req.DestinationLocationID)
	if err != nil {
		return nil, err
	}

	movements, err := s.movRepo.ListByRequest(requestID)
	if err != nil {
		return nil, err
	}

	data := &DeliveryNoteData{
		Request:        req,
		Item:           item,
		Source:         source,
		Destination:    dest,
		Movements:      movements,
		TotalDelivered: req.QuantityDelivered,
		TotalValue:     req.QuantityDelivered.Mul(item.UnitCost),
	}
	return s.generator.GenerateDeliveryNotePDF(ctx, data)
}
