package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service provides high-level sales management operations on a Storage backend.
type Service struct {
	storage   Storage
	publisher Publisher
	logger    *zap.Logger
}

// ListParams holds the raw list filters as received from the client.
// Empty strings impose no constraint.
type ListParams struct {
	ProductID  string
	StartDate  string
	EndDate    string
	DateFilter string
}

// NewService creates a new Service. A nil publisher disables change events.
func NewService(storage Storage, publisher Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}

	return &Service{
		storage:   storage,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateSale records the units sold for productID on dateStr.
func (s *Service) CreateSale(ctx context.Context, productID, dateStr string, units int) (*Sale, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		s.logger.Warn("invalid sale date", zap.String("date_str", dateStr))
		return nil, &ValidationError{Field: "date_str", Value: dateStr}
	}

	sale := &Sale{
		ProductID: productID,
		Date:      date,
		Sales:     units,
	}

	if err := s.storage.Create(ctx, sale); err != nil {
		s.logger.Error("failed to save sale", zap.String("product_id", productID), zap.Error(err))
		return nil, fmt.Errorf("failed to save sale: %w", err)
	}

	s.logger.Info("sale created", zap.Int64("sale_id", sale.ID), zap.Any("sale", sale))
	s.publish(ctx, EventCreated, sale.ID, sale)
	return sale, nil
}

// ListSales returns every sale matching the conjunction of the given filters.
func (s *Service) ListSales(ctx context.Context, params ListParams) ([]*Sale, error) {
	filter, err := params.filter()
	if err != nil {
		s.logger.Warn("invalid list filter", zap.Error(err))
		return nil, err
	}

	result, err := s.storage.Find(ctx, filter)
	if err != nil {
		s.logger.Error("failed to query sales", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve sales: %w", err)
	}

	s.logger.Debug("sales search completed",
		zap.String("product_id_filter", params.ProductID),
		zap.String("start_date_filter", params.StartDate),
		zap.String("end_date_filter", params.EndDate),
		zap.String("date_filter", params.DateFilter),
		zap.Int("results_count", len(result)),
	)
	return result, nil
}

// GetSale returns a single sale or ErrNotFound.
func (s *Service) GetSale(ctx context.Context, id int64) (*Sale, error) {
	sale, err := s.storage.Read(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("failed to read sale", zap.Int64("sale_id", id), zap.Error(err))
		}
		return nil, err
	}
	return sale, nil
}

// UpdateSale overwrites the fields present in update. The lookup happens
// first, so an unknown id reports ErrNotFound even when the date is invalid.
func (s *Service) UpdateSale(ctx context.Context, id int64, update SaleUpdate) (*Sale, error) {
	sale, err := s.storage.Update(ctx, id, update.ApplyTo)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.Is(err, ErrNotFound):
		case errors.As(err, &verr):
			s.logger.Warn("invalid sale update", zap.Int64("sale_id", id), zap.Error(err))
		default:
			s.logger.Error("failed to update sale", zap.Int64("sale_id", id), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("sale updated", zap.Int64("sale_id", id), zap.Any("sale", sale))
	s.publish(ctx, EventUpdated, id, sale)
	return sale, nil
}

// DeleteSale removes a sale permanently.
func (s *Service) DeleteSale(ctx context.Context, id int64) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("failed to delete sale", zap.Int64("sale_id", id), zap.Error(err))
		}
		return err
	}

	s.logger.Info("sale deleted", zap.Int64("sale_id", id))
	s.publish(ctx, EventDeleted, id, nil)
	return nil
}

// publish runs after the change is committed, so failures are only logged.
func (s *Service) publish(ctx context.Context, typ EventType, id int64, sale *Sale) {
	event := Event{
		EventID:   uuid.NewString(),
		Type:      typ,
		SaleID:    id,
		Sale:      sale,
		Timestamp: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish sale event",
			zap.String("event_id", event.EventID),
			zap.String("type", string(typ)),
			zap.Int64("sale_id", id),
			zap.Error(err))
	}
}

func (p ListParams) filter() (Filter, error) {
	var f Filter

	if p.ProductID != "" {
		productID := p.ProductID
		f.ProductID = &productID
	}

	bounds := []struct {
		field string
		value string
		dst   **Date
	}{
		{"start_date", p.StartDate, &f.StartDate},
		{"end_date", p.EndDate, &f.EndDate},
	}
	for _, b := range bounds {
		if b.value == "" {
			continue
		}
		d, err := ParseDate(b.value)
		if err != nil {
			return Filter{}, &ValidationError{Field: b.field, Value: b.value}
		}
		*b.dst = &d
	}

	if p.DateFilter != "" {
		d, err := ParseDate(p.DateFilter)
		if err != nil {
			return Filter{}, &ValidationError{Field: "date_filter", Value: p.DateFilter}
		}
		if f.StartDate == nil || d.After(*f.StartDate) {
			f.StartDate = &d
		}
		if f.EndDate == nil || d.Before(*f.EndDate) {
			f.EndDate = &d
		}
	}

	return f, nil
}
