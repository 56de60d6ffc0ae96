package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"linkdesk-backend/internal/export"
	"linkdesk-backend/internal/logger"
	"linkdesk-backend/internal/metrics"
	"linkdesk-backend/internal/models"
	"linkdesk-backend/internal/slots"
)

// OrderResolver loads an order and resolves its slots.
type OrderResolver interface {
	Resolve(ctx context.Context, orderID uuid.UUID) (*slots.ResolvedOrder, error)
}

type Uploader interface {
	UploadFile(storagePath string, data []byte, contentType string) (string, error)
	DeleteOrderExports(orderID uuid.UUID) error
}

type EventPublisher interface {
	PublishAsync(event models.ReviewEvent)
}

type ExportResult struct {
	OrderID     uuid.UUID `json:"orderId"`
	StoragePath string    `json:"storagePath"`
	URL         string    `json:"url"`
	Size        int       `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ExportService renders review workbooks and keeps them in Supabase Storage.
type ExportService struct {
	orders   OrderResolver
	storage  Uploader
	realtime EventPublisher
	metrics  *metrics.Metrics
	log      logger.Logger
	now      func() time.Time
}

func NewExportService(
	orders OrderResolver,
	storage Uploader,
	realtime EventPublisher,
	m *metrics.Metrics,
	log logger.Logger,
) *ExportService {
	return &ExportService{
		orders:   orders,
		storage:  storage,
		realtime: realtime,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// ExportReview renders the current review state of the order and uploads it
// under orders/<orderId>/review_<timestamp>.xlsx.
func (s *ExportService) ExportReview(ctx context.Context, orderID uuid.UUID, actorID string) (result *ExportResult, err error) {
	defer func() {
		if s.metrics != nil {
			s.metrics.ExportsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
		}
	}()

	resolved, err := s.orders.Resolve(ctx, orderID)
	if err != nil {
		return nil, err
	}

	data, err := export.Render(resolved)
	if err != nil {
		return nil, err
	}

	createdAt := s.now().UTC()
	path := ExportPath(orderID, createdAt)
	url, err := s.storage.UploadFile(path, data, export.ContentType)
	if err != nil {
		s.log.Error("Failed to upload review export",
			logger.String("order_id", orderID.String()),
			logger.Error(err),
		)
		return nil, err
	}

	s.log.Info("Review export uploaded",
		logger.String("order_id", orderID.String()),
		logger.String("path", path),
		logger.Int("bytes", len(data)),
	)

	if s.realtime != nil {
		s.realtime.PublishAsync(models.ReviewEvent{
			OrderID: orderID,
			Type:    models.EventExported,
			ActorID: actorID,
			Payload: map[string]interface{}{"url": url, "path": path},
		})
	}

	return &ExportResult{
		OrderID:     orderID,
		StoragePath: path,
		URL:         url,
		Size:        len(data),
		CreatedAt:   createdAt,
	}, nil
}

// RemoveExports deletes every stored export of the order. Failures are logged
// and returned; callers deleting the order treat them as best-effort.
func (s *ExportService) RemoveExports(orderID uuid.UUID) error {
	if err := s.storage.DeleteOrderExports(orderID); err != nil {
		s.log.Warn("Failed to remove order exports",
			logger.String("order_id", orderID.String()),
			logger.Error(err),
		)
		return err
	}
	return nil
}

func ExportPath(orderID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("orders/%s/review_%s.xlsx", orderID, at.Format("20060102_150405"))
}
