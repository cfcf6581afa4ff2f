package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/splitpay/internal/config"
	"github.com/smallbiznis/splitpay/internal/fee"
	"github.com/smallbiznis/splitpay/internal/observability/metrics"
	"github.com/smallbiznis/splitpay/internal/payment/domain"
	"github.com/smallbiznis/splitpay/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg     config.Config
	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Catalog *fee.Catalog
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	validator   *requestValidator
	calculator  *splitCalculator
	idempotency *idempotencyCoordinator
	metrics     *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payment.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		validator:   newRequestValidator(p.Catalog, p.Cfg.SettlementCurrency),
		calculator:  newSplitCalculator(p.Catalog),
		idempotency: newIdempotencyCoordinator(p.Repo, p.Cfg.RequireIdempotencyKey),
		metrics:     p.Metrics,
	}
}

// Quote prices a request without touching storage.
func (s *Service) Quote(ctx context.Context, req domain.CaptureRequest) (domain.CalculationResult, error) {
	req = normalize(req)
	if err := s.validator.Validate(req); err != nil {
		return domain.CalculationResult{}, err
	}
	return s.calculator.Calculate(req)
}

func (s *Service) Capture(ctx context.Context, req domain.CaptureRequest) (domain.CaptureResult, error) {
	req = normalize(req)

	if err := s.validator.Validate(req); err != nil {
		s.metrics.RecordCapture(req.PaymentMethod, "rejected")
		return domain.CaptureResult{}, err
	}

	decision, prior, err := s.idempotency.Decide(ctx, s.db, req)
	if err != nil {
		return domain.CaptureResult{}, err
	}
	switch decision {
	case decisionReplay:
		s.metrics.RecordCapture(req.PaymentMethod, "replayed")
		return s.rebuildResult(ctx, prior, true)
	case decisionConflict:
		s.log.Warn("idempotency key reused with a different payload",
			zap.String("idempotency_key", req.IdempotencyKey),
			zap.String("payment_id", prior.PaymentID),
		)
		s.metrics.RecordCapture(req.PaymentMethod, "conflict")
		return domain.CaptureResult{}, domain.ErrIdempotencyConflict
	}

	result, err := s.calculator.Calculate(req)
	if err != nil {
		s.metrics.RecordCapture(req.PaymentMethod, "rejected")
		return domain.CaptureResult{}, err
	}

	payment, entries, event, err := s.buildRecords(req, result)
	if err != nil {
		return domain.CaptureResult{}, err
	}

	if err := s.repo.CreateWithOutbox(ctx, s.db, payment, entries, event); err != nil {
		if db.IsDuplicateKeyErr(err) && strings.TrimSpace(req.IdempotencyKey) != "" {
			// Lost a same-key race at commit time. Treat it like finding the
			// prior payment up front: re-read, compare, replay or conflict.
			return s.resolveDuplicate(ctx, req, err)
		}
		return domain.CaptureResult{}, err
	}

	s.log.Info("payment captured",
		zap.String("payment_id", payment.PaymentID),
		zap.String("payment_method", payment.PaymentMethod),
		zap.Int("installments", payment.Installments),
		zap.String("gross_amount", result.GrossAmount),
		zap.String("net_amount", result.NetAmount),
		zap.Int("ledger_entries", len(entries)),
	)
	s.metrics.RecordCapture(req.PaymentMethod, "created")
	s.metrics.RecordLedgerEntries(len(entries))
	s.metrics.RecordOutboxEvent()

	return domain.CaptureResult{
		PaymentID: payment.PaymentID,
		Status:    payment.Status,
		Result:    result,
		Outbox: &domain.OutboxEventInfo{
			Type:   event.Type,
			Status: event.Status,
		},
	}, nil
}

func (s *Service) GetByPaymentID(ctx context.Context, paymentID string) (domain.CaptureResult, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return domain.CaptureResult{}, domain.ErrNotFound
	}
	payment, err := s.repo.FindByPaymentID(ctx, s.db, paymentID)
	if err != nil {
		return domain.CaptureResult{}, err
	}
	if payment == nil {
		return domain.CaptureResult{}, domain.ErrNotFound
	}
	return s.rebuildResult(ctx, payment, false)
}

func (s *Service) resolveDuplicate(ctx context.Context, req domain.CaptureRequest, writeErr error) (domain.CaptureResult, error) {
	decision, prior, err := s.idempotency.Decide(ctx, s.db, req)
	if err != nil {
		return domain.CaptureResult{}, err
	}
	switch decision {
	case decisionReplay:
		s.metrics.RecordCapture(req.PaymentMethod, "replayed")
		return s.rebuildResult(ctx, prior, true)
	case decisionConflict:
		s.metrics.RecordCapture(req.PaymentMethod, "conflict")
		return domain.CaptureResult{}, domain.ErrIdempotencyConflict
	default:
		// The violation was not on the idempotency key after all.
		return domain.CaptureResult{}, writeErr
	}
}

// rebuildResult reconstructs a capture response from the stored payment,
// its ledger entries and the correlated outbox event.
func (s *Service) rebuildResult(ctx context.Context, payment *domain.Payment, replayed bool) (domain.CaptureResult, error) {
	entries, err := s.repo.ListLedgerEntries(ctx, s.db, payment.ID)
	if err != nil {
		return domain.CaptureResult{}, err
	}

	receivables := make([]domain.Receivable, len(entries))
	for i, entry := range entries {
		receivables[i] = domain.Receivable{
			RecipientID: entry.RecipientID,
			Role:        entry.Role,
			Amount:      entry.Amount.StringFixed(2),
		}
	}

	result := domain.CaptureResult{
		PaymentID: payment.PaymentID,
		Status:    payment.Status,
		Result: domain.CalculationResult{
			GrossAmount:       payment.GrossAmount.StringFixed(2),
			PlatformFeeAmount: payment.PlatformFeeAmount.StringFixed(2),
			NetAmount:         payment.NetAmount.StringFixed(2),
			Receivables:       receivables,
		},
		Replayed: replayed,
	}

	event, err := s.repo.FindOutboxEventByPaymentID(ctx, s.db, payment.PaymentID)
	if err != nil {
		return domain.CaptureResult{}, err
	}
	if event != nil {
		result.Outbox = &domain.OutboxEventInfo{
			Type:   event.Type,
			Status: event.Status,
		}
	}

	if replayed {
		s.log.Info("payment replayed",
			zap.String("payment_id", payment.PaymentID),
		)
	}

	return result, nil
}

func (s *Service) buildRecords(req domain.CaptureRequest, result domain.CalculationResult) (*domain.Payment, []domain.LedgerEntry, *domain.OutboxEvent, error) {
	body, err := canonicalBody(req)
	if err != nil {
		return nil, nil, nil, err
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:                s.genID.Generate(),
		PaymentID:         newPaymentID(),
		Status:            domain.PaymentStatusCaptured,
		GrossAmount:       decimal.RequireFromString(result.GrossAmount),
		PlatformFeeAmount: decimal.RequireFromString(result.PlatformFeeAmount),
		NetAmount:         decimal.RequireFromString(result.NetAmount),
		PaymentMethod:     strings.ToLower(strings.TrimSpace(req.PaymentMethod)),
		Installments:      req.Installments,
		RequestBody:       body,
		CreatedAt:         now,
	}
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		payment.IdempotencyKey = &key
	}

	entries := make([]domain.LedgerEntry, len(result.Receivables))
	for i, receivable := range result.Receivables {
		entries[i] = domain.LedgerEntry{
			ID:          s.genID.Generate(),
			PaymentRef:  payment.ID,
			RecipientID: receivable.RecipientID,
			Role:        receivable.Role,
			Amount:      decimal.RequireFromString(receivable.Amount),
			CreatedAt:   now,
		}
	}

	payload, err := json.Marshal(map[string]string{
		"payment_id": payment.PaymentID,
		"status":     payment.Status,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	event := &domain.OutboxEvent{
		ID:        s.genID.Generate(),
		Type:      domain.EventTypePaymentCaptured,
		Payload:   datatypes.JSON(payload),
		Status:    domain.OutboxStatusPending,
		CreatedAt: now,
	}

	return payment, entries, event, nil
}

func normalize(req domain.CaptureRequest) domain.CaptureRequest {
	if req.Installments <= 0 {
		req.Installments = 1
	}
	return req
}

func newPaymentID() string {
	return "pmt_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
