package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	paymentdomain "github.com/smallbiznis/splitpay/internal/payment/domain"
)

type splitRequest struct {
	RecipientID string `json:"recipient_id"`
	Role        string `json:"role"`
	Percent     int    `json:"percent"`
}

type paymentRequest struct {
	Amount        string         `json:"amount"`
	Currency      string         `json:"currency"`
	PaymentMethod string         `json:"payment_method"`
	Installments  *int           `json:"installments"`
	Splits        []splitRequest `json:"splits"`
}

func (r paymentRequest) toDomain() (paymentdomain.CaptureRequest, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(r.Amount))
	if err != nil {
		return paymentdomain.CaptureRequest{}, ErrInvalidRequest
	}

	installments := 1
	if r.Installments != nil {
		installments = *r.Installments
	}

	splits := make([]paymentdomain.Split, len(r.Splits))
	for i, split := range r.Splits {
		splits[i] = paymentdomain.Split{
			RecipientID: strings.TrimSpace(split.RecipientID),
			Role:        strings.TrimSpace(split.Role),
			Percent:     split.Percent,
		}
	}

	return paymentdomain.CaptureRequest{
		Amount:        amount,
		Currency:      strings.TrimSpace(r.Currency),
		PaymentMethod: strings.TrimSpace(r.PaymentMethod),
		Installments:  installments,
		Splits:        splits,
	}, nil
}

type paymentResponse struct {
	PaymentID         string                         `json:"payment_id"`
	Status            string                         `json:"status"`
	GrossAmount       string                         `json:"gross_amount"`
	PlatformFeeAmount string                         `json:"platform_fee_amount"`
	NetAmount         string                         `json:"net_amount"`
	Receivables       []paymentdomain.Receivable     `json:"receivables"`
	OutboxEvent       *paymentdomain.OutboxEventInfo `json:"outbox_event,omitempty"`
}

func toPaymentResponse(result paymentdomain.CaptureResult) paymentResponse {
	return paymentResponse{
		PaymentID:         result.PaymentID,
		Status:            result.Status,
		GrossAmount:       result.Result.GrossAmount,
		PlatformFeeAmount: result.Result.PlatformFeeAmount,
		NetAmount:         result.Result.NetAmount,
		Receivables:       result.Result.Receivables,
		OutboxEvent:       result.Outbox,
	}
}

// CreatePayment captures a payment. Retries with the same Idempotency-Key
// replay the original capture with 200 instead of 201.
func (s *Server) CreatePayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	captureReq, err := req.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	captureReq.IdempotencyKey = strings.TrimSpace(c.GetHeader("Idempotency-Key"))

	result, err := s.paymentSvc.Capture(c.Request.Context(), captureReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, toPaymentResponse(result))
}

// GetPayment returns a previously captured payment by its public id.
func (s *Server) GetPayment(c *gin.Context) {
	result, err := s.paymentSvc.GetByPaymentID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPaymentResponse(result))
}

// QuotePayment prices a request without persisting anything.
func (s *Server) QuotePayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	quoteReq, err := req.toDomain()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.paymentSvc.Quote(c.Request.Context(), quoteReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListPaymentMethods exposes the registered fee strategies.
func (s *Server) ListPaymentMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"payment_methods": s.catalog.SupportedMethods()})
}
