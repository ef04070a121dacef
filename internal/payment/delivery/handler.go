package delivery

import (
	"net/http"

	authdelivery "roadbuddy-backend/internal/auth/delivery"
	"roadbuddy-backend/internal/payment/dto"
	"roadbuddy-backend/internal/payment/usecase"
	"roadbuddy-backend/pkg/apperror"
	"roadbuddy-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentUsecase usecase.PaymentUsecase
}

func NewPaymentHandler(paymentUsecase usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{paymentUsecase: paymentUsecase}
}

// CreatePaymentSheet returns what the mobile payment sheet needs to collect
// a card payment
// POST /api/payments/sheet
func (h *PaymentHandler) CreatePaymentSheet(c *gin.Context) {
	var req dto.PaymentSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user := authdelivery.CurrentUser(c)
	if user == nil {
		response.Error(c, apperror.ErrUnauthenticated)
		return
	}

	sheet, err := h.paymentUsecase.CreatePaymentSheet(c.Request.Context(), user, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}
