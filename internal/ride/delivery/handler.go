package delivery

import (
	"net/http"

	authdelivery "roadbuddy-backend/internal/auth/delivery"
	"roadbuddy-backend/internal/ride/dto"
	"roadbuddy-backend/internal/ride/usecase"
	"roadbuddy-backend/pkg/apperror"
	"roadbuddy-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type RideHandler struct {
	rideUsecase usecase.RideUsecase
}

func NewRideHandler(rideUsecase usecase.RideUsecase) *RideHandler {
	return &RideHandler{rideUsecase: rideUsecase}
}

// PostRide
// POST /api/rides
func (h *RideHandler) PostRide(c *gin.Context) {
	var req dto.PostRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user := authdelivery.CurrentUser(c)
	if user == nil {
		response.Error(c, apperror.ErrUnauthenticated)
		return
	}

	id, err := h.rideUsecase.PostRide(c.Request.Context(), user, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.PostRideResponse{RideID: id})
}

// GetRide
// GET /api/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideUsecase.GetRide(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ride)
}

// GetAvailableRides lists open rides the caller can book, optionally
// filtered by a route query
// GET /api/rides/available?q=
func (h *RideHandler) GetAvailableRides(c *gin.Context) {
	rides, err := h.rideUsecase.ListAvailable(c.Request.Context(), c.GetString("userID"), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": rides})
}

// GetUpcomingRides
// GET /api/rides/upcoming
func (h *RideHandler) GetUpcomingRides(c *gin.Context) {
	rides, err := h.rideUsecase.ListUpcoming(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, rides)
}

// JoinRide
// POST /api/rides/:id/join
func (h *RideHandler) JoinRide(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		response.Error(c, apperror.ErrUnauthenticated)
		return
	}

	resp, err := h.rideUsecase.JoinRide(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CancelRide
// POST /api/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		response.Error(c, apperror.ErrUnauthenticated)
		return
	}

	if err := h.rideUsecase.Cancel(c.Request.Context(), c.Param("id"), user); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ride cancelled"})
}

// DeleteRide
// DELETE /api/rides/:id
func (h *RideHandler) DeleteRide(c *gin.Context) {
	resp, err := h.rideUsecase.Delete(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
