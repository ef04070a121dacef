package delivery

import (
	"net/http"

	"roadbuddy-backend/internal/vehicle/dto"
	"roadbuddy-backend/internal/vehicle/usecase"
	"roadbuddy-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type VehicleHandler struct {
	vehicleUsecase usecase.VehicleUsecase
}

func NewVehicleHandler(vehicleUsecase usecase.VehicleUsecase) *VehicleHandler {
	return &VehicleHandler{vehicleUsecase: vehicleUsecase}
}

// AddVehicle
// POST /api/vehicles
func (h *VehicleHandler) AddVehicle(c *gin.Context) {
	var req dto.AddVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	vehicle, err := h.vehicleUsecase.AddVehicle(c.Request.Context(), c.GetString("userID"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Car added successfully", "car": vehicle})
}

// GetVehicles
// GET /api/vehicles
func (h *VehicleHandler) GetVehicles(c *gin.Context) {
	vehicles, err := h.vehicleUsecase.ListVehicles(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cars": vehicles})
}
