package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/caribesoft/pos_backend/models"
	"github.com/caribesoft/pos_backend/utils"
	"github.com/caribesoft/pos_backend/workflow"
	"github.com/gin-gonic/gin"
)

type SaleHandler struct {
	Service *workflow.SaleService
}

func NewSaleHandler(service *workflow.SaleService) *SaleHandler {
	return &SaleHandler{Service: service}
}

func (h *SaleHandler) Create(c *gin.Context) {
	var input models.NewSale
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err, "sale payload")
		return
	}

	sale, err := h.Service.CreateSale(c.Request.Context(), &input, c.GetHeader("X-Idempotency-Key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func (h *SaleHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, utils.NewError(utils.ErrorKindValidation, "invalid sale id"))
		return
	}
	sale, err := models.GetSale(ctx, h.Service.DB, businessId, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (h *SaleHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	var status *models.SaleStatus
	if v := c.Query("status"); v != "" {
		s := models.SaleStatus(v)
		status = &s
	}
	sales, err := models.GetSales(ctx, h.Service.DB, businessId, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

// Summary serves the date-ranged sales overview consumed by the (external)
// reporting pages. Dates are RFC 3339 or plain YYYY-MM-DD.
func (h *SaleHandler) Summary(c *gin.Context) {
	ctx := c.Request.Context()
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	start, err := parseDateParam(c.Query("start"))
	if err != nil {
		respondError(c, utils.NewError(utils.ErrorKindValidation, "invalid start date"))
		return
	}
	end, err := parseDateParam(c.Query("end"))
	if err != nil {
		respondError(c, utils.NewError(utils.ErrorKindValidation, "invalid end date"))
		return
	}

	sales, err := models.GetSalesSummary(ctx, h.Service.DB, businessId, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

func parseDateParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
