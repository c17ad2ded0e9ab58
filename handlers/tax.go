package handlers

import (
	"net/http"
	"strconv"

	"github.com/caribesoft/pos_backend/models"
	"github.com/caribesoft/pos_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type TaxHandler struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewTaxHandler(db *gorm.DB, rdb *redis.Client, logger *logrus.Logger) *TaxHandler {
	return &TaxHandler{DB: db, Redis: rdb, Logger: logger}
}

func (h *TaxHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	configs, err := models.GetTaxConfigurations(ctx, h.DB, businessId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, configs)
}

func (h *TaxHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	var input models.NewTaxConfiguration
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err, "tax configuration payload")
		return
	}
	cfg, err := models.CreateTaxConfiguration(ctx, h.DB, h.Redis, businessId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

func (h *TaxHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, utils.NewError(utils.ErrorKindValidation, "invalid tax configuration id"))
		return
	}
	var input models.NewTaxConfiguration
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err, "tax configuration payload")
		return
	}
	cfg, err := models.UpdateTaxConfiguration(ctx, h.DB, h.Redis, businessId, id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *TaxHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, utils.NewError(utils.ErrorKindValidation, "invalid tax configuration id"))
		return
	}
	cfg, err := models.DeleteTaxConfiguration(ctx, h.DB, h.Redis, businessId, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
