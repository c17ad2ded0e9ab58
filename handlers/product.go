package handlers

import (
	"net/http"
	"strconv"

	"github.com/caribesoft/pos_backend/models"
	"github.com/caribesoft/pos_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ProductHandler struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewProductHandler(db *gorm.DB, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{DB: db, Logger: logger}
}

func (h *ProductHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	var name *string
	if v := c.Query("name"); v != "" {
		name = &v
	}
	products, err := models.GetProducts(ctx, h.DB, businessId, name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, utils.NewError(utils.ErrorKindValidation, "invalid product id"))
		return
	}
	product, err := models.GetProduct(ctx, h.DB, businessId, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err, "product payload")
		return
	}
	product, err := models.CreateProduct(ctx, h.DB, businessId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, utils.NewError(utils.ErrorKindValidation, "invalid product id"))
		return
	}
	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err, "product payload")
		return
	}
	product, err := models.UpdateProduct(ctx, h.DB, businessId, id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, utils.NewError(utils.ErrorKindValidation, "invalid product id"))
		return
	}
	product, err := models.DeleteProduct(ctx, h.DB, businessId, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
