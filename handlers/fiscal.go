package handlers

import (
	"net/http"
	"strconv"

	"github.com/caribesoft/pos_backend/models"
	"github.com/caribesoft/pos_backend/utils"
	"github.com/caribesoft/pos_backend/workflow"
	"github.com/gin-gonic/gin"
)

type FiscalHandler struct {
	Service *workflow.FiscalService
}

func NewFiscalHandler(service *workflow.FiscalService) *FiscalHandler {
	return &FiscalHandler{Service: service}
}

/* sequences */

func (h *FiscalHandler) ListSequences(c *gin.Context) {
	ctx := c.Request.Context()
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	sequences, err := models.GetFiscalSequences(ctx, h.Service.DB, businessId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sequences)
}

func (h *FiscalHandler) CreateSequence(c *gin.Context) {
	ctx := c.Request.Context()
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	var input models.NewFiscalSequence
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err, "fiscal sequence payload")
		return
	}
	seq, err := models.CreateFiscalSequence(ctx, h.Service.DB, businessId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, seq)
}

func (h *FiscalHandler) UpdateSequence(c *gin.Context) {
	ctx := c.Request.Context()
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, utils.NewError(utils.ErrorKindValidation, "invalid fiscal sequence id"))
		return
	}
	var input models.NewFiscalSequence
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err, "fiscal sequence payload")
		return
	}
	seq, err := models.UpdateFiscalSequence(ctx, h.Service.DB, businessId, id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, seq)
}

/* documents */

type issueDocumentRequest struct {
	SaleId int `json:"sale_id" binding:"required"`
}

func (h *FiscalHandler) IssueDocument(c *gin.Context) {
	var input issueDocumentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err, "fiscal document payload")
		return
	}

	doc, err := h.Service.IssueForSale(c.Request.Context(), input.SaleId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *FiscalHandler) ListDocuments(c *gin.Context) {
	ctx := c.Request.Context()
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	docs, err := models.GetFiscalDocuments(ctx, h.Service.DB, businessId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *FiscalHandler) GetDocument(c *gin.Context) {
	ctx := c.Request.Context()
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, utils.NewError(utils.ErrorKindValidation, "invalid fiscal document id"))
		return
	}
	doc, err := models.GetFiscalDocument(ctx, h.Service.DB, businessId, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
