package handlers

import (
	"errors"
	"net/http"

	"github.com/caribesoft/pos_backend/utils"
	"github.com/caribesoft/pos_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondBindingError answers a failed request binding. Tag-level validation
// failures come back as a field -> rule map so the client knows what to fix.
func respondBindingError(c *gin.Context, err error, what string) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(map[string]string)
		for _, ve := range validationErrors {
			fields[ve.Field()] = ve.Tag()
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "invalid " + what,
			"kind":   string(utils.ErrorKindValidation),
			"fields": fields,
		})
		return
	}
	respondError(c, utils.WrapError(utils.ErrorKindValidation, err, "invalid %s", what))
}

// respondError maps the error taxonomy onto HTTP statuses. Partial failures
// keep their step detail in the payload so a reconciliation job (or a human)
// can see exactly what landed.
func respondError(c *gin.Context, err error) {
	var pf *workflow.PartialFailureError
	if errors.As(err, &pf) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":                   pf.Error(),
			"kind":                    string(utils.ErrorKindPartialFailure),
			"sale_id":                 pf.SaleId,
			"failed_step":             string(pf.FailedStep),
			"decremented_product_ids": pf.DecrementedProductIds,
			"failed_product_ids":      pf.FailedProductIds,
		})
		return
	}

	kind := utils.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case utils.ErrorKindValidation:
		status = http.StatusBadRequest
	case utils.ErrorKindNotFound:
		status = http.StatusNotFound
	case utils.ErrorKindConflict:
		status = http.StatusConflict
	case utils.ErrorKindExhaustion:
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": string(kind)})
}
