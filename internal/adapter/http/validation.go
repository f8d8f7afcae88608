package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	RegistrationID uuid.UUID          `json:"registrationId" validate:"required"`
	OrderPointID   uuid.UUID          `json:"orderPointId" validate:"required"`
	Note           *string            `json:"note"`
	OrderItems     []OrderItemRequest `json:"orderItems" validate:"required,min=1,dive"`
}

type OrderItemRequest struct {
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"required,min=1"`
	Note     *string         `json:"note"`
}

// NewValidator returns a validator with the item price rule registered.
func NewValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterStructValidation(orderItemStructValidation, OrderItemRequest{})
	return v
}

// decimal.Decimal is a struct, so tags like gte=0 do not apply to it.
func orderItemStructValidation(sl validatorv10.StructLevel) {
	item := sl.Current().Interface().(OrderItemRequest)
	if item.Price.IsNegative() {
		sl.ReportError(item.Price, "price", "Price", "nonnegative", "")
	}
}

// BindAndValidate binds the JSON body into out and validates it.
// On failure it writes a 400 and returns the error so the handler can stop.
func BindAndValidate(c *gin.Context, out interface{}, v *validatorv10.Validate) error {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid_request_body",
			"msg":   err.Error(),
		})
		return err
	}

	if err := v.Struct(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation_failed",
			"fields": validationErrorsToMap(err),
		})
		return err
	}
	return nil
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	var ve validatorv10.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fe.Namespace()] = fe.Tag()
		}
	} else {
		out["error"] = err.Error()
	}
	return out
}
