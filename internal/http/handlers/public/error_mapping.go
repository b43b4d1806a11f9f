package public

import (
	handlershared "github.com/aurelia-jewelry/internal/http/handlers/shared"
	"github.com/aurelia-jewelry/internal/http/response"
	"github.com/aurelia-jewelry/internal/service"

	"github.com/gin-gonic/gin"
)

type mappedHandlerError = handlershared.MappedHandlerError

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

var catalogErrorRules = []mappedHandlerError{
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Msg: "product not found"},
}

var pricingErrorRules = []mappedHandlerError{
	{Target: service.ErrCouponNotFound, Code: response.CodeBadRequest, Msg: "coupon not found"},
	{Target: service.ErrCouponInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrSubtotalInvalid, Code: response.CodeBadRequest, Msg: "subtotal must not be negative"},
}

var cartErrorRules = []mappedHandlerError{
	{Target: service.ErrComboInvalid, Code: response.CodeBadRequest, Msg: "combo must contain exactly 3 eligible products"},
	{Target: service.ErrProductUnavailable, Code: response.CodeBadRequest, Msg: "product unavailable"},
	{Target: service.ErrCartItemInvalid, Code: response.CodeBadRequest, Msg: "cart item invalid"},
	{Target: service.ErrCartTooLarge, Code: response.CodeBadRequest, Msg: "cart has too many lines"},
}

var checkoutErrorRules = []mappedHandlerError{
	{Target: service.ErrCartEmpty, Code: response.CodeBadRequest, Msg: "cart is empty"},
	{Target: service.ErrPickupDisabled, Code: response.CodeBadRequest, Msg: "store pickup is disabled"},
	{Target: service.ErrShippingCostInvalid, Code: response.CodeBadRequest, Msg: "shipping cost invalid"},
	{Target: service.ErrPaymentSessionFailed, Code: response.CodeBadGateway, Msg: "payment session creation failed"},
}

func respondCatalogError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err,
		handlershared.ConcatMappedHandlerErrors(catalogErrorRules, handlershared.CategoryErrorRules),
		response.CodeInternal, "catalog fetch failed")
}

func respondPricingError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err,
		handlershared.ConcatMappedHandlerErrors(pricingErrorRules, handlershared.CategoryErrorRules),
		response.CodeInternal, "pricing failed")
}

func respondCartError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err,
		handlershared.ConcatMappedHandlerErrors(cartErrorRules, handlershared.CategoryErrorRules),
		response.CodeInternal, "cart update failed")
}

func respondCheckoutError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err,
		handlershared.ConcatMappedHandlerErrors(checkoutErrorRules, pricingErrorRules, cartErrorRules, handlershared.CategoryErrorRules),
		response.CodeInternal, "checkout failed")
}
