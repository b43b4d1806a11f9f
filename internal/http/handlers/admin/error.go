package admin

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

var adminCatalogErrorRules = []mappedHandlerError{
	{Target: service.ErrSlugExists, Code: response.CodeBadRequest, Msg: "slug already exists"},
	{Target: service.ErrCouponCodeExists, Code: response.CodeBadRequest, Msg: "coupon code already exists"},
	{Target: service.ErrCategoryInUse, Code: response.CodeBadRequest, Msg: "category still has products"},
	{Target: service.ErrProductCategoryInvalid, Code: response.CodeBadRequest, Msg: "category does not exist"},
	{Target: service.ErrDiscountInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrShippingRuleInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrSettingInvalid, Code: response.CodeBadRequest},
}

var adminOrderErrorRules = []mappedHandlerError{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Msg: "order not found"},
	{Target: service.ErrOrderStatusInvalid, Code: response.CodeBadRequest, Msg: "order status transition not allowed"},
}

func respondAdminError(c *gin.Context, err error, fallbackMsg string) {
	handlershared.RespondWithMappedError(c, err,
		handlershared.ConcatMappedHandlerErrors(adminCatalogErrorRules, adminOrderErrorRules, handlershared.CategoryErrorRules),
		response.CodeInternal, fallbackMsg)
}
