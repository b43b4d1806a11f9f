package shared

import (
	"errors"

	"github.com/aurelia-jewelry/internal/http/response"
	"github.com/aurelia-jewelry/internal/logger"
	"github.com/aurelia-jewelry/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// MappedHandlerError 定义业务错误到接口错误响应的映射关系。
// Msg 为空时直接使用业务错误文本。
type MappedHandlerError struct {
	Target error
	Code   int
	Msg    string
}

// CategoryErrorRules 按错误类别兜底映射
var CategoryErrorRules = []MappedHandlerError{
	{Target: service.ErrValidation, Code: response.CodeBadRequest},
	{Target: service.ErrNotFound, Code: response.CodeNotFound},
	{Target: service.ErrExternalService, Code: response.CodeBadGateway, Msg: "upstream service unavailable"},
	{Target: service.ErrPersistence, Code: response.CodeInternal, Msg: "internal error"},
}

// RespondWithMappedError 依次匹配规则，字段级校验错误附带字段明细
func RespondWithMappedError(c *gin.Context, err error, rules []MappedHandlerError, fallbackCode int, fallbackMsg string) {
	var fieldErr *service.FieldError
	if errors.As(err, &fieldErr) {
		response.ErrorWithData(c, response.CodeBadRequest, "validation failed", map[string]interface{}{
			"fields": fieldErr.Fields,
		})
		return
	}
	for _, rule := range rules {
		if !errors.Is(err, rule.Target) {
			continue
		}
		msg := rule.Msg
		if msg == "" {
			msg = err.Error()
		}
		var logged error
		if rule.Code >= response.CodeInternal {
			logged = err
		}
		RespondError(c, rule.Code, msg, logged)
		return
	}
	RespondError(c, fallbackCode, fallbackMsg, err)
}

// ConcatMappedHandlerErrors 合并多组映射规则
func ConcatMappedHandlerErrors(groups ...[]MappedHandlerError) []MappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}
