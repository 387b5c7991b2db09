package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/fyerfyer/question-bank/api/model"
	"github.com/fyerfyer/question-bank/internal/document"
	"github.com/fyerfyer/question-bank/internal/models"
	"github.com/fyerfyer/question-bank/pkg/storage"
	"github.com/fyerfyer/question-bank/pkg/taskqueue"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 定义应用中的错误类型常量
const (
	ErrorTypeValidation  = "VALIDATION_ERROR"  // 输入验证错误
	ErrorTypeNotFound    = "NOT_FOUND_ERROR"   // 资源不存在错误
	ErrorTypeConflict    = "CONFLICT_ERROR"    // 状态冲突错误
	ErrorTypeUnsupported = "UNSUPPORTED_ERROR" // 不支持的文件类型
	ErrorTypeInternal    = "INTERNAL_ERROR"    // 内部服务器错误
	ErrorTypeBusiness    = "BUSINESS_ERROR"    // 业务逻辑错误
)

// AppError 应用错误结构体
type AppError struct {
	Type    string // 错误类型
	Message string // 错误消息
	Details string // 详细错误信息
	Code    int    // 错误代码
}

// Error 实现error接口的方法
func (e AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewValidationError 创建输入验证错误
func NewValidationError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusBadRequest,
	}
}

// NewNotFoundError 创建资源不存在错误
func NewNotFoundError(message string) AppError {
	return AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
		Code:    http.StatusNotFound,
	}
}

// NewConflictError 创建状态冲突错误
func NewConflictError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeConflict,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusConflict,
	}
}

// NewUnsupportedError 创建不支持的文件类型错误
func NewUnsupportedError(message string) AppError {
	return AppError{
		Type:    ErrorTypeUnsupported,
		Message: message,
		Code:    http.StatusUnsupportedMediaType,
	}
}

// NewInternalError 创建内部服务器错误
func NewInternalError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusInternalServerError,
	}
}

// NewBusinessError 创建业务逻辑错误
func NewBusinessError(message string, details ...string) AppError {
	return AppError{
		Type:    ErrorTypeBusiness,
		Message: message,
		Details: strings.Join(details, "; "),
		Code:    http.StatusUnprocessableEntity,
	}
}

// FromError 将领域错误映射为应用错误
func FromError(err error) AppError {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, models.ErrImportNotFound),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, taskqueue.ErrTaskNotFound):
		return NewNotFoundError(err.Error())
	case errors.Is(err, document.ErrUnsupportedFileType):
		return NewUnsupportedError(err.Error())
	case errors.Is(err, document.ErrEmptyDocument):
		return NewBusinessError("document contains no text", err.Error())
	case errors.Is(err, models.ErrInvalidImportStatus):
		return NewConflictError("import is not in a valid state for this operation", err.Error())
	default:
		return NewInternalError("Internal server error", err.Error())
	}
}

// ErrorHandler 统一错误处理中间件
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 捕获 panic
		defer func() {
			if err := recover(); err != nil {
				log.WithFields(logrus.Fields{
					FieldError: err,
					"stack":    string(debug.Stack()),
					FieldPath:  c.Request.URL.Path,
				}).Error("Panic recovered in API request")

				errorResponse := model.NewErrorResponse(
					http.StatusInternalServerError,
					"An unexpected error occurred",
				)

				// 在开发环境中返回详细错误
				if gin.Mode() == gin.DebugMode {
					errorResponse.Message = fmt.Sprintf("Panic: %v", err)
				}
				errorResponse.TraceID = c.GetString("TraceID")

				c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// 取最后一个错误进行处理
		err := c.Errors.Last().Err
		traceID := c.GetString("TraceID")

		var appErr AppError
		if pe, ok := err.(*AppError); ok {
			appErr = *pe
		} else {
			appErr = FromError(err)
		}

		entry := log.WithFields(logrus.Fields{
			"error_type": appErr.Type,
			FieldTraceID: traceID,
			FieldPath:    c.Request.URL.Path,
		})
		if appErr.Code >= http.StatusInternalServerError {
			entry.WithField(FieldError, appErr.Details).Error(appErr.Message)
		} else {
			entry.Warn(appErr.Message)
		}

		message := appErr.Message
		if appErr.Type == ErrorTypeInternal && gin.Mode() == gin.DebugMode && appErr.Details != "" {
			message = appErr.Details
		}

		errResp := model.NewErrorResponse(appErr.Code, message)
		errResp.TraceID = traceID
		c.AbortWithStatusJSON(appErr.Code, errResp)
	}
}

// HandleError 在处理器中使用的错误处理辅助函数
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
}
