package models

import "errors"

var (
	// ErrImportNotFound 导入任务不存在错误
	ErrImportNotFound = errors.New("import not found")

	// ErrInvalidImportStatus 无效的导入状态错误
	ErrInvalidImportStatus = errors.New("invalid import status")
)
