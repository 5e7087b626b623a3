package service

import (
	"errors"

	"keyhub/internal/database/kv"
	cErr "keyhub/internal/pkg/error"
)

// storageError 把 KV 邊界的 sentinel 轉成對外錯誤；不外洩底層訊息
func storageError(err error, desc string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, kv.ErrTimeout):
		return cErr.StorageTimeout(desc)
	case errors.Is(err, kv.ErrUnavailable):
		return cErr.StorageUnavailable(desc)
	case errors.Is(err, kv.ErrMalformed):
		return cErr.DatabaseError(desc + ": malformed record")
	default:
		var appErr *cErr.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return cErr.InternalServer(desc)
	}
}
