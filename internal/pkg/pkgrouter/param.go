package pkgrouter

import (
	"context"
	"strconv"

	"github.com/julienschmidt/httprouter"
)

// GetParam reads a path parameter stored in the request context by httprouter.
func GetParam(ctx context.Context, key string) string {
	return httprouter.ParamsFromContext(ctx).ByName(key)
}

// GetParamID reads a path parameter as a positive decimal identifier. It
// reports false when the parameter is absent, malformed, or not positive.
func GetParamID(ctx context.Context, key string) (int64, bool) {
	id, err := strconv.ParseInt(GetParam(ctx, key), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
