package router

import (
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
)

func interceptorsCallMeta(fullMethod string) interceptors.CallMeta {
	service, method, _ := strings.Cut(strings.TrimPrefix(fullMethod, "/"), "/")
	return interceptors.CallMeta{Service: service, Method: method}
}
