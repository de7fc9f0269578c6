package ioc

import (
	api "gitee.com/flycash/event-registration-platform/internal/api/http"
	"github.com/gotomicro/ego/server/egin"
)

func InitHTTPServer(h *api.Handler) *egin.Component {
	server := egin.Load("server.http").Build()
	h.RegisterRoutes(server)
	return server
}
