package ctx

import (
	"github.com/valyala/fasthttp"
)

const AdminKey = "admin"

// Admin is the authenticated admin identity extracted from the session
// token by the AdminAuth middleware.
type Admin struct {
	Username string
}

func SetAdmin(ctx *fasthttp.RequestCtx, a *Admin) {
	ctx.SetUserValue(AdminKey, a)
}

func AdminFromCtx(ctx *fasthttp.RequestCtx) (*Admin, bool) {
	v := ctx.UserValue(AdminKey)
	if v == nil {
		return nil, false
	}
	a, ok := v.(*Admin)
	return a, ok
}
