package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/valyala/fasthttp"

	"github.com/locmaymo/api-stats/internal/stats"
)

func jsonBody(ctx *fasthttp.RequestCtx, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		errJSON(ctx, fasthttp.StatusInternalServerError, "failed to encode response")
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

func errJSON(ctx *fasthttp.RequestCtx, code int, msg string) {
	ctx.SetStatusCode(code)
	ctx.SetContentType("application/json")
	ctx.SetBodyString(`{"error":` + strconv.Quote(msg) + `}`)
}

func query(ctx *fasthttp.RequestCtx, name string) string {
	return string(ctx.QueryArgs().Peek(name))
}

// filterFromCtx builds the base report filter from the shared query
// parameters every report accepts.
func filterFromCtx(ctx *fasthttp.RequestCtx) stats.ReportFilter {
	return stats.ParseFilter(
		query(ctx, "startDate"),
		query(ctx, "endDate"),
		query(ctx, "filterBy"),
		query(ctx, "filterValue"),
	)
}

func pageFromCtx(ctx *fasthttp.RequestCtx, defaultLimit int) stats.PageParams {
	return stats.ParsePageParams(query(ctx, "page"), query(ctx, "limit"), defaultLimit)
}
