package handlers

import (
	"bytes"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/valyala/fasthttp"
)

// Metrics renders the service's own Prometheus metric families in text
// exposition format. Runtime and process collectors are filtered out so
// the endpoint only reports apistats_* series.
func Metrics() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		families, err := prometheus.DefaultGatherer.Gather()
		if err != nil {
			errJSON(ctx, fasthttp.StatusInternalServerError, "failed to gather metrics")
			return
		}

		filtered := make([]*dto.MetricFamily, 0, len(families))
		for _, mf := range families {
			if strings.HasPrefix(mf.GetName(), "apistats_") {
				filtered = append(filtered, mf)
			}
		}

		var buf bytes.Buffer
		encoder := expfmt.NewEncoder(&buf, expfmt.FmtText)
		for _, mf := range filtered {
			if err := encoder.Encode(mf); err != nil {
				errJSON(ctx, fasthttp.StatusInternalServerError, "failed to encode metrics")
				return
			}
		}

		ctx.SetContentType(string(expfmt.FmtText))
		ctx.Response.Header.Set("Cache-Control", "no-store")
		ctx.SetBody(buf.Bytes())
	}
}
