package stats

import (
	"strconv"
	"strings"
	"time"
)

// csvHeader is the fixed ten-column layout of the credential export.
var csvHeader = []string{
	"API Key",
	"Handle",
	"Source",
	"Reverse Proxy",
	"Key Source",
	"Total Usage",
	"First Used",
	"Last Used",
	"Paths",
	"Secret Keys",
}

// CredentialsCSV renders credential-list rows as delimited text. Every
// field is double-quoted with embedded quotes doubled, multi-valued
// fields are joined with ";", dates render as ISO-8601 or empty when
// absent. The stdlib csv writer only quotes when it must, so the
// all-quoted layout consumers already parse is written by hand.
func CredentialsCSV(rows []CredentialStats) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, csvLine(csvHeader))
	for _, r := range rows {
		lines = append(lines, csvLine([]string{
			r.APIKey,
			r.Handle,
			r.ChatCompletionSource,
			r.ReverseProxy,
			r.APIKeySource,
			strconv.FormatInt(r.TotalUsage, 10),
			isoOrEmpty(r.FirstUsed),
			isoOrEmpty(r.LastUsed),
			strings.Join(r.Paths, ";"),
			strings.Join(r.SecretKeys, ";"),
		}))
	}
	return strings.Join(lines, "\n")
}

func csvLine(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

func isoOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
