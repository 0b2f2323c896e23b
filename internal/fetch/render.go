package fetch

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Render converts a Result into the single text payload the tool contract
// declares. Successful text bodies pass through unchanged; binary bodies are
// base64-encoded rather than rejected, so the tool stays total over arbitrary
// origins. Failures become a diagnostic enumerating every attempt, without
// credential material.
func Render(res Result) string {
	if res.OK {
		return renderSuccess(res)
	}
	return RenderFailure(res.Attempts)
}

func renderSuccess(res Result) string {
	var b strings.Builder

	if isTextual(res.ContentType, res.Body) {
		b.Write(res.Body)
	} else {
		fmt.Fprintf(&b, "Binary response (%s), base64-encoded:\n", contentTypeLabel(res.ContentType))
		b.WriteString(base64.StdEncoding.EncodeToString(res.Body))
	}

	if res.Truncated {
		fmt.Fprintf(&b, "\n[response truncated after %d bytes]", len(res.Body))
	}
	return b.String()
}

// RenderFailure builds the human-readable diagnostic for a failed fetch,
// naming each tried mechanism and its outcome in order.
func RenderFailure(attempts []Attempt) string {
	if len(attempts) == 0 {
		return "fetch failed: no configured authentication mechanism is usable in this environment"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "fetch failed after %d attempt(s):\n", len(attempts))
	for _, attempt := range attempts {
		fmt.Fprintf(&b, "  - %s\n", attempt)
	}

	last := attempts[len(attempts)-1]
	switch last.Outcome {
	case OutcomeTransportError:
		b.WriteString("aborted: a network-level fault cannot be fixed by another credential scheme")
	case OutcomeHTTPError:
		b.WriteString("the origin answered with a non-authentication error")
	default:
		b.WriteString("all configured mechanisms were rejected by the origin")
	}
	return b.String()
}

// isTextual decides whether a body can be returned as-is. The Content-Type
// header wins when present; otherwise the bytes themselves decide.
func isTextual(contentType string, body []byte) bool {
	ct := strings.ToLower(contentType)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}

	switch {
	case strings.HasPrefix(ct, "text/"):
		return true
	case strings.HasSuffix(ct, "+json") || strings.HasSuffix(ct, "+xml"):
		return true
	case ct == "application/json" || ct == "application/xml" || ct == "application/javascript" || ct == "application/x-www-form-urlencoded":
		return true
	case ct == "":
		return utf8.Valid(body) && !strings.ContainsRune(string(body), 0)
	default:
		return false
	}
}

func contentTypeLabel(contentType string) string {
	if contentType == "" {
		return "unknown content type"
	}
	return contentType
}
