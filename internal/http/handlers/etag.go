package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// jsonBody is a response rendered once and served many times.
type jsonBody struct {
	body []byte
	etag string
}

func newJSONBody(body []byte) jsonBody {
	sum := sha256.Sum256(body)

	return jsonBody{body: body, etag: `"` + hex.EncodeToString(sum[:]) + `"`}
}

func respondJSONBodyWithETag(ctx *gin.Context, status int, b jsonBody) {
	ctx.Header("ETag", b.etag)

	if ifNoneMatchMatches(ctx.GetHeader("If-None-Match"), b.etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(status, "application/json; charset=utf-8", b.body)
}

func ifNoneMatchMatches(headerValue, currentETag string) bool {
	if strings.TrimSpace(headerValue) == "" || strings.TrimSpace(currentETag) == "" {
		return false
	}

	if strings.TrimSpace(headerValue) == "*" {
		return true
	}

	current := normalizeETag(currentETag)

	for _, part := range strings.Split(headerValue, ",") {
		if normalizeETag(part) == current {
			return true
		}
	}

	return false
}

func normalizeETag(raw string) string {
	v := strings.TrimSpace(raw)

	// weak validators (W/"abc") compare equal for If-None-Match
	if strings.HasPrefix(v, "W/") {
		v = strings.TrimSpace(strings.TrimPrefix(v, "W/"))
	}

	return v
}
