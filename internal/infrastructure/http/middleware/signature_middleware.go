package middleware

import (
	"bytes"
	"io"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-enrichment/pkg/ai"
)

const (
	// SignatureHeader carries the hex sha256 HMAC of "<timestamp>.<body>"
	SignatureHeader = "X-Signature"
	// TimestampHeader carries the unix seconds the request was signed at
	TimestampHeader = "X-Signature-Timestamp"

	maxSignatureSkew = 5 * time.Minute
)

// SignPayload returns the signature expected for body signed at ts
func SignPayload(secret string, ts int64, body []byte) string {
	payload := append([]byte(strconv.FormatInt(ts, 10)+"."), body...)
	return ai.Sign(secret, payload)
}

// EchoSignature returns an Echo middleware that rejects requests whose
// signature does not match secret. An empty secret disables the check.
func EchoSignature(secret string, onReject func(c echo.Context) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return next(c)
			}

			req := c.Request()
			ts, err := strconv.ParseInt(req.Header.Get(TimestampHeader), 10, 64)
			if err != nil {
				return onReject(c)
			}
			if skew := time.Since(time.Unix(ts, 0)); skew > maxSignatureSkew || skew < -maxSignatureSkew {
				return onReject(c)
			}

			var body []byte
			if req.Body != nil {
				body, err = io.ReadAll(req.Body)
				if err != nil {
					return onReject(c)
				}
				// handlers bind the body again
				req.Body = io.NopCloser(bytes.NewReader(body))
			}

			payload := append([]byte(strconv.FormatInt(ts, 10)+"."), body...)
			if !ai.VerifyHMAC(secret, payload, req.Header.Get(SignatureHeader)) {
				return onReject(c)
			}
			return next(c)
		}
	}
}
