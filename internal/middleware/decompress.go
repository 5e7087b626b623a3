package middleware

import (
	"bytes"
	"fmt"
	"io"
	"keyhub/internal/core"
	cErr "keyhub/internal/pkg/error"
	"keyhub/internal/pkg/response"
	"keyhub/internal/telemetry"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"go.opentelemetry.io/otel/attribute"
)

// 解壓後 body 上限
const maxDecodedBody = 1 << 20

// Decompress 依 Content-Encoding 解開 request body（gzip / deflate / br / zstd）
type Decompress struct {
	trace *telemetry.Trace
}

func NewDecompress(trace *telemetry.Trace) *Decompress {
	return &Decompress{trace: trace}
}

func (middleware *Decompress) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		encoding := strings.ToLower(strings.TrimSpace(c.GetHeader("Content-Encoding")))
		if encoding == "" || encoding == "identity" || c.Request.Body == nil {
			c.Next()
			return
		}
		_, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanDecompressMiddleware))
		span.SetAttributes(attribute.String("http.request.content_encoding", encoding))

		decoded, err := decodeBody(encoding, c.Request.Body)
		_ = c.Request.Body.Close()
		if err != nil {
			end(nil)
			response.AbortWithError(c, cErr.BadRequestBody(err.Error()))
			return
		}
		span.SetAttributes(attribute.Int("http.request.decoded_length", len(decoded)))
		end(nil)

		c.Request.Body = io.NopCloser(bytes.NewReader(decoded))
		c.Request.ContentLength = int64(len(decoded))
		c.Request.Header.Set("Content-Length", strconv.Itoa(len(decoded)))
		c.Request.Header.Del("Content-Encoding")
		c.Next()
	}
}

func decodeBody(encoding string, body io.Reader) ([]byte, error) {
	var reader io.Reader
	switch encoding {
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("invalid gzip body: %w", err)
		}
		defer zr.Close()
		reader = zr
	case "deflate":
		zr, err := zlib.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("invalid deflate body: %w", err)
		}
		defer zr.Close()
		reader = zr
	case "br":
		reader = brotli.NewReader(body)
	case "zstd":
		dec, err := zstd.NewReader(body, zstd.WithDecoderMaxMemory(maxDecodedBody*4))
		if err != nil {
			return nil, fmt.Errorf("invalid zstd body: %w", err)
		}
		defer dec.Close()
		reader = dec
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}

	data, err := io.ReadAll(io.LimitReader(reader, maxDecodedBody+1))
	if err != nil {
		return nil, fmt.Errorf("decode %s body: %w", encoding, err)
	}
	if len(data) > maxDecodedBody {
		return nil, fmt.Errorf("decoded body exceeds %d bytes", maxDecodedBody)
	}
	return data, nil
}
