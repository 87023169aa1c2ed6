package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"gerejaku_backend/internals/configs"
	"gerejaku_backend/internals/features/checkin/tokens/model"
)

const (
	rotatingPrefix = "rt_"
	staticPrefix   = "st_"
)

var (
	minBodyLen = base64.RawURLEncoding.EncodedLen(configs.MinTokenBytes)
	maxBodyLen = base64.RawURLEncoding.EncodedLen(configs.MaxTokenBytes) // muat di kolom varchar(128) bersama prefix
)

func prefixFor(kind model.TokenKind) string {
	if kind == model.TokenKindStatic {
		return staticPrefix
	}
	return rotatingPrefix
}

// MintToken: n byte acak (crypto/rand kalau r nil) → base64url tanpa padding, diberi prefix jenis token.
func MintToken(r io.Reader, kind model.TokenKind, n int) (string, error) {
	if n < configs.MinTokenBytes || n > configs.MaxTokenBytes {
		return "", fmt.Errorf("mint checkin token: panjang %d byte di luar %d..%d", n, configs.MinTokenBytes, configs.MaxTokenBytes)
	}
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("mint checkin token: %w", err)
	}
	return prefixFor(kind) + base64.RawURLEncoding.EncodeToString(buf), nil
}

// WellFormed: cek bentuk token sebelum menyentuh store. Tidak membuktikan token valid.
func WellFormed(tok string) (model.TokenKind, bool) {
	var kind model.TokenKind
	var body string
	switch {
	case strings.HasPrefix(tok, rotatingPrefix):
		kind, body = model.TokenKindRotating, tok[len(rotatingPrefix):]
	case strings.HasPrefix(tok, staticPrefix):
		kind, body = model.TokenKindStatic, tok[len(staticPrefix):]
	default:
		return "", false
	}
	if len(body) < minBodyLen || len(body) > maxBodyLen {
		return "", false
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return "", false
		}
	}
	return kind, true
}
