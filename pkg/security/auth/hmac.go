package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
)

// BodyDigest returns the lowercase hex SHA-256 of body.
func BodyDigest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// canonical builds the signed string: timestamp, nonce and body digest
// joined by newlines.
func canonical(timestamp, nonce string, body []byte) []byte {
	var b strings.Builder
	b.Grow(len(timestamp) + len(nonce) + 2 + sha256.Size*2)
	b.WriteString(timestamp)
	b.WriteByte('\n')
	b.WriteString(nonce)
	b.WriteByte('\n')
	b.WriteString(BodyDigest(body))
	return []byte(b.String())
}

// Sign returns the raw HMAC-SHA256 signature for a request.
func Sign(secret string, timestamp int64, nonce string, body []byte) []byte {
	return sign(secret, strconv.FormatInt(timestamp, 10), nonce, body)
}

func sign(secret, timestamp, nonce string, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(canonical(timestamp, nonce, body))
	return mac.Sum(nil)
}

// SignHex returns the signature hex encoded.
func SignHex(secret string, timestamp int64, nonce string, body []byte) string {
	return hex.EncodeToString(Sign(secret, timestamp, nonce, body))
}

// SignBase64 returns the signature in standard base64.
func SignBase64(secret string, timestamp int64, nonce string, body []byte) string {
	return base64.StdEncoding.EncodeToString(Sign(secret, timestamp, nonce, body))
}

// decodeSignature accepts hex first, then standard base64.
func decodeSignature(sig string) ([]byte, bool) {
	sig = strings.TrimSpace(sig)
	if raw, err := hex.DecodeString(sig); err == nil {
		return raw, true
	}
	if raw, err := base64.StdEncoding.DecodeString(sig); err == nil {
		return raw, true
	}
	return nil, false
}
