// Package token provides compact, signed tokens for embedding JSON payloads.
//
// Tokens carry a full HMAC-SHA256 signature because they authenticate users
// directly (magic links). Expiry is the caller's responsibility: embed a
// timestamp in the payload and check it after Parse succeeds, so expired and
// forged tokens can be reported through the same error path.
//
// Token format: base64url(payload).base64url(signature)
//
// # Usage
//
//	type claims struct {
//	    SessionID string `json:"sid"`
//	    Exp       int64  `json:"exp"`
//	}
//
//	tok, err := token.Generate(claims{sid, time.Now().Add(time.Hour).Unix()}, secret)
//
//	c, err := token.Parse[claims](tok, secret)
//
// Parse returns ErrInvalidToken for malformed tokens and ErrSignatureInvalid
// for signature mismatches.
package token
