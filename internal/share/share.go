// Package share turns a trail into a self-contained URL token and back.
//
// A token is the trail's JSON encoded as unpadded URL-safe base64. Tokens
// arrive from untrusted links, so Decode caps their size and checks the
// decoded record field by field before handing it out.
package share

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"constellations/internal/trail"
)

// Param is the query parameter carrying a token.
const Param = "share"

// MaxTokenLen fits any valid trail with plain-text ids. Ids or names that
// JSON must escape heavily can still exceed it; Encode refuses those.
const MaxTokenLen = 128 << 10

var (
	ErrDecode = errors.New("share: invalid token")
	ErrEncode = errors.New("share: trail cannot be shared")
)

// wire is the token payload. It mirrors the stored trail shape.
type wire struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	PointIDs    []string `json:"pointIds"`
	Description string   `json:"description,omitempty"`
	CreatedAt   int64    `json:"createdAt"`
}

// Encode serializes t into a token. It applies the same checks as Decode,
// so every token it returns decodes back to t.
func Encode(t trail.Trail) (string, error) {
	w := wire{
		ID:          t.ID,
		Name:        t.Name,
		PointIDs:    t.PointIDs,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UnixMilli(),
	}
	if err := w.check(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncode, err)
	}
	b, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncode, err)
	}
	tok := base64.RawURLEncoding.EncodeToString(b)
	if len(tok) > MaxTokenLen {
		return "", fmt.Errorf("%w: token of %d bytes exceeds %d", ErrEncode, len(tok), MaxTokenLen)
	}
	return tok, nil
}

// Decode parses a token. Standard and URL-safe alphabets are both accepted,
// with or without padding. A space stands for '+' mangled by query decoding.
func Decode(token string) (trail.Trail, error) {
	token = strings.Trim(token, "\r\n\t")
	if token == "" {
		return trail.Trail{}, fmt.Errorf("%w: empty", ErrDecode)
	}
	if len(token) > MaxTokenLen {
		return trail.Trail{}, fmt.Errorf("%w: %d bytes exceeds %d", ErrDecode, len(token), MaxTokenLen)
	}
	raw, err := base64.RawURLEncoding.DecodeString(normalize(token))
	if err != nil {
		return trail.Trail{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var w wire
	if err := dec.Decode(&w); err != nil {
		return trail.Trail{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return trail.Trail{}, fmt.Errorf("%w: trailing data", ErrDecode)
	}
	if err := w.check(); err != nil {
		return trail.Trail{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return trail.Trail{
		ID:          w.ID,
		Name:        w.Name,
		PointIDs:    w.PointIDs,
		Description: w.Description,
		CreatedAt:   time.UnixMilli(w.CreatedAt).UTC(),
	}, nil
}

func normalize(token string) string {
	token = strings.TrimRight(token, "=")
	return strings.NewReplacer("+", "-", " ", "-", "/", "_").Replace(token)
}

func (w wire) check() error {
	if w.ID == "" {
		return errors.New("missing id")
	}
	if w.CreatedAt < 0 {
		return errors.New("negative createdAt")
	}
	return trail.Trail{
		Name:        w.Name,
		PointIDs:    w.PointIDs,
		Description: w.Description,
	}.Validate()
}

// Link returns base with the trail's token in the share parameter.
func Link(base string, t trail.Trail) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("share: base url: %w", err)
	}
	token, err := Encode(t)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(Param, token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FromURL extracts the share token from raw and returns raw with the
// parameter removed. ok is false when raw carries no token.
func FromURL(raw string) (token, stripped string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", raw, false
	}
	q := u.Query()
	token = q.Get(Param)
	if token == "" {
		return "", raw, false
	}
	q.Del(Param)
	u.RawQuery = q.Encode()
	return token, u.String(), true
}

// TokenOf accepts either a share link or a bare token.
func TokenOf(arg string) string {
	if token, _, ok := FromURL(arg); ok {
		return token
	}
	return strings.TrimSpace(arg)
}
