package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Vovarama1992/mediavault/internal/config"
)

// Grant is a transient token+expiry pair. Grants are never persisted, so an
// issued URL stays valid until it expires and cannot be revoked.
type Grant struct {
	URL       string
	Token     string
	ExpiresAt int64 // epoch milliseconds
}

type URLSigner struct {
	baseURL string
	ttl     time.Duration
	tokens  *TokenCodec
	now     func() time.Time
}

func NewURLSigner(cfg config.StreamConfig, tokens *TokenCodec) *URLSigner {
	if tokens == nil {
		tokens = NewTokenCodec()
	}
	ttl := cfg.URLTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &URLSigner{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		ttl:     ttl,
		tokens:  tokens,
		now:     time.Now,
	}
}

// Issue builds a stream URL for assetID that expires ttl from now (the
// configured TTL when ttl <= 0). The caller has already checked that the
// asset exists. The second argument is the asset's file locator; it is not
// embedded in the URL.
func (s *URLSigner) Issue(assetID, _ string, ttl time.Duration) (Grant, error) {
	if strings.TrimSpace(assetID) == "" {
		return Grant{}, ErrValidation
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	token, err := s.tokens.GenerateToken()
	if err != nil {
		return Grant{}, fmt.Errorf("generate token: %w", err)
	}

	expires := s.now().Add(ttl).UnixMilli()

	q := url.Values{}
	q.Set("token", token)
	q.Set("expires", strconv.FormatInt(expires, 10))

	return Grant{
		URL:       s.baseURL + "/media/stream/" + url.PathEscape(assetID) + "?" + q.Encode(),
		Token:     token,
		ExpiresAt: expires,
	}, nil
}
