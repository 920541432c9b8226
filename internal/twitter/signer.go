package twitter

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Token is a caller's OAuth access token pair.
type Token struct {
	Key    string
	Secret string
}

// Signer produces OAuth 1.0a HMAC-SHA1 Authorization headers from the
// process consumer credential. Nonce and timestamp sources are injectable so
// tests can pin them; production signers draw a fresh pair per call.
type Signer struct {
	consumerKey    string
	consumerSecret string
	nonce          func() string
	clock          func() time.Time
}

// SignerOption customizes signer construction.
type SignerOption func(*Signer)

// WithNonceSource overrides the nonce generator.
func WithNonceSource(fn func() string) SignerOption {
	return func(s *Signer) { s.nonce = fn }
}

// WithClock overrides the timestamp source.
func WithClock(fn func() time.Time) SignerOption {
	return func(s *Signer) { s.clock = fn }
}

// NewSigner builds a signer for the given consumer credential.
func NewSigner(consumerKey, consumerSecret string, opts ...SignerOption) *Signer {
	s := &Signer{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		nonce:          randomNonce,
		clock:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func randomNonce() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to the clock.
		return strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(buf)
}

// AuthorizationHeader signs a request and returns the OAuth header value.
//
// form holds the request's form or query parameters, which participate in the
// signature base string but stay in the request body. extra holds additional
// oauth_* protocol parameters (oauth_callback, oauth_verifier) that are both
// signed and emitted in the header. token may be nil for the request-token
// exchange.
func (s *Signer) AuthorizationHeader(method, rawURL string, form url.Values, token *Token, extra map[string]string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse request url: %w", err)
	}

	oauthParams := map[string]string{
		"oauth_consumer_key":     s.consumerKey,
		"oauth_nonce":            s.nonce(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(s.clock().Unix(), 10),
		"oauth_version":          "1.0",
	}
	if token != nil && token.Key != "" {
		oauthParams["oauth_token"] = token.Key
	}
	for key, value := range extra {
		oauthParams[key] = value
	}

	signature := s.sign(method, parsed, form, oauthParams, token)
	oauthParams["oauth_signature"] = signature

	keys := make([]string, 0, len(oauthParams))
	for key := range oauthParams {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var header strings.Builder
	header.WriteString("OAuth ")
	for i, key := range keys {
		if i > 0 {
			header.WriteString(", ")
		}
		header.WriteString(percentEncode(key))
		header.WriteString(`="`)
		header.WriteString(percentEncode(oauthParams[key]))
		header.WriteString(`"`)
	}
	return header.String(), nil
}

func (s *Signer) sign(method string, parsed *url.URL, form url.Values, oauthParams map[string]string, token *Token) string {
	pairs := make([][2]string, 0, len(form)+len(oauthParams)+4)
	for key, values := range form {
		for _, value := range values {
			pairs = append(pairs, [2]string{percentEncode(key), percentEncode(value)})
		}
	}
	for key, values := range parsed.Query() {
		for _, value := range values {
			pairs = append(pairs, [2]string{percentEncode(key), percentEncode(value)})
		}
	}
	for key, value := range oauthParams {
		pairs = append(pairs, [2]string{percentEncode(key), percentEncode(value)})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})

	var normalized strings.Builder
	for i, pair := range pairs {
		if i > 0 {
			normalized.WriteByte('&')
		}
		normalized.WriteString(pair[0])
		normalized.WriteByte('=')
		normalized.WriteString(pair[1])
	}

	baseURL := parsed.Scheme + "://" + parsed.Host + parsed.EscapedPath()
	baseString := strings.ToUpper(method) + "&" + percentEncode(baseURL) + "&" + percentEncode(normalized.String())

	tokenSecret := ""
	if token != nil {
		tokenSecret = token.Secret
	}
	signingKey := percentEncode(s.consumerSecret) + "&" + percentEncode(tokenSecret)

	mac := hmac.New(sha1.New, []byte(signingKey))
	mac.Write([]byte(baseString))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// percentEncode applies the RFC 5849 variant of percent encoding: everything
// outside ALPHA / DIGIT / "-" / "." / "_" / "~" is escaped, uppercase hex.
func percentEncode(value string) string {
	var out strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			out.WriteByte(c)
		case c == '-' || c == '.' || c == '_' || c == '~':
			out.WriteByte(c)
		default:
			out.WriteString(fmt.Sprintf("%%%02X", c))
		}
	}
	return out.String()
}
