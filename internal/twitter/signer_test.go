package twitter

import (
	"net/url"
	"strings"
	"testing"
	"time"
)

// Vector from the platform's "Creating a signature" documentation.
func TestAuthorizationHeaderMatchesDocumentedVector(t *testing.T) {
	signer := NewSigner(
		"xvz1evFS4wEEPTGEFPHBog",
		"kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw",
		WithNonceSource(func() string { return "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg" }),
		WithClock(func() time.Time { return time.Unix(1318622958, 0) }),
	)
	token := &Token{
		Key:    "370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb",
		Secret: "LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE",
	}
	form := url.Values{}
	form.Set("status", "Hello Ladies + Gentlemen, a signed OAuth request!")
	form.Set("include_entities", "true")

	header, err := signer.AuthorizationHeader("POST", "https://api.twitter.com/1.1/statuses/update.json", form, token, nil)
	if err != nil {
		t.Fatalf("AuthorizationHeader: %v", err)
	}

	if !strings.HasPrefix(header, "OAuth ") {
		t.Fatalf("header missing OAuth prefix: %q", header)
	}
	want := `oauth_signature="` + percentEncode("hCtSmYh+iHYCEqBWrE7C7hYmtUk=") + `"`
	if !strings.Contains(header, want) {
		t.Fatalf("header signature mismatch:\n  got  %q\n  want fragment %q", header, want)
	}
	if !strings.Contains(header, `oauth_consumer_key="xvz1evFS4wEEPTGEFPHBog"`) {
		t.Fatalf("header missing consumer key: %q", header)
	}
	if !strings.Contains(header, `oauth_signature_method="HMAC-SHA1"`) {
		t.Fatalf("header missing signature method: %q", header)
	}
}

func TestAuthorizationHeaderFreshNoncePerCall(t *testing.T) {
	signer := NewSigner("ck", "cs")
	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		header, err := signer.AuthorizationHeader("POST", "https://upload.twitter.com/1.1/media/upload.json", nil, &Token{Key: "t", Secret: "s"}, nil)
		if err != nil {
			t.Fatalf("AuthorizationHeader: %v", err)
		}
		nonce := extractParam(t, header, "oauth_nonce")
		if _, dup := seen[nonce]; dup {
			t.Fatalf("nonce %q repeated", nonce)
		}
		seen[nonce] = struct{}{}
	}
}

func TestAuthorizationHeaderWithoutToken(t *testing.T) {
	signer := NewSigner("ck", "cs",
		WithNonceSource(func() string { return "fixed" }),
		WithClock(func() time.Time { return time.Unix(1700000000, 0) }),
	)
	header, err := signer.AuthorizationHeader("POST", "https://api.twitter.com/oauth/request_token", nil, nil, map[string]string{
		"oauth_callback": "https://www.clipshare.xyz/auth/authorized",
	})
	if err != nil {
		t.Fatalf("AuthorizationHeader: %v", err)
	}
	if strings.Contains(header, "oauth_token=") {
		t.Fatalf("tokenless header should not carry oauth_token: %q", header)
	}
	if !strings.Contains(header, `oauth_callback="`+percentEncode("https://www.clipshare.xyz/auth/authorized")+`"`) {
		t.Fatalf("header missing callback: %q", header)
	}
}

func TestSignatureCoversBody(t *testing.T) {
	signer := NewSigner("ck", "cs",
		WithNonceSource(func() string { return "fixed" }),
		WithClock(func() time.Time { return time.Unix(1700000000, 0) }),
	)
	token := &Token{Key: "t", Secret: "s"}

	formA := url.Values{"command": {"APPEND"}, "segment_index": {"0"}}
	formB := url.Values{"command": {"APPEND"}, "segment_index": {"1"}}

	headerA, err := signer.AuthorizationHeader("POST", "https://upload.twitter.com/1.1/media/upload.json", formA, token, nil)
	if err != nil {
		t.Fatalf("AuthorizationHeader: %v", err)
	}
	headerB, err := signer.AuthorizationHeader("POST", "https://upload.twitter.com/1.1/media/upload.json", formB, token, nil)
	if err != nil {
		t.Fatalf("AuthorizationHeader: %v", err)
	}
	if headerA == headerB {
		t.Fatal("signature did not change with body parameters")
	}
}

func TestPercentEncode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Ladies + Gentlemen", "Ladies%20%2B%20Gentlemen"},
		{"An encoded string!", "An%20encoded%20string%21"},
		{"Dogs, Cats & Mice", "Dogs%2C%20Cats%20%26%20Mice"},
		{"☃", "%E2%98%83"},
		{"safe-._~", "safe-._~"},
	}
	for _, tc := range cases {
		if got := percentEncode(tc.in); got != tc.want {
			t.Errorf("percentEncode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func extractParam(t *testing.T, header, name string) string {
	t.Helper()
	idx := strings.Index(header, name+`="`)
	if idx < 0 {
		t.Fatalf("header missing %s: %q", name, header)
	}
	rest := header[idx+len(name)+2:]
	end := strings.Index(rest, `"`)
	if end < 0 {
		t.Fatalf("unterminated %s in %q", name, header)
	}
	return rest[:end]
}
