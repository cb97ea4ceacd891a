package gcs

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"net/url"
	"strings"
	"testing"
	"time"
)

func testSigner(t *testing.T) *urlSigner {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	return &urlSigner{email: "signer@example.com", key: key}
}

func TestSignedURLContainsV4Params(t *testing.T) {
	t.Parallel()

	signer := testSigner(t)
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	urlStr, err := signer.sign("proofs-bucket", "PUT", "proofs/installment/abc.png", "image/png", now, 15*time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		t.Fatalf("parse signed url: %v", err)
	}
	if parsed.Host != "storage.googleapis.com" {
		t.Fatalf("unexpected host %s", parsed.Host)
	}
	if parsed.Path != "/proofs-bucket/proofs/installment/abc.png" {
		t.Fatalf("unexpected path %s", parsed.Path)
	}

	values := parsed.Query()
	if got := values.Get("X-Goog-Algorithm"); got != "GOOG4-RSA-SHA256" {
		t.Fatalf("unexpected algorithm %q", got)
	}
	if got := values.Get("X-Goog-Credential"); !strings.HasPrefix(got, "signer@example.com/20260314/auto/storage/goog4_request") {
		t.Fatalf("unexpected credential %q", got)
	}
	if got := values.Get("X-Goog-Date"); got != "20260314T093000Z" {
		t.Fatalf("unexpected date %q", got)
	}
	if got := values.Get("X-Goog-Expires"); got != "900" {
		t.Fatalf("unexpected expires %q", got)
	}
	if got := values.Get("X-Goog-SignedHeaders"); got != "content-type;host" {
		t.Fatalf("unexpected signed headers %q", got)
	}
	if values.Get("X-Goog-Signature") == "" {
		t.Fatal("signature missing")
	}
}

func TestSignedURLSignatureVerifies(t *testing.T) {
	t.Parallel()

	signer := testSigner(t)
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	urlStr, err := signer.sign("proofs-bucket", "PUT", "proofs/guest_order/xyz.jpg", "image/jpeg", now, 10*time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	parsed, err := url.Parse(urlStr)
	if err != nil {
		t.Fatalf("parse signed url: %v", err)
	}

	values := parsed.Query()
	signature, err := hex.DecodeString(values.Get("X-Goog-Signature"))
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	values.Del("X-Goog-Signature")

	canonicalRequest := strings.Join([]string{
		"PUT",
		parsed.EscapedPath(),
		canonicalQueryString(values),
		"content-type:image/jpeg\nhost:storage.googleapis.com\n",
		"content-type;host",
		"UNSIGNED-PAYLOAD",
	}, "\n")
	requestHash := sha256.Sum256([]byte(canonicalRequest))
	stringToSign := strings.Join([]string{
		"GOOG4-RSA-SHA256",
		"20260314T093000Z",
		"20260314/auto/storage/goog4_request",
		hex.EncodeToString(requestHash[:]),
	}, "\n")
	digest := sha256.Sum256([]byte(stringToSign))

	if err := rsa.VerifyPKCS1v15(&signer.key.PublicKey, crypto.SHA256, digest[:], signature); err != nil {
		t.Fatalf("signature does not verify: %v", err)
	}
}

func TestSignedURLRejectsBadInputs(t *testing.T) {
	t.Parallel()

	signer := testSigner(t)
	now := time.Now().UTC()

	if _, err := signer.sign("bucket", "PUT", "", "image/png", now, time.Minute); err == nil {
		t.Fatal("expected error for empty object")
	}
	if _, err := signer.sign("bucket", "PUT", "object", "image/png", now, 0); err == nil {
		t.Fatal("expected error for zero expiry")
	}
	if _, err := signer.sign("bucket", "PUT", "object", "image/png", now, 8*24*time.Hour); err == nil {
		t.Fatal("expected error beyond seven day maximum")
	}
}

func TestSignedURLRequiresServiceAccount(t *testing.T) {
	t.Parallel()

	client := &Client{bucket: "bucket"}
	if _, err := client.SignedURL("PUT", "object", "image/png", time.Minute); err == nil {
		t.Fatal("expected error without service account credentials")
	}
}

func TestParsePrivateKeyPKCS1AndPKCS8(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}

	pkcs1 := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	if _, err := parsePrivateKey(string(pkcs1)); err != nil {
		t.Fatalf("parse pkcs1: %v", err)
	}

	pkcs8Bytes, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal pkcs8: %v", err)
	}
	pkcs8 := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8Bytes})
	if _, err := parsePrivateKey(string(pkcs8)); err != nil {
		t.Fatalf("parse pkcs8: %v", err)
	}

	if _, err := parsePrivateKey("not a key"); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestTokenSourceCachesUntilExpiry(t *testing.T) {
	t.Parallel()

	calls := 0
	ts := &tokenSource{
		fetch: func(ctx context.Context) (string, time.Time, error) {
			calls++
			return "token", time.Now().Add(time.Hour), nil
		},
	}

	for i := 0; i < 3; i++ {
		token, err := ts.Token(context.Background())
		if err != nil {
			t.Fatalf("Token: %v", err)
		}
		if token != "token" {
			t.Fatalf("unexpected token %q", token)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single fetch, got %d", calls)
	}
}
