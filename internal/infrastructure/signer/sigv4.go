package signer

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	signingAlgorithm = "AWS4-HMAC-SHA256"
	amzDateFormat    = "20060102T150405Z"
	dateStampFormat  = "20060102"
)

// CanonicalSigner signs requests with a canonical-request HMAC chain in the
// SigV4 style: a deterministic signature over {method, URI, sorted query,
// sorted lower-cased headers, payload hash} under a key derived from
// date, region and service. Byte-exact for fixed inputs.
type CanonicalSigner struct {
	accessKeyID     string
	secretAccessKey string
	region          string
	service         string
	now             func() time.Time
}

// NewCanonicalSigner creates a CanonicalSigner
func NewCanonicalSigner(accessKeyID, secretAccessKey, region, service string) *CanonicalSigner {
	return &CanonicalSigner{
		accessKeyID:     accessKeyID,
		secretAccessKey: secretAccessKey,
		region:          region,
		service:         service,
		now:             time.Now,
	}
}

var _ RequestSigner = (*CanonicalSigner)(nil)

// Sign stamps X-Amz-Date and attaches the Authorization header carrying the
// credential scope, signed header list and signature
func (s *CanonicalSigner) Sign(_ context.Context, req *http.Request) error {
	body, err := readBody(req)
	if err != nil {
		return fmt.Errorf("signer: failed to read request body: %w", err)
	}

	amzDate := s.now().UTC().Format(amzDateFormat)
	dateStamp := amzDate[:len(dateStampFormat)]
	req.Header.Set("X-Amz-Date", amzDate)

	payloadHash := hexSHA256(body)
	canonicalHeaders, signedHeaders := canonicalizeHeaders(req)

	canonicalRequest := strings.Join([]string{
		req.Method,
		canonicalURI(req),
		canonicalQuery(req),
		canonicalHeaders,
		signedHeaders,
		payloadHash,
	}, "\n")

	scope := strings.Join([]string{dateStamp, s.region, s.service, "aws4_request"}, "/")
	stringToSign := strings.Join([]string{
		signingAlgorithm,
		amzDate,
		scope,
		hexSHA256([]byte(canonicalRequest)),
	}, "\n")

	signingKey := s.deriveKey(dateStamp)
	signature := hex.EncodeToString(hmacSHA256(signingKey, stringToSign))

	req.Header.Set("Authorization", fmt.Sprintf(
		"%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		signingAlgorithm, s.accessKeyID, scope, signedHeaders, signature,
	))
	return nil
}

// deriveKey walks the HMAC chain date -> region -> service -> terminator
func (s *CanonicalSigner) deriveKey(dateStamp string) []byte {
	key := hmacSHA256([]byte("AWS4"+s.secretAccessKey), dateStamp)
	key = hmacSHA256(key, s.region)
	key = hmacSHA256(key, s.service)
	return hmacSHA256(key, "aws4_request")
}

// canonicalURI returns the escaped path, defaulting to "/"
func canonicalURI(req *http.Request) string {
	if path := req.URL.EscapedPath(); path != "" {
		return path
	}
	return "/"
}

// canonicalQuery returns the sorted, percent-encoded query string
func canonicalQuery(req *http.Request) string {
	query := req.URL.Query()
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var pairs []string
	for _, key := range keys {
		values := query[key]
		sort.Strings(values)
		for _, value := range values {
			pairs = append(pairs, uriEncode(key)+"="+uriEncode(value))
		}
	}
	return strings.Join(pairs, "&")
}

// canonicalizeHeaders returns the canonical header block and the signed
// header list. The host header is always included.
func canonicalizeHeaders(req *http.Request) (canonical, signed string) {
	headers := map[string]string{
		"host": hostOf(req),
	}
	for name, values := range req.Header {
		headers[strings.ToLower(name)] = strings.TrimSpace(strings.Join(values, ","))
	}

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	var builder strings.Builder
	for _, name := range names {
		builder.WriteString(name)
		builder.WriteByte(':')
		builder.WriteString(headers[name])
		builder.WriteByte('\n')
	}
	return builder.String(), strings.Join(names, ";")
}

func hostOf(req *http.Request) string {
	if req.Host != "" {
		return req.Host
	}
	return req.URL.Host
}

// uriEncode percent-encodes per RFC 3986 with uppercase hex digits.
// Unlike url.QueryEscape, spaces become %20 and "~" stays literal.
func uriEncode(value string) string {
	var builder strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~':
			builder.WriteByte(c)
		default:
			builder.WriteString(fmt.Sprintf("%%%02X", c))
		}
	}
	return builder.String()
}

func hexSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}
