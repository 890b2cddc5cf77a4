package client

import (
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// validTests is the whitelist of test types, in the order they are sent.
var validTests = []string{
	"dig", "host", "ping", "http", "fast", "edge", "trace", "shot", "nametime",
}

var (
	hexPattern    = regexp.MustCompile(`^[0-9A-Fa-f]+$`)
	serverPattern = regexp.MustCompile(`^[a-z]+$`)
	// host:port with no scheme, e.g. "example.com:8080/path".
	hostPortPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+:[0-9]+(?:[/?#]|$)`)
	// DNS name; underscore labels (_dmarc, _sip._tcp) and one trailing dot allowed.
	dnsNamePattern = regexp.MustCompile(`^(?:[A-Za-z0-9_](?:[A-Za-z0-9_-]{0,61}[A-Za-z0-9_])?\.)*[A-Za-z0-9_](?:[A-Za-z0-9_-]{0,61}[A-Za-z0-9_])?\.?$`)

	validate = newValidator()
)

// urlSafe holds the punctuation kept by sanitizeURL next to ASCII letters and digits.
const urlSafe = "$-_.+!*'(),{}|\\^~[]`<>#%\";/?:@&="

type credentials struct {
	ID    string `validate:"required,xdigit"`
	Token string `validate:"required,xdigit"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	// validator's own "hexadecimal" tag accepts a 0x prefix, which the API does not.
	if err := v.RegisterValidation("xdigit", func(fl validator.FieldLevel) bool {
		return hexPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("dnsname", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return len(name) <= 254 && dnsNamePattern.MatchString(name)
	}); err != nil {
		panic(err)
	}
	return v
}

func isHex(s string) bool {
	return validate.Var(s, "required,xdigit") == nil
}

// NewJobRequest validates and normalizes the arguments of a submission.
// Checks run in order (address, servers, tests) and the first failure is
// returned as a *ValidationError.
func NewJobRequest(uri string, servers, tests []string, options map[string]any) (JobRequest, error) {
	normalized, ok := normalizeURI(uri)
	if !ok {
		return JobRequest{}, invalid(msgBadAddress)
	}

	sources := filterServers(servers)
	if len(sources) == 0 {
		return JobRequest{}, invalid(msgNoServers)
	}

	requested := intersectTests(tests)
	if len(requested) == 0 {
		return JobRequest{}, invalid(msgNoTests)
	}

	if options == nil {
		options = map[string]any{}
	}
	return JobRequest{
		URI:     normalized,
		Sources: sources,
		Tests:   requested,
		Options: options,
	}, nil
}

// normalizeURI sanitizes raw, adds http:// when no scheme is present and
// checks the result has an allowed scheme and a real host.
func normalizeURI(raw string) (string, bool) {
	uri := sanitizeURL(raw)
	if u, err := url.Parse(uri); err != nil || u.Scheme == "" || hostPortPattern.MatchString(uri) {
		uri = "http://" + uri
	}

	u, err := url.Parse(uri)
	if err != nil {
		return "", false
	}
	if validate.Var(u.Scheme, "oneof=http https ftp") != nil {
		return "", false
	}
	if validate.Var(u.Hostname(), "required,ip|dnsname") != nil {
		return "", false
	}
	return uri, true
}

// sanitizeURL drops every character that may not appear in a URL.
func sanitizeURL(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r < utf8.RuneSelf && strings.ContainsRune(urlSafe, r):
			return r
		default:
			return -1
		}
	}, s)
}

func filterServers(servers []string) []string {
	out := make([]string, 0, len(servers))
	for _, s := range servers {
		if serverPattern.MatchString(s) {
			out = append(out, s)
		}
	}
	return out
}

func intersectTests(tests []string) []string {
	requested := make(map[string]bool, len(tests))
	for _, t := range tests {
		requested[t] = true
	}
	out := make([]string, 0, len(validTests))
	for _, t := range validTests {
		if requested[t] {
			out = append(out, t)
		}
	}
	return out
}

// DecodeJobRequest decodes a raw JSON job request without validating it.
//
// Decoding is permissive: a field of the wrong type falls back to its
// default ("" for uri, empty for sources, tests and options), non-string
// elements of sources and tests are dropped, and a top-level array is
// accepted as a request with every field absent. Only input that is not
// text, or not a JSON object or array, is rejected.
func DecodeJobRequest(raw []byte) (JobRequest, error) {
	if !utf8.Valid(raw) {
		return JobRequest{}, invalid(msgRawNotText)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return JobRequest{}, invalid(msgRawNotJSON)
	}
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		return JobRequest{}, invalid(msgRawNotJSON)
	}

	req := JobRequest{
		Sources: []string{},
		Tests:   []string{},
		Options: map[string]any{},
	}
	switch v := decoded.(type) {
	case map[string]any:
		if s, ok := v["uri"].(string); ok {
			req.URI = s
		}
		req.Sources = stringElements(v["sources"])
		req.Tests = stringElements(v["tests"])
		if o, ok := v["options"].(map[string]any); ok {
			req.Options = o
		}
	case []any:
	default:
		return JobRequest{}, invalid(msgRawNotJSON)
	}
	return req, nil
}

func stringElements(v any) []string {
	out := []string{}
	list, ok := v.([]any)
	if !ok {
		return out
	}
	for _, e := range list {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
