package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// MaskValue replaces sensitive attribute values in log output.
const MaskValue = "***REDACTED***"

// maskedKeys are attribute keys whose values are always masked, matched
// case-insensitively. Souschef routinely logs inference requests and
// HTTP exchanges, so header and credential names dominate this list.
var maskedKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,

	"password":      true,
	"passwd":        true,
	"secret":        true,
	"secret_key":    true,
	"secretkey":     true,
	"token":         true,
	"access_token":  true,
	"refresh_token": true,
	"api_key":       true,
	"apikey":        true,
	"api-key":       true,
	"private_key":   true,
	"privatekey":    true,

	"session":    true,
	"session_id": true,
	"sessionid":  true,
	"sid":        true,

	"auth":        true,
	"credential":  true,
	"credentials": true,
}

// maskedKeywords catch keys like "user_password" or "api_token" that are
// not in maskedKeys verbatim. The bare word "key" is deliberately absent:
// it matches far too much ordinary vocabulary (cache_key, keyboard,
// monkey) and the dangerous key-suffixed names are listed explicitly
// above.
var maskedKeywords = []string{
	"password", "passwd", "secret", "token", "auth", "credential", "private",
}

// secretShapes match values that look like credentials no matter what key
// they were logged under. The OpenAI-style sk- prefix matters most here:
// that is the shape of the API key souschef is configured with.
var secretShapes = []*regexp.Regexp{
	regexp.MustCompile(`^sk-[A-Za-z0-9_-]{10,}$`),
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),
	regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`),
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
}

// SecureHandler is an slog.Handler that masks credential-looking
// attributes before delegating to a wrapped handler.
//
// Design decision: masking lives in a handler wrapper rather than at
// each call site so that every component holding a *slog.Logger gets it
// for free, regardless of whether the output is text or JSON.
type SecureHandler struct {
	inner slog.Handler
}

var _ slog.Handler = (*SecureHandler)(nil)

// NewSecureHandler wraps handler with attribute masking. A nil handler
// falls back to slog.Default().Handler().
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{inner: handler}
}

// Enabled delegates to the wrapped handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle rebuilds the record with masked attributes and forwards it.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(maskAttr(a))
		return true
	})
	return h.inner.Handle(ctx, masked)
}

// WithAttrs masks the attributes before handing them to the wrapped
// handler, so pre-bound attributes get the same treatment as per-record
// ones.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = maskAttr(a)
	}
	return &SecureHandler{inner: h.inner.WithAttrs(masked)}
}

// WithGroup delegates to the wrapped handler.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{inner: h.inner.WithGroup(name)}
}

// maskAttr returns the attribute with its value replaced by MaskValue
// when either the key or the value looks sensitive. Groups are walked
// recursively.
func maskAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		masked := make([]slog.Attr, len(members))
		for i, member := range members {
			masked[i] = maskAttr(member)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	}

	if sensitiveKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}
	if a.Value.Kind() == slog.KindString && secretShaped(a.Value.String()) {
		return slog.String(a.Key, MaskValue)
	}
	return a
}

// sensitiveKey reports whether an attribute key names a credential.
func sensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	if maskedKeys[lower] {
		return true
	}
	for _, keyword := range maskedKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// secretShaped reports whether a value matches a known credential shape.
func secretShaped(value string) bool {
	for _, shape := range secretShapes {
		if shape.MatchString(value) {
			return true
		}
	}
	return false
}

// NewSecureLogger returns a text logger writing to w with credential
// masking. Verbose selects LevelDebug; the default is LevelWarn so a
// normal run stays quiet.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewSecureJSONLogger is NewSecureLogger with JSON output, for log
// aggregation setups.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
