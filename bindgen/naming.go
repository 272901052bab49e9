package bindgen

import (
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Methods declared on every generated type.
var reservedMethods = map[string]bool{
	"Language":                      true,
	"ValidateDefaultBundleComplete": true,
}

// Identifiers used inside generated method bodies.
var reservedParams = map[string]bool{
	"l":            true,
	"args":         true,
	"localization": true,
}

// sanitize replaces every rune outside [A-Za-z0-9_] with '_'.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, s)
}

// AccessorName is the accessor name of a message: resource_key with
// non-identifier runes replaced.
func AccessorName(resource, key string) string {
	return sanitize(resource) + "_" + sanitize(key)
}

// MethodName turns an accessor name into an exported Go method name:
// base_only_default becomes BaseOnlyDefault.
func MethodName(accessor string) string {
	var sb strings.Builder
	for _, part := range strings.Split(accessor, "_") {
		if part == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(part)
		sb.WriteRune(unicode.ToUpper(r))
		sb.WriteString(part[size:])
	}
	return sb.String()
}

// checkMethod returns why method cannot be used, or "".
func checkMethod(method string) string {
	switch {
	case method == "":
		return "empty after sanitizing"
	case method[0] >= '0' && method[0] <= '9':
		return "starts with a digit"
	case reservedMethods[method]:
		return "clashes with a generated method"
	}
	return ""
}

// ParamName turns a Fluent variable name into a Go parameter name:
// user-name becomes userName, URL becomes url, type becomes typeArg.
func ParamName(variable string) string {
	var sb strings.Builder
	first := true
	for _, part := range strings.Split(sanitize(variable), "_") {
		if part == "" {
			continue
		}
		if first {
			if strings.ToUpper(part) == part {
				part = strings.ToLower(part)
			} else {
				r, size := utf8.DecodeRuneInString(part)
				part = string(unicode.ToLower(r)) + part[size:]
			}
			first = false
		} else {
			r, size := utf8.DecodeRuneInString(part)
			part = string(unicode.ToUpper(r)) + part[size:]
		}
		sb.WriteString(part)
	}

	name := sb.String()
	if token.IsKeyword(name) || reservedParams[name] {
		name += "Arg"
	}
	return name
}
