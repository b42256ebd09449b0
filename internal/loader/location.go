package loader

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Normalize turns a path or URL into the canonical location used as a cache
// key. Paths become absolute file:// URLs and any fragment is dropped.
func Normalize(location string) (string, error) {
	if location == "" {
		return "", fmt.Errorf("empty location")
	}

	if isURL(location) {
		u, err := url.Parse(location)
		if err != nil {
			return "", fmt.Errorf("parsing location %s: %w", location, err)
		}
		u.Fragment = ""
		u.RawFragment = ""
		return u.String(), nil
	}

	abs, err := filepath.Abs(location)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path %s: %w", location, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// Join resolves a $ref string against the location of the document that
// contains it. It returns the target document location and the normalized
// JSON pointer into that document.
func Join(base, ref string) (location, pointer string, err error) {
	refPath, fragment, _ := strings.Cut(ref, "#")

	if fragment != "" {
		if unescaped, uerr := url.PathUnescape(fragment); uerr == nil {
			fragment = unescaped
		}
	}
	pointer = NormalizePointer(fragment)

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", "", fmt.Errorf("parsing base location %s: %w", base, err)
	}

	if refPath == "" {
		baseURL.Fragment = ""
		baseURL.RawFragment = ""
		return baseURL.String(), pointer, nil
	}

	if !isURL(refPath) && filepath.IsAbs(refPath) {
		location, err = Normalize(refPath)
		return location, pointer, err
	}

	refURL, err := url.Parse(refPath)
	if err != nil {
		return "", "", fmt.Errorf("parsing reference %s: %w", ref, err)
	}
	target := baseURL.ResolveReference(refURL)
	target.Fragment = ""
	target.RawFragment = ""
	return target.String(), pointer, nil
}

// isURL reports whether location carries a URL scheme. Single letter schemes
// are treated as Windows drive letters.
func isURL(location string) bool {
	scheme, _, ok := strings.Cut(location, "://")
	if !ok || len(scheme) < 2 {
		return strings.HasPrefix(location, "file:")
	}
	for _, r := range scheme {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}
