// Package urlutil normalizes and dissects asset URLs, including the
// malformed ones a recon pipeline inevitably produces.
package urlutil

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Normalize canonicalizes an absolute http(s) URL: host lowercased,
// trailing slash stripped (except root), query parameters sorted by key,
// fragment dropped. Returns ok=false for anything that is not an
// absolute http or https URL with a host.
func Normalize(raw string) (string, bool) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", false
	}
	host := parsed.Hostname()
	if strings.TrimSpace(host) == "" {
		return "", false
	}
	parsed.Host = strings.ToLower(parsed.Host)

	if p := parsed.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
		parsed.Path = strings.TrimSuffix(p, "/")
	}

	if q := parsed.Query(); len(q) > 0 {
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			vals := q[k]
			sort.Strings(vals)
			for _, v := range vals {
				if b.Len() > 0 {
					b.WriteByte('&')
				}
				b.WriteString(url.QueryEscape(k))
				b.WriteByte('=')
				b.WriteString(url.QueryEscape(v))
			}
		}
		parsed.RawQuery = b.String()
	} else {
		parsed.RawQuery = ""
	}

	parsed.Fragment = ""
	return parsed.String(), true
}

// EnsureScheme prefixes https:// onto bare domains so "example.com/x"
// imports cleanly. Strings without a dot are returned untouched.
func EnsureScheme(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	if strings.Contains(trimmed, ".") {
		return "https://" + trimmed
	}
	return trimmed
}

// Host extracts the host from a URL. For unparseable or relative input
// it falls back to the third /-delimited token ("https://host/..." keeps
// its host even when the rest is garbage), or the whole string when that
// token is absent.
func Host(raw string) string {
	if parsed, err := url.Parse(raw); err == nil && parsed.Host != "" {
		return parsed.Hostname()
	}
	parts := strings.Split(raw, "/")
	if len(parts) >= 3 && parts[2] != "" {
		return parts[2]
	}
	return raw
}

// Path extracts the path component of a URL, with a manual fallback for
// malformed input. Always returns at least "/".
func Path(raw string) string {
	if parsed, err := url.Parse(raw); err == nil && parsed.Host != "" {
		if parsed.Path == "" {
			return "/"
		}
		return parsed.Path
	}

	stripped := strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if idx := strings.Index(stripped, "/"); idx >= 0 {
		pathAndQuery := stripped[idx:]
		if q := strings.Index(pathAndQuery, "?"); q >= 0 {
			return pathAndQuery[:q]
		}
		return pathAndQuery
	}
	return "/"
}

// Segments splits a URL's path into its non-empty segments. Query
// strings and fragments never contribute segments.
func Segments(raw string) []string {
	p := Path(raw)
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

var (
	absoluteURLRe = regexp.MustCompile(`https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`)
	bareDomainRe  = regexp.MustCompile(`\b(?:[a-zA-Z0-9][-a-zA-Z0-9]*\.)+[a-zA-Z]{2,}(?:/[^\s<>"{}|\\^` + "`" + `\[\]]*)?`)
)

// HarvestURLs pulls candidate endpoint URLs out of free text (burp
// exports, scope docs, pasted notes). Absolute URLs are taken as-is;
// bare domains get an inferred https:// prefix. Order is preserved and
// duplicates are dropped.
func HarvestURLs(content string) []string {
	var urls []string
	seen := make(map[string]bool)

	add := func(u string) {
		if !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}

	for _, m := range absoluteURLRe.FindAllString(content, -1) {
		add(strings.TrimSpace(m))
	}

	// Blank out absolute URLs so their hosts are not re-harvested as
	// bare domains with a different scheme.
	residue := absoluteURLRe.ReplaceAllStringFunc(content, func(m string) string {
		return strings.Repeat(" ", len(m))
	})

	for _, m := range bareDomainRe.FindAllString(residue, -1) {
		domain := strings.TrimSpace(m)
		if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
			continue
		}
		hasLetters := strings.IndexFunc(domain, func(r rune) bool {
			return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		}) >= 0
		if !hasLetters && strings.Count(domain, ".") < 3 {
			continue
		}
		add("https://" + domain)
	}

	return urls
}
