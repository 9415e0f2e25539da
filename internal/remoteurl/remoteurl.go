// Package remoteurl turns git remote URLs into forge-comparable values.
//
// Remotes arrive in three grammars: scp-like ("git@host:group/project.git"),
// explicit ssh ("ssh://git@host/group/project.git") and http(s). Every
// function here first tries a scheme-qualified parse and falls back to the
// scp rewrite, so the same remote always yields the same results.
package remoteurl

import (
	"fmt"
	"net/url"
	"strings"

	laberrors "lab/internal/errors"
)

const (
	// InstanceDetectionMessage is reported when no forge host can be derived.
	InstanceDetectionMessage = "Failed to detect GitLab instance url"

	schemeSSH   = "ssh"
	schemeHTTPS = "https"
)

// Instance is the base address of a forge API.
type Instance struct {
	Scheme   string
	Hostname string
}

// URL renders the instance as "scheme://hostname".
func (i Instance) URL() string {
	return i.Scheme + "://" + i.Hostname
}

func (i Instance) String() string {
	return i.URL()
}

// TokenPage is where users create personal access tokens on this instance.
func (i Instance) TokenPage() string {
	return i.URL() + "/profile/personal_access_tokens"
}

// Normalize returns raw in scheme-qualified form. Input that already carries
// a scheme is returned unchanged. scp-like input has its first ':' replaced
// by '/' and gets an ssh:// prefix. Normalize is idempotent.
func Normalize(raw string) (string, error) {
	const op laberrors.Op = "remoteurl.Normalize"

	if hasScheme(raw) {
		return raw, nil
	}
	if raw == "" || strings.HasPrefix(raw, "@") || strings.HasPrefix(raw, ":") {
		return "", laberrors.E(op, laberrors.KindURLFormat, "Invalid url "+raw)
	}
	return scpToSSH(raw), nil
}

// InstanceURL derives the forge instance serving the repository at raw.
// http and https schemes are preserved; every other transport, including
// scp-like syntax, maps to https on the same host.
func InstanceURL(raw string) (Instance, error) {
	const op laberrors.Op = "remoteurl.InstanceURL"

	if parts, ok := split(raw); ok {
		if parts.path != "" && parts.host != "" {
			if strings.Contains(parts.scheme, "http") {
				return Instance{Scheme: parts.scheme, Hostname: parts.host}, nil
			}
			// Forges do not reliably redirect http to https for API calls.
			return Instance{Scheme: schemeHTTPS, Hostname: parts.host}, nil
		}
		return Instance{}, laberrors.E(op, laberrors.KindURLFormat, InstanceDetectionMessage)
	}

	if strings.Contains(raw, "@") && strings.Contains(raw, ":") {
		if parts, ok := split(scpToSSH(raw)); ok && parts.host != "" {
			return Instance{Scheme: schemeHTTPS, Hostname: parts.host}, nil
		}
	}

	return Instance{}, laberrors.E(op, laberrors.KindURLFormat, InstanceDetectionMessage)
}

// ProjectIdentifier returns the query-escaped namespaced project path for
// the repository at raw, e.g. "KDE%2Fkaidan" for
// "git@invent.kde.org:KDE/kaidan.git".
func ProjectIdentifier(raw string) (string, error) {
	const op laberrors.Op = "remoteurl.ProjectIdentifier"

	normalized, err := Normalize(raw)
	if err != nil {
		return "", err
	}
	normalized = strings.TrimRight(normalized, "/")
	normalized = strings.TrimSuffix(normalized, ".git")

	parts, _ := split(normalized)
	path := strings.TrimPrefix(parts.path, "/")
	if path == "" {
		return "", laberrors.E(op, laberrors.KindURLFormat, fmt.Sprintf("Invalid url %s: no project path", raw))
	}
	return url.QueryEscape(path), nil
}

// ProjectPath is ProjectIdentifier without the escaping.
func ProjectPath(raw string) (string, error) {
	id, err := ProjectIdentifier(raw)
	if err != nil {
		return "", err
	}
	return url.QueryUnescape(id)
}

// SSHURLFromHTTP rewrites an http(s) remote to its ssh://git@ equivalent.
// Other URLs are returned as they are.
func SSHURLFromHTTP(raw string) string {
	for _, prefix := range []string{"https://", "http://"} {
		if rest, ok := strings.CutPrefix(raw, prefix); ok {
			return "ssh://git@" + rest
		}
	}
	return raw
}

// Equal reports whether a and b name the same remote once normalized.
func Equal(a, b string) bool {
	na, errA := Normalize(a)
	nb, errB := Normalize(b)
	if errA != nil || errB != nil {
		return false
	}
	return strings.TrimSuffix(strings.TrimRight(na, "/"), ".git") ==
		strings.TrimSuffix(strings.TrimRight(nb, "/"), ".git")
}

func hasScheme(raw string) bool {
	return scheme(raw) != ""
}

func scpToSSH(raw string) string {
	return schemeSSH + "://" + strings.Replace(raw, ":", "/", 1)
}

// scheme returns the lowercased scheme prefix of raw, or "" if raw has none.
// Unlike url.Parse it does not reject the rest of the URL, so remotes with
// stray '%' or a colon in the first segment still count as qualified.
func scheme(raw string) string {
	i := strings.IndexByte(raw, ':')
	if i <= 0 {
		return ""
	}
	for j, c := range raw[:i] {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case j > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return ""
		}
	}
	return strings.ToLower(raw[:i])
}

type urlParts struct {
	scheme string
	host   string
	// path is kept in its original escaped form.
	path string
}

// split breaks a scheme-qualified URL into its parts. It reports false when
// raw has no scheme. URLs net/url refuses are split by hand.
func split(raw string) (urlParts, bool) {
	s := scheme(raw)
	if s == "" {
		return urlParts{}, false
	}
	if u, err := url.Parse(raw); err == nil {
		path := u.EscapedPath()
		if path == "" {
			path = u.Opaque
		}
		return urlParts{scheme: s, host: strings.ToLower(u.Hostname()), path: path}, true
	}

	rest := raw[len(s)+1:]
	authority, hasAuthority := strings.CutPrefix(rest, "//")
	if !hasAuthority {
		return urlParts{scheme: s, path: rest}, true
	}
	path := ""
	if i := strings.IndexByte(authority, '/'); i >= 0 {
		authority, path = authority[:i], authority[i:]
	}
	if i := strings.LastIndexByte(authority, '@'); i >= 0 {
		authority = authority[i+1:]
	}
	if i := strings.LastIndexByte(authority, ':'); i >= 0 && !strings.HasSuffix(authority, "]") {
		authority = authority[:i]
	}
	host := strings.Trim(authority, "[]")
	return urlParts{scheme: s, host: strings.ToLower(host), path: path}, true
}
