package logstream

import (
	"io"
	"net/url"
	"strings"
)

const (
	maskedStr = "****************"
	// minSecretLen avoids masking fragments short enough to hit ordinary text
	minSecretLen = 4
)

// credentialParams are the query parameters libsql DSNs use for tokens
var credentialParams = []string{"authToken", "auth_token", "jwt"}

// masker wraps a log writer and hides credentials before they are written
type masker struct {
	w io.Writer
	r *strings.Replacer
}

// NewMasker returns a writer that replaces each secret with a mask before
// writing to w. Secrets shorter than four bytes are ignored. When nothing
// is left to mask w is returned as is.
func NewMasker(w io.Writer, secrets ...string) io.Writer {
	var oldnew []string
	for _, secret := range secrets {
		secret = strings.TrimSpace(secret)
		if len(secret) < minSecretLen {
			continue
		}
		oldnew = append(oldnew, secret, maskedStr)
	}
	if len(oldnew) == 0 {
		return w
	}
	return &masker{
		w: w,
		r: strings.NewReplacer(oldnew...),
	}
}

// Write masks p and writes it to the base writer.
func (m *masker) Write(p []byte) (n int, err error) {
	_, err = m.w.Write([]byte(m.r.Replace(string(p))))
	return len(p), err
}

// DSNSecrets returns the credentials carried inside a URL DSN: the userinfo
// password and any token query parameters. File paths carry none.
func DSNSecrets(dsn string) []string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil
	}
	var secrets []string
	if pass, ok := u.User.Password(); ok {
		secrets = append(secrets, pass)
	}
	q := u.Query()
	for _, param := range credentialParams {
		if v := q.Get(param); v != "" {
			secrets = append(secrets, v)
		}
	}
	return secrets
}

// RedactDSN returns dsn with its credentials masked, suitable for logging.
func RedactDSN(dsn string) string {
	secrets := DSNSecrets(dsn)
	if len(secrets) == 0 {
		return dsn
	}
	var b strings.Builder
	_, _ = NewMasker(&b, secrets...).Write([]byte(dsn))
	return b.String()
}
