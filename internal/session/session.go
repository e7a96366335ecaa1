// Package session loads a signed and encrypted cookie session for every
// request going through the pipeline.
package session

import (
	"crypto/sha256"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/hkdf"

	"gitlab.com/gitlab-org/static-pipeline/internal/logging"
	"gitlab.com/gitlab-org/static-pipeline/internal/pipeline"
)

const createdAtKey = "created_at"

var errGenerateKeys = errors.New("could not generate session keys")

// Store reads and writes the sessions of one cookie name.
type Store struct {
	name  string
	store sessions.Store
}

// NewStore derives the cookie hash and encryption keys from secret, so every
// instance sharing the secret can read the sessions of the others.
func NewStore(secret, name string) (*Store, error) {
	keys, err := generateKeys(secret, 2)
	if err != nil {
		return nil, err
	}

	return &Store{
		name:  name,
		store: sessions.NewCookieStore(keys[0], keys[1]),
	}, nil
}

// generateKeys derives count hkdf keys from a secret, ensuring the key is
// the same for the same secret used across multiple instances
func generateKeys(secret string, count int) ([][]byte, error) {
	keys := make([][]byte, count)
	hkdfReader := hkdf.New(sha256.New, []byte(secret), []byte{}, []byte("STATIC_PIPELINE_SESSION_KEY"))

	for i := 0; i < count; i++ {
		key := make([]byte, 32)
		if _, err := io.ReadFull(hkdfReader, key); err != nil {
			return nil, errGenerateKeys
		}

		keys[i] = key
	}

	return keys, nil
}

// Get returns the session of r. A missing or invalid cookie yields a new,
// empty session.
func (s *Store) Get(r *http.Request) *sessions.Session {
	session, err := s.store.Get(r, s.name)
	if err != nil {
		var cookieErr securecookie.Error
		if errors.As(err, &cookieErr) && cookieErr.IsDecode() {
			logging.LogRequest(r).WithError(err).Debug("session: discarding invalid cookie")
		} else {
			logging.LogRequest(r).WithError(err).Warn("session: could not read cookie")
		}

	}

	if session == nil {
		session = sessions.NewSession(s.store, s.name)
		session.IsNew = true
	}

	if session.Options == nil {
		session.Options = &sessions.Options{}
	}

	session.Options.Path = "/"
	session.Options.HttpOnly = true
	session.Options.Secure = r.TLS != nil
	session.Options.SameSite = http.SameSiteLaxMode

	return session
}

// NewStage returns a stage attaching the session of each request to its
// context with set. New sessions are saved right away, so the cookie is
// part of whatever response a later stage writes.
func NewStage[C any](s *Store, set func(C, *sessions.Session) C) pipeline.Stage[C] {
	if s == nil {
		return nil
	}

	return pipeline.StageFunc[C](func(r *http.Request, w *pipeline.Response, ctx C) pipeline.Outcome[C] {
		session := s.Get(r)

		if session.IsNew {
			session.Values[createdAtKey] = time.Now().Unix()

			if err := session.Save(r, w); err != nil {
				logging.LogRequest(r).WithError(err).Error("session: could not save session")
			}
		}

		return pipeline.Continue(r, w, set(ctx, session))
	})
}
