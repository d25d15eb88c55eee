// Package auth resolves the agent session the ticket view runs under.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/matheus3301/wppdesk/internal/helpdesk"
	"github.com/matheus3301/wppdesk/internal/store"
	"go.uber.org/zap"
)

// ErrNoToken is returned when neither the environment nor the profile holds a token.
var ErrNoToken = errors.New("no auth token: set DESK_TOKEN or run deskctl login --token")

// ErrExpired is returned when the backend rejects the token.
var ErrExpired = errors.New("session expired: run deskctl login --token")

// Refresher exchanges a token for a fresh session.
type Refresher interface {
	SetToken(token string)
	RefreshSession(ctx context.Context) (*helpdesk.Session, error)
}

// SettingsStore persists session material per profile.
type SettingsStore interface {
	SetSetting(key, value string) error
	Setting(key string) (string, error)
	SetCompanyID(id int64) error
	CompanyID() (int64, error)
}

// Session is the logged-in agent and its tenant.
type Session struct {
	Token  string
	User   helpdesk.User
	Tenant int64
	// Cached is set when the backend could not be reached and the last
	// persisted session is used instead.
	Cached bool
}

// Bootstrap resolves the session. envToken, when set, takes precedence over
// the stored token. The refreshed token, user and tenant are persisted.
func Bootstrap(ctx context.Context, r Refresher, st SettingsStore, envToken string, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	token := envToken
	if token == "" {
		stored, err := st.Setting(store.KeyToken)
		if err != nil {
			return nil, fmt.Errorf("read stored token: %w", err)
		}
		token = stored
	}
	if token == "" {
		return nil, ErrNoToken
	}

	r.SetToken(token)
	fresh, err := r.RefreshSession(ctx)
	if err != nil {
		if helpdesk.IsUnauthorized(err) {
			return nil, ErrExpired
		}
		cached, cerr := loadCached(st, token)
		if cerr != nil || cached == nil {
			return nil, fmt.Errorf("refresh session: %w", err)
		}
		logger.Warn("backend unreachable, using cached session", zap.Error(err))
		return cached, nil
	}

	s := &Session{Token: fresh.Token, User: fresh.User, Tenant: fresh.User.CompanyID}
	if s.Token == "" {
		s.Token = token
	}
	if s.Tenant == 0 {
		if s.Tenant, err = st.CompanyID(); err != nil {
			return nil, fmt.Errorf("read stored tenant: %w", err)
		}
	}
	if err := Save(st, s); err != nil {
		return nil, err
	}
	logger.Info("session refreshed",
		zap.Int64("user_id", s.User.ID),
		zap.String("profile", s.User.Profile),
		zap.Int64("tenant", s.Tenant),
	)
	return s, nil
}

// Save persists the session.
func Save(st SettingsStore, s *Session) error {
	if err := st.SetSetting(store.KeyToken, s.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	user, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := st.SetSetting(store.KeyUser, string(user)); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	if s.Tenant != 0 {
		if err := st.SetCompanyID(s.Tenant); err != nil {
			return fmt.Errorf("save tenant: %w", err)
		}
	}
	return nil
}

func loadCached(st SettingsStore, token string) (*Session, error) {
	raw, err := st.Setting(store.KeyUser)
	if err != nil || raw == "" {
		return nil, err
	}
	var u helpdesk.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, err
	}
	tenant, err := st.CompanyID()
	if err != nil {
		return nil, err
	}
	if tenant == 0 {
		tenant = u.CompanyID
	}
	return &Session{Token: token, User: u, Tenant: tenant, Cached: true}, nil
}
