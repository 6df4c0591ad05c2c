package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/lphoto/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/lphoto/internal/common"
	"github.com/dmitrijs2005/lphoto/internal/dbx"
)

const cookieKeyPrefix = "cookie."

// ErrNoSession is returned by Describe when no access token is held.
var ErrNoSession = errors.New("no session")

// CookieStore holds the session cookies of the API client.
type CookieStore interface {
	Cookies() []*http.Cookie
	SetCookies(cookies []*http.Cookie)
	ClearCookies()
}

// SessionInfo is what the client can tell about the signed-in user from
// the access token. The token is not verified; only the server can do that.
type SessionInfo struct {
	Username  string
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token has expired at t.
func (i SessionInfo) Expired(t time.Time) bool {
	return !i.ExpiresAt.IsZero() && !t.Before(i.ExpiresAt)
}

// SessionService keeps the session cookies in the local database so a new
// run starts signed in. Credentials are never stored.
type SessionService interface {
	// Save replaces the stored cookies with the ones currently held.
	Save(ctx context.Context) error
	// Restore loads stored cookies into the store and returns how many.
	Restore(ctx context.Context) (int, error)
	// Clear forgets the session both in memory and on disk.
	Clear(ctx context.Context) error
	Describe() (*SessionInfo, error)
}

type sessionService struct {
	cookies CookieStore
	db      *sql.DB
}

// NewSessionService keeps the cookies of cookies in db.
func NewSessionService(cookies CookieStore, db *sql.DB) SessionService {
	return &sessionService{cookies: cookies, db: db}
}

func (s *sessionService) Save(ctx context.Context) error {
	held := s.cookies.Cookies()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if _, err := repo.DeletePrefix(ctx, cookieKeyPrefix); err != nil {
			return err
		}
		for _, c := range held {
			if err := repo.Set(ctx, cookieKeyPrefix+c.Name, []byte(c.Value)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *sessionService) Restore(ctx context.Context) (int, error) {
	stored, err := metadata.NewSQLiteRepository(s.db).List(ctx, cookieKeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("restore session: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for k, v := range stored {
		name := strings.TrimPrefix(k, cookieKeyPrefix)
		if name == "" || len(v) == 0 {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: name, Value: string(v), Path: "/"})
	}
	if len(cookies) > 0 {
		s.cookies.SetCookies(cookies)
	}
	return len(cookies), nil
}

func (s *sessionService) Clear(ctx context.Context) error {
	s.cookies.ClearCookies()
	if _, err := metadata.NewSQLiteRepository(s.db).DeletePrefix(ctx, cookieKeyPrefix); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *sessionService) Describe() (*SessionInfo, error) {
	var token string
	for _, c := range s.cookies.Cookies() {
		if c.Name == common.AccessTokenCookieName {
			token = c.Value
		}
	}
	if token == "" {
		return nil, ErrNoSession
	}
	return DescribeToken(token)
}

// DescribeToken decodes the claims of an access token without verifying
// its signature.
func DescribeToken(token string) (*SessionInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode access token: %w", err)
	}

	info := &SessionInfo{}
	if v, ok := claims["username"].(string); ok {
		info.Username = v
	} else if v, ok := claims["email"].(string); ok {
		info.Username = v
	}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}
