package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/economy"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/model"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/profile"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/repository"
)

// ProfileNamespace derives profile ids from names (UUIDv5).
var ProfileNamespace = uuid.Must(uuid.FromString("0d6f5c4e-8f0b-5b7a-9a51-3c2f7e1d4b60"))

// MaxNameLen bounds profile names in runes.
const MaxNameLen = 64

// ProfileID returns the stable id of a profile name.
func ProfileID(name string) uuid.UUID {
	return uuid.NewV5(ProfileNamespace, strings.ToLower(strings.TrimSpace(name)))
}

// Session is the result of opening a profile.
type Session struct {
	ProfileID uuid.UUID
	Token     string
	ExpiresAt time.Time
	Profile   model.Profile
	Effects   []model.Effect
}

// Opener starts a profile session. *WorkspaceServiceImpl implements it.
type Opener interface {
	Open(ctx context.Context, pid uuid.UUID, name string) (model.Profile, []model.Effect, error)
}

// SessionService opens profiles and verifies session tokens. It is not an
// account system: a name is all it takes.
type SessionService interface {
	// OpenSession loads the profile of name, recomputes the login streak and issues a bearer token.
	OpenSession(ctx context.Context, name string) (Session, error)
	// Verify checks a bearer token and returns its profile id.
	Verify(token string) (uuid.UUID, error)
}

type SessionServiceImpl struct {
	ws      Opener
	signKey []byte
	ttl     time.Duration
	now     func() time.Time
}

// NewSessionService constructs SessionService.
func NewSessionService(ws Opener, signKey []byte, ttl time.Duration) *SessionServiceImpl {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionServiceImpl{ws: ws, signKey: signKey, ttl: ttl, now: time.Now}
}

// OpenSession validates name, opens the workspace and signs a token.
func (s *SessionServiceImpl) OpenSession(ctx context.Context, name string) (Session, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLen {
		return Session{}, fmt.Errorf("validation: profile name must be 1..%d characters: %w", MaxNameLen, errs.ErrInvalid)
	}
	pid := ProfileID(name)
	p, effects, err := s.ws.Open(ctx, pid, name)
	if err != nil && !errors.Is(err, errs.ErrPersistence) {
		return Session{}, err
	}
	tok, exp, terr := s.issue(pid)
	if terr != nil {
		return Session{}, terr
	}
	return Session{ProfileID: pid, Token: tok, ExpiresAt: exp, Profile: p, Effects: effects}, err
}

func (s *SessionServiceImpl) issue(pid uuid.UUID) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   pid.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
	return signed, exp, err
}

// Verify parses an HS256 token and returns the subject as profile id.
func (s *SessionServiceImpl) Verify(token string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) { return s.signKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30*time.Second),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", errs.ErrUnauthorized, err)
	}
	id, err := uuid.FromString(claims.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("bad subject: %w", errs.ErrUnauthorized)
	}
	return id, nil
}

func openSession(st *model.AppState, name string, now time.Time, loc *time.Location) (repository.Record, []model.Effect, error) {
	p := profile.RecordLogin(st.Profile, now, loc)
	if p.Name == "" {
		p.Name = name
	}
	var effects []model.Effect
	if p.Streak >= 7 {
		p, effects = economy.Unlock(p, economy.Streak7)
	}
	st.Profile = p
	return repository.RecProfile, effects, nil
}
