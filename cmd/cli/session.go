package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/config"
)

var errNoSession = errors.New("no valid session (run: crafty login <name>)")

// savedSession is what login leaves in the config dir.
type savedSession struct {
	Name      string    `json:"name"`
	ProfileID string    `json:"profile_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type sessionStore struct{ dir string }

func (s sessionStore) path() string { return filepath.Join(s.dir, "session.json") }

func (s sessionStore) save(sess savedSession) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(), b, 0o600)
}

func (s sessionStore) load(now time.Time) (savedSession, error) {
	b, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return savedSession{}, errNoSession
	}
	if err != nil {
		return savedSession{}, err
	}
	var sess savedSession
	if err := json.Unmarshal(b, &sess); err != nil {
		return savedSession{}, fmt.Errorf("session file: %w", err)
	}
	if sess.Token == "" || now.After(sess.ExpiresAt) {
		return savedSession{}, errNoSession
	}
	return sess, nil
}

func (s sessionStore) clear() error {
	err := os.Remove(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ---- grpc dial ----

type bearerCreds struct {
	token  string
	secure bool
}

func (b bearerCreds) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.token}, nil
}
func (b bearerCreds) RequireTransportSecurity() bool { return b.secure }

func transportCreds(cfg config.CLI) (credentials.TransportCredentials, error) {
	switch {
	case cfg.Plaintext:
		return insecure.NewCredentials(), nil
	case cfg.Insecure:
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil
	case cfg.CACert == "":
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(cfg.CACert)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

// dialFunc opens a connection, attaching bearer to every call when set.
type dialFunc func(bearer string) (*grpc.ClientConn, error)

func networkDialer(cfg config.CLI, log *zap.Logger) dialFunc {
	return func(bearer string) (*grpc.ClientConn, error) {
		creds, err := transportCreds(cfg)
		if err != nil {
			return nil, err
		}
		opts := []grpc.DialOption{
			grpc.WithTransportCredentials(creds),
			grpc.WithUnaryInterceptor(logCalls(log)),
		}
		if bearer != "" {
			opts = append(opts, grpc.WithPerRPCCredentials(bearerCreds{token: bearer, secure: !cfg.Plaintext}))
		}
		return grpc.NewClient(cfg.Addr, opts...)
	}
}

func logCalls(log *zap.Logger) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		log.Debug("rpc", zap.String("method", method), zap.Duration("dur", time.Since(start)), zap.Error(err))
		return err
	}
}
