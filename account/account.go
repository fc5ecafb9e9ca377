// Package account provides the account/session collaborator: it resolves an
// authenticated caller and pod name into the pod's network address and
// signing key. Sessions are JWT tokens so that every operation receives its
// identity as an explicit argument instead of relying on ambient state.
package account

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrNotAuthenticated is returned when the session token is missing,
	// malformed or expired.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPodNotFound is returned when the named pod does not exist for the
	// authenticated account.
	ErrPodNotFound = errors.New("pod not found")

	// ErrPodAlreadyExists is returned when creating a pod under a name the
	// account already uses.
	ErrPodAlreadyExists = errors.New("pod already exists")
)

// Pod is a namespace owned by an account. Its address keys all feed and
// directory state; its signing key signs feed publishes.
type Pod struct {
	Name       string
	Address    Address
	SigningKey ed25519.PrivateKey
}

// Provider resolves a session token and pod name into pod identity. This is
// the only account surface the upload/download and sharing flows consume.
type Provider interface {
	Lookup(ctx context.Context, token, podName string) (*Pod, error)
}

// Claims are the session token claims: the registered set plus the user ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// Manager is an in-process Provider. It issues HS256 session tokens and
// keeps the account→pod registry in memory.
type Manager struct {
	secret []byte
	ttl    time.Duration

	mu   sync.RWMutex
	pods map[string]map[string]*Pod // user ID -> pod name -> pod
}

// NewManager returns a Manager signing sessions with secret. Tokens expire
// after ttl.
func NewManager(secret []byte, ttl time.Duration) *Manager {
	return &Manager{
		secret: secret,
		ttl:    ttl,
		pods:   make(map[string]map[string]*Pod),
	}
}

// NewUser registers a fresh account and returns its ID together with an
// initial session token.
func (m *Manager) NewUser() (string, string, error) {
	userID := uuid.NewString()

	m.mu.Lock()
	m.pods[userID] = make(map[string]*Pod)
	m.mu.Unlock()

	token, err := m.NewSession(userID)
	if err != nil {
		return "", "", err
	}
	return userID, token, nil
}

// NewSession issues a session token for an existing account.
func (m *Manager) NewSession(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

func (m *Manager) userID(token string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return "", ErrNotAuthenticated
	}
	return claims.UserID, nil
}

// CreatePod creates a pod for the authenticated account, generating its
// signing key and deriving its address.
func (m *Manager) CreatePod(ctx context.Context, token, name string) (*Pod, error) {
	userID, err := m.userID(token)
	if err != nil {
		return nil, err
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating pod key: %w", err)
	}

	pod := &Pod{Name: name, Address: NewAddress(pub), SigningKey: priv}

	m.mu.Lock()
	defer m.mu.Unlock()

	pods, ok := m.pods[userID]
	if !ok {
		return nil, ErrNotAuthenticated
	}
	if _, exists := pods[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrPodAlreadyExists, name)
	}
	pods[name] = pod
	return pod, nil
}

// Lookup implements Provider.
func (m *Manager) Lookup(ctx context.Context, token, podName string) (*Pod, error) {
	userID, err := m.userID(token)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	pods, ok := m.pods[userID]
	if !ok {
		return nil, ErrNotAuthenticated
	}
	pod, ok := pods[podName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPodNotFound, podName)
	}
	return pod, nil
}
