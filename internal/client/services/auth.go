// Package services contains the application services the CLI talks to:
// PIN authentication, collection access with admin gating, activity
// logging, signature capture, and sync control.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/minetrack/plodsync/internal/auth"
	"github.com/minetrack/plodsync/internal/client/data"
	"github.com/minetrack/plodsync/internal/client/models"
	"github.com/minetrack/plodsync/internal/common"
	"github.com/minetrack/plodsync/internal/logging"
)

// AuthService authenticates operators against the locally synced user
// profiles. Login works fully offline: the bcrypt PIN hash travels with
// the profile, so a device that synced once can authenticate its crew
// without connectivity.
type AuthService interface {
	Login(ctx context.Context, userID, pin string) (string, *models.UserProfile, error)
	Verify(token string) (*auth.Claims, error)
	RequireAdmin(token string) (*auth.Claims, error)
	SetPIN(ctx context.Context, adminToken, userID, pin string) error
}

type authService struct {
	reg      *data.Registry
	secret   []byte
	validity time.Duration
	log      logging.Logger
}

func NewAuthService(reg *data.Registry, secret []byte, validity time.Duration, log logging.Logger) AuthService {
	return &authService{
		reg:      reg,
		secret:   secret,
		validity: validity,
		log:      log.With("module", "auth"),
	}
}

// findUser matches either the profile's entity id or its external userId.
func (a *authService) findUser(userID string) (*models.UserProfile, bool) {
	for _, rec := range a.reg.Active(data.KindUsers) {
		u := rec.(*models.UserProfile)
		if u.ID == userID || (u.UserID != "" && u.UserID == userID) {
			return u, true
		}
	}
	return nil, false
}

// Login verifies the PIN and issues a session token. Unknown user and
// wrong PIN are indistinguishable to the caller.
func (a *authService) Login(ctx context.Context, userID, pin string) (string, *models.UserProfile, error) {
	u, ok := a.findUser(userID)
	if !ok {
		return "", nil, common.ErrUnauthorized
	}
	if err := auth.VerifyPIN(u.PINHash, pin); err != nil {
		a.log.Warn(ctx, "rejected login attempt", "user", userID)
		return "", nil, common.ErrUnauthorized
	}

	token, err := auth.GenerateToken(u.ID, string(u.SystemRole), a.secret, a.validity)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	a.log.Info(ctx, "user logged in", "user", u.ID, "role", u.SystemRole)
	return token, u, nil
}

func (a *authService) Verify(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, a.secret)
}

// RequireAdmin verifies the token and rejects non-admin sessions.
func (a *authService) RequireAdmin(token string) (*auth.Claims, error) {
	claims, err := a.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.Role != string(models.RoleAdmin) {
		return nil, common.ErrNotAdmin
	}
	return claims, nil
}

// SetPIN hashes and stores a new PIN on a user profile. Admin only; the
// change syncs like any other profile mutation.
func (a *authService) SetPIN(ctx context.Context, adminToken, userID, pin string) error {
	if _, err := a.RequireAdmin(adminToken); err != nil {
		return err
	}
	u, ok := a.findUser(userID)
	if !ok {
		return common.ErrNotFound
	}
	hash, err := auth.HashPIN(pin)
	if err != nil {
		return err
	}

	updated := u.Clone().(*models.UserProfile)
	updated.PINHash = hash
	a.reg.Upsert(ctx, data.KindUsers, updated)
	return nil
}
