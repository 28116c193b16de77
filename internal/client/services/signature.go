package services

import (
	"context"
	"fmt"

	"github.com/minetrack/plodsync/internal/client/data"
	"github.com/minetrack/plodsync/internal/client/models"
	"github.com/minetrack/plodsync/internal/common"
	"github.com/minetrack/plodsync/internal/logging"
	"github.com/minetrack/plodsync/internal/netx"
)

// SignatureStore issues presigned URLs for signature image objects.
// Satisfied by sigstore.Store.
type SignatureStore interface {
	PresignedPutURL(ctx context.Context) (string, string, error)
	PresignedGetURL(ctx context.Context, key string) (string, error)
}

// Uploader PUTs a payload to a presigned URL.
type Uploader func(ctx context.Context, url string, file []byte) error

// SignatureService captures an operator's disclaimer signature image: the
// bytes go straight to object storage, only the storage key rides on the
// synchronized profile.
type SignatureService struct {
	sig    SignatureStore
	reg    *data.Registry
	auth   AuthService
	upload Uploader
	log    logging.Logger
}

func NewSignatureService(sig SignatureStore, reg *data.Registry, auth AuthService, log logging.Logger) *SignatureService {
	return &SignatureService{
		sig:    sig,
		reg:    reg,
		auth:   auth,
		upload: netx.UploadToPresignedURL,
		log:    log.With("module", "signatures"),
	}
}

// Attach uploads the signature image and stores its key on the caller's
// profile. Requires connectivity; the profile update itself syncs later.
func (s *SignatureService) Attach(ctx context.Context, token string, image []byte) (string, error) {
	claims, err := s.auth.Verify(token)
	if err != nil {
		return "", err
	}

	rec, ok := s.reg.Find(data.KindUsers, claims.UserID)
	if !ok || rec.Base().Deleted {
		return "", common.ErrUnauthorized
	}

	key, url, err := s.sig.PresignedPutURL(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to presign signature upload: %w", err)
	}
	if err := s.upload(ctx, url, image); err != nil {
		return "", fmt.Errorf("signature upload failed: %w", err)
	}

	updated := rec.Clone().(*models.UserProfile)
	updated.SignatureKey = key
	s.reg.Upsert(ctx, data.KindUsers, updated)

	s.log.Info(ctx, "signature captured", "user", claims.UserID, "key", key)
	return key, nil
}

// DownloadURL returns a presigned GET URL for a stored signature image.
func (s *SignatureService) DownloadURL(ctx context.Context, token, key string) (string, error) {
	if _, err := s.auth.Verify(token); err != nil {
		return "", err
	}
	return s.sig.PresignedGetURL(ctx, key)
}
