package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/minetrack/plodsync/internal/client/data"
	"github.com/minetrack/plodsync/internal/client/models"
	"github.com/minetrack/plodsync/internal/client/syncer"
	"github.com/minetrack/plodsync/internal/common"
	"github.com/minetrack/plodsync/internal/logging"
)

// DataService is the UI-facing facade over the registry and the syncer.
// Reads return active (non-tombstoned) typed slices; catalog mutations are
// admin gated; logging a session is open to any authenticated operator.
type DataService struct {
	reg  *data.Registry
	sync *syncer.Syncer
	auth AuthService
	log  logging.Logger
}

func NewDataService(reg *data.Registry, sync *syncer.Syncer, auth AuthService, log logging.Logger) *DataService {
	return &DataService{
		reg:  reg,
		sync: sync,
		auth: auth,
		log:  log.With("module", "dataservice"),
	}
}

func (s *DataService) Plods() []*models.Plod {
	return typed[*models.Plod](s.reg.Active(data.KindPlods))
}

func (s *DataService) Definitions() []*models.Definition {
	return typed[*models.Definition](s.reg.Active(data.KindDefinitions))
}

func (s *DataService) Users() []*models.UserProfile {
	return typed[*models.UserProfile](s.reg.Active(data.KindUsers))
}

func (s *DataService) Logs() []*models.LogEntry {
	return typed[*models.LogEntry](s.reg.Active(data.KindLogs))
}

func typed[T models.Record](recs []models.Record) []T {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.(T))
	}
	return out
}

// SavePlod creates or updates a catalog activity. Admin only.
func (s *DataService) SavePlod(ctx context.Context, token string, p *models.Plod) error {
	if _, err := s.auth.RequireAdmin(token); err != nil {
		return err
	}
	s.reg.Upsert(ctx, data.KindPlods, p)
	return nil
}

func (s *DataService) DeletePlod(ctx context.Context, token, id string) error {
	if _, err := s.auth.RequireAdmin(token); err != nil {
		return err
	}
	s.reg.SoftDelete(ctx, data.KindPlods, id)
	return nil
}

// SaveDefinition creates or updates a logged-data definition. Admin only.
func (s *DataService) SaveDefinition(ctx context.Context, token string, d *models.Definition) error {
	if _, err := s.auth.RequireAdmin(token); err != nil {
		return err
	}
	s.reg.Upsert(ctx, data.KindDefinitions, d)
	return nil
}

func (s *DataService) DeleteDefinition(ctx context.Context, token, id string) error {
	if _, err := s.auth.RequireAdmin(token); err != nil {
		return err
	}
	s.reg.SoftDelete(ctx, data.KindDefinitions, id)
	return nil
}

// SaveUser creates or updates a crew profile. Admin only.
func (s *DataService) SaveUser(ctx context.Context, token string, u *models.UserProfile) error {
	if _, err := s.auth.RequireAdmin(token); err != nil {
		return err
	}
	s.reg.Upsert(ctx, data.KindUsers, u)
	return nil
}

func (s *DataService) DeleteUser(ctx context.Context, token, id string) error {
	if _, err := s.auth.RequireAdmin(token); err != nil {
		return err
	}
	s.reg.SoftDelete(ctx, data.KindUsers, id)
	return nil
}

// RecordLog appends a completed session for the authenticated operator.
// The plod must exist and, when the profile restricts allowed plods, be on
// that list.
func (s *DataService) RecordLog(ctx context.Context, token, plodID string, start, end time.Time,
	items []models.LoggedDataItem, coworkers []string, signed bool) (*models.LogEntry, error) {

	claims, err := s.auth.Verify(token)
	if err != nil {
		return nil, err
	}

	userRec, ok := s.reg.Find(data.KindUsers, claims.UserID)
	if !ok || userRec.Base().Deleted {
		return nil, common.ErrUnauthorized
	}
	user := userRec.(*models.UserProfile)

	plodRec, ok := s.reg.Find(data.KindPlods, plodID)
	if !ok || plodRec.Base().Deleted {
		return nil, fmt.Errorf("plod %q: %w", plodID, common.ErrNotFound)
	}
	plod := plodRec.(*models.Plod)

	if len(user.AllowedPlods) > 0 && !slices.Contains(user.AllowedPlods, plodID) {
		return nil, fmt.Errorf("plod %q not allowed for %s: %w", plodID, user.ID, common.ErrUnauthorized)
	}

	entry := models.NewLogEntry(plod, user, start, end, items, coworkers, signed)
	s.reg.Upsert(ctx, data.KindLogs, entry)

	s.log.Info(ctx, "session logged",
		"plod", plod.Name, "user", user.Name, "shift", entry.Shift, "duration", entry.Duration)

	stored := s.reg.Items(data.KindLogs)
	return stored[len(stored)-1].(*models.LogEntry), nil
}

// Sync runs one synchronization cycle.
func (s *DataService) Sync(ctx context.Context) (*syncer.Result, error) {
	return s.sync.Sync(ctx)
}

func (s *DataService) IsSyncing() bool { return s.sync.IsSyncing() }
func (s *DataService) NeedsSync() bool { return s.sync.NeedsSync() }

func (s *DataService) LastSyncAt(ctx context.Context) (time.Time, bool) {
	return s.sync.LastSyncAt(ctx)
}

// StartAutoSync runs background sync cycles until ctx is cancelled.
func (s *DataService) StartAutoSync(ctx context.Context, interval time.Duration) {
	s.sync.StartAutoSync(ctx, interval)
}
