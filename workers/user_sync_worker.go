package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"prophecy-badge-system/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// remoteUser matches the JSON the prophecy service's sync endpoint returns.
type remoteUser struct {
	ID                  string    `json:"id"`
	Username            string    `json:"username"`
	IsBot               bool      `json:"is_bot"`
	WebAuthnCredentials int       `json:"webauthn_credentials"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type userChangesResponse struct {
	Users []remoteUser `json:"users"`
}

// UserSyncWorker mirrors the prophecy service's user table into the local
// users snapshot. The engine needs the bot flags for rating statistics and
// the credential counts for the security badge.
type UserSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
	log          *zap.Logger
}

func NewUserSyncWorker(db *gorm.DB, baseURL, endpointPath, serviceToken string, log *zap.Logger) *UserSyncWorker {
	return &UserSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      baseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

func (w *UserSyncWorker) Start(ctx context.Context) {
	w.log.Info("user sync worker started")
	go w.run(ctx)
}

func (w *UserSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time.
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		w.log.Warn("initial user sync failed", zap.Error(err))
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.lastSyncTime()); err != nil {
				w.log.Error("user sync batch failed", zap.Error(err))
			}
		case <-ctx.Done():
			w.log.Info("user sync worker stopped")
			return
		}
	}
}

// lastSyncTime finds the most recent update we have mirrored locally.
func (w *UserSyncWorker) lastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM users").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches user changes since the cursor and upserts them locally.
func (w *UserSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid sync service URL %q: %w", w.baseURL, err)
	}
	endpoint := base.JoinPath(w.endpointPath)
	q := endpoint.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sync request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sync service returned %d: %s", resp.StatusCode, string(body))
	}

	var changes userChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&changes); err != nil {
		return fmt.Errorf("decode sync response: %w", err)
	}
	if len(changes.Users) == 0 {
		return nil
	}

	now := time.Now()
	synced := 0
	for _, remote := range changes.Users {
		local := models.User{
			ID:                  remote.ID,
			Username:            remote.Username,
			IsBot:               remote.IsBot,
			WebAuthnCredentials: remote.WebAuthnCredentials,
			CreatedAt:           remote.CreatedAt,
			UpdatedAt:           remote.UpdatedAt,
			LastSyncedAt:        &now,
		}
		err := w.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"username", "is_bot", "webauthn_credentials", "updated_at", "last_synced_at",
			}),
		}).Create(&local).Error
		if err != nil {
			w.log.Error("user upsert failed", zap.String("user_id", remote.ID), zap.Error(err))
			continue
		}
		synced++
	}

	w.log.Info("user sync batch done",
		zap.Int("received", len(changes.Users)),
		zap.Int("synced", synced),
	)
	return nil
}
