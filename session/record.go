package session

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/go-job-portal/storage"
	"github.com/jrsteele09/go-job-portal/users"
	"github.com/rs/zerolog"
)

// RecordKey is the storage key of the persisted session record
const RecordKey = "auth-storage"

// PersistedRecord is what survives a restart besides the tokens. It never
// carries tokens; those live under their own keys in the token store.
type PersistedRecord struct {
	User            *users.UserProfile `json:"user"`
	IsAuthenticated bool               `json:"isAuthenticated"`
}

type recordStore struct {
	durable storage.Storage
	logger  zerolog.Logger
}

func (r recordStore) save(ctx context.Context, rec PersistedRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		r.logger.Err(err).Msg("Failed to encode session record")
		return
	}
	if err := r.durable.Set(ctx, RecordKey, string(data)); err != nil {
		r.logger.Warn().Err(err).Msg("Session record not persisted")
	}
}

func (r recordStore) load(ctx context.Context) (PersistedRecord, bool) {
	raw, ok, err := r.durable.Get(ctx, RecordKey)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Session record unavailable")
		return PersistedRecord{}, false
	}
	if !ok {
		return PersistedRecord{}, false
	}
	var rec PersistedRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		r.logger.Warn().Err(err).Msg("Discarding unreadable session record")
		return PersistedRecord{}, false
	}
	return rec, true
}

func (r recordStore) clear(ctx context.Context) {
	if err := r.durable.Remove(ctx, RecordKey); err != nil {
		r.logger.Warn().Err(err).Msg("Session record not removed")
	}
}
