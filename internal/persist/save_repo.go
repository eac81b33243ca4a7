package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/mossvale/mossvale/internal/sim"
)

// SaveInfo is one row of the save listing.
type SaveInfo struct {
	Name      string
	Tick      int64
	Digest    string
	UpdatedAt time.Time
}

// SaveRepo stores whole-world saves as zstd-compressed JSON blobs keyed by
// name. Writing an existing name overwrites its slot, so autosaving under a
// fixed name keeps exactly one rolling copy.
type SaveRepo struct {
	db  *DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func NewSaveRepo(db *DB) (*SaveRepo, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &SaveRepo{db: db, enc: enc, dec: dec}, nil
}

// Save upserts one named save slot.
func (r *SaveRepo) Save(ctx context.Context, name string, save *sim.SaveStateV1) error {
	blob, digest, err := r.encodeState(save)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO saves (name, tick, digest, state)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name) DO UPDATE
		 SET tick = EXCLUDED.tick, digest = EXCLUDED.digest,
		     state = EXCLUDED.state, updated_at = NOW()`,
		name, save.Tick, digest, blob,
	)
	if err != nil {
		return fmt.Errorf("write save %q: %w", name, err)
	}
	r.db.log.Debug("save written",
		zap.String("name", name),
		zap.Int64("tick", save.Tick),
		zap.Int("bytes", len(blob)))
	return nil
}

// Load returns the named save, or nil when no such slot exists.
func (r *SaveRepo) Load(ctx context.Context, name string) (*sim.SaveStateV1, error) {
	var blob []byte
	err := r.db.Pool.QueryRow(ctx,
		`SELECT state FROM saves WHERE name = $1`, name,
	).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read save %q: %w", name, err)
	}
	return r.decodeState(blob)
}

// List returns every save slot, newest first.
func (r *SaveRepo) List(ctx context.Context) ([]SaveInfo, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT name, tick, digest, updated_at FROM saves ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SaveInfo
	for rows.Next() {
		var s SaveInfo
		if err := rows.Scan(&s.Name, &s.Tick, &s.Digest, &s.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// Delete removes a save slot. Deleting a missing name is not an error.
func (r *SaveRepo) Delete(ctx context.Context, name string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM saves WHERE name = $1`, name)
	return err
}

// encodeState marshals and compresses a save. The digest covers the
// uncompressed JSON and matches sim.DigestOf for the same state, so a loaded
// save can be checked against what the running world reports.
func (r *SaveRepo) encodeState(save *sim.SaveStateV1) ([]byte, string, error) {
	raw, err := json.Marshal(save)
	if err != nil {
		return nil, "", fmt.Errorf("encode save: %w", err)
	}
	return r.enc.EncodeAll(raw, nil), sim.DigestOf(save), nil
}

func (r *SaveRepo) decodeState(blob []byte) (*sim.SaveStateV1, error) {
	raw, err := r.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress save: %w", err)
	}
	var save sim.SaveStateV1
	if err := json.Unmarshal(raw, &save); err != nil {
		return nil, fmt.Errorf("decode save: %w", err)
	}
	return &save, nil
}
