package persist

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mossvale/mossvale/internal/config"
	"github.com/mossvale/mossvale/internal/content"
	"github.com/mossvale/mossvale/internal/sim"
)

// capturedState runs a small bootstrapped world for a while and captures it,
// so the codec tests chew on a realistic save rather than a hand-made stub.
func capturedState(t *testing.T) *sim.SaveStateV1 {
	t.Helper()
	cfg := config.Defaults()
	cfg.World.MaxX = 63
	cfg.World.MaxY = 63
	reg, err := content.Default()
	require.NoError(t, err)
	s, err := sim.New(cfg, reg)
	require.NoError(t, err)
	for i := 0; i < 40; i++ {
		s.Tick()
	}
	return s.Capture()
}

// codecRepo builds a repo for encode/decode tests; those paths never touch
// the pool.
func codecRepo(t *testing.T) *SaveRepo {
	t.Helper()
	repo, err := NewSaveRepo(nil)
	require.NoError(t, err)
	return repo
}

func TestSaveBlobRoundTrip(t *testing.T) {
	repo := codecRepo(t)

	save := capturedState(t)
	blob, digest, err := repo.encodeState(save)
	require.NoError(t, err)
	require.Equal(t, sim.DigestOf(save), digest)

	back, err := repo.decodeState(blob)
	require.NoError(t, err)
	require.Equal(t, save.Tick, back.Tick)
	require.Equal(t, digest, sim.DigestOf(back))
}

func TestStateBlobsCompress(t *testing.T) {
	repo := codecRepo(t)

	save := capturedState(t)
	raw, err := json.Marshal(save)
	require.NoError(t, err)

	blob, _, err := repo.encodeState(save)
	require.NoError(t, err)
	require.Less(t, len(blob), len(raw))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	repo := codecRepo(t)

	_, err := repo.decodeState([]byte("not a zstd frame"))
	require.Error(t, err)
}
