package cas_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/internal/adapters/cas"
	"go.trai.ch/mason/internal/core/domain"
)

func TestStore_PutAndLookup(t *testing.T) {
	store, err := cas.NewStore(t.TempDir())
	require.NoError(t, err)

	fp := domain.Fingerprint("00000000000000aa")
	result := domain.BuildResult{
		OutputPath: "/store/aa/hello",
		OutputHash: "f00d",
		CreatedAt:  time.Now().UTC(),
	}

	require.NoError(t, store.Put(fp, result))

	got, err := store.Lookup(fp)
	require.NoError(t, err)
	require.Equal(t, fp, got.Fingerprint)
	require.Equal(t, result.OutputHash, got.OutputHash)
}

func TestStore_Lookup_NotFound(t *testing.T) {
	store, err := cas.NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Lookup(domain.Fingerprint("00000000000000ff"))
	require.True(t, errors.Is(err, domain.ErrResultNotFound))
}

func TestStore_Put_IdempotentForSameContent(t *testing.T) {
	store, err := cas.NewStore(t.TempDir())
	require.NoError(t, err)

	fp := domain.Fingerprint("00000000000000ab")
	result := domain.BuildResult{OutputHash: "f00d"}

	require.NoError(t, store.Put(fp, result))
	require.NoError(t, store.Put(fp, result))
}

func TestStore_Put_Collision(t *testing.T) {
	store, err := cas.NewStore(t.TempDir())
	require.NoError(t, err)

	fp := domain.Fingerprint("00000000000000ac")
	require.NoError(t, store.Put(fp, domain.BuildResult{OutputHash: "f00d"}))

	err = store.Put(fp, domain.BuildResult{OutputHash: "beef"})
	require.True(t, errors.Is(err, domain.ErrFingerprintCollision))

	// The original entry must survive.
	got, lookupErr := store.Lookup(fp)
	require.NoError(t, lookupErr)
	require.Equal(t, "f00d", got.OutputHash)
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := cas.NewStore(dir)
	require.NoError(t, err)
	fp := domain.Fingerprint("00000000000000ad")
	require.NoError(t, store.Put(fp, domain.BuildResult{OutputHash: "f00d"}))

	reopened, err := cas.NewStore(dir)
	require.NoError(t, err)
	got, err := reopened.Lookup(fp)
	require.NoError(t, err)
	require.Equal(t, "f00d", got.OutputHash)
}

func TestStore_ConcurrentDistinctFingerprints(t *testing.T) {
	store, err := cas.NewStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fp := domain.Fingerprint(fmt.Sprintf("%016x", i))
			if err := store.Put(fp, domain.BuildResult{OutputHash: fmt.Sprintf("%x", i)}); err != nil {
				t.Error(err)
				return
			}
			if _, err := store.Lookup(fp); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()
}

func TestStore_EntryDirIsPureFunctionOfFingerprint(t *testing.T) {
	dir := t.TempDir()
	store, err := cas.NewStore(dir)
	require.NoError(t, err)

	a := store.EntryDir(domain.Fingerprint("abcdef0123456789"))
	b := store.EntryDir(domain.Fingerprint("abcdef0123456789"))
	require.Equal(t, a, b)
	require.Contains(t, a, "ab")
}
