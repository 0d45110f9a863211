package kcommon

import (
	"context"
	crypto_rand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/klogging"
)

const defaultCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type SafeRand struct {
	mu         sync.Mutex
	seededRand *rand.Rand
}

var safeRand SafeRand

type OpGetRand func(*rand.Rand)

// GetRandom runs op against the process-wide source under its lock.
func GetRandom(ctx context.Context, op OpGetRand) {
	safeRand.mu.Lock()
	defer safeRand.mu.Unlock()
	if safeRand.seededRand == nil {
		safeRand.seededRand = rand.New(rand.NewSource(CryptoSeed(ctx)))
	}
	op(safeRand.seededRand)
}

// CryptoSeed reads 8 bytes from crypto/rand; falls back to the clock if that fails.
func CryptoSeed(ctx context.Context) int64 {
	buf := make([]byte, 8)
	if _, err := crypto_rand.Read(buf); err != nil {
		klogging.Warning(ctx).WithError(err).Log("CryptoRandSeedFailed", "")
		return time.Now().UnixNano()
	}
	return int64(binary.BigEndian.Uint64(buf))
}

// NewRand returns a private source. seed==0 asks for a crypto seed; the seed used is logged so a run can be replayed.
func NewRand(ctx context.Context, seed int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = CryptoSeed(ctx)
	}
	klogging.Debug(ctx).With("seed", strconv.FormatInt(seed, 10)).Log("RandSeeded", "")
	return rand.New(rand.NewSource(seed)), seed
}

func StringWithCharset(ctx context.Context, length int, charset string) string {
	b := make([]byte, length)
	GetRandom(ctx, func(r *rand.Rand) {
		for i := range b {
			b[i] = charset[r.Intn(len(charset))]
		}
	})
	return string(b)
}

func RandomString(ctx context.Context, length int) string {
	return StringWithCharset(ctx, length, defaultCharset)
}

// pseudo-random number in [0,n)
func RandomInt(ctx context.Context, max int) (ret int) {
	GetRandom(ctx, func(r *rand.Rand) {
		ret = r.Intn(max)
	})
	return
}

func NewTraceId(ctx context.Context, prefix string, size int) string {
	return prefix + RandomString(ctx, size)
}
