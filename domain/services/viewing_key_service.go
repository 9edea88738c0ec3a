package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"prizepool/domain/entities"
	"prizepool/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// ViewingKeyPrefix marks keys issued by CreateViewingKey.
const ViewingKeyPrefix = "api_key_"

// viewingKeyService issues and checks viewing keys
type viewingKeyService struct {
	keyRepo    interfaces.ViewingKeyRepository
	windowRepo interfaces.LotteryWindowRepository
	configRepo interfaces.PoolConfigRepository
}

// NewViewingKeyService creates a new viewing key service
func NewViewingKeyService(
	keyRepo interfaces.ViewingKeyRepository,
	windowRepo interfaces.LotteryWindowRepository,
	configRepo interfaces.PoolConfigRepository,
) interfaces.ViewingKeyService {
	return &viewingKeyService{
		keyRepo:    keyRepo,
		windowRepo: windowRepo,
		configRepo: configRepo,
	}
}

// CreateViewingKey derives a fresh key for the caller from the pool seed,
// the call environment and caller-supplied entropy.
func (s *viewingKeyService) CreateViewingKey(ctx context.Context, env entities.CallEnv, entropy string) (string, error) {
	if _, err := loadConfig(ctx, s.configRepo); err != nil {
		return "", err
	}
	window, err := loadWindow(ctx, s.windowRepo)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write(window.Seed[:])
	var block [16]byte
	binary.BigEndian.PutUint64(block[:8], env.BlockHeight)
	binary.BigEndian.PutUint64(block[8:], env.BlockTime)
	h.Write(block[:])
	h.Write([]byte(env.Sender))
	h.Write([]byte(entropy))
	key := ViewingKeyPrefix + base64.StdEncoding.EncodeToString(h.Sum(nil))

	if err := s.store(ctx, env.Sender, key); err != nil {
		return "", err
	}
	return key, nil
}

// SetViewingKey stores a caller-chosen key.
func (s *viewingKeyService) SetViewingKey(ctx context.Context, env entities.CallEnv, key string) error {
	if _, err := loadConfig(ctx, s.configRepo); err != nil {
		return err
	}
	return s.store(ctx, env.Sender, key)
}

func (s *viewingKeyService) store(ctx context.Context, address, key string) error {
	hash := sha256.Sum256([]byte(key))
	if err := s.keyRepo.SetHash(ctx, address, hash[:]); err != nil {
		return fmt.Errorf("failed to store viewing key: %w", err)
	}
	log.WithField("address", address).Debug("Viewing key updated")
	return nil
}

// Authenticate compares key with the stored hash in constant time. Addresses
// without a key are compared against a zero hash so timing does not reveal them.
func (s *viewingKeyService) Authenticate(ctx context.Context, address, key string) (bool, error) {
	stored, err := s.keyRepo.GetHash(ctx, address)
	if err != nil {
		return false, fmt.Errorf("failed to load viewing key: %w", err)
	}
	expected := make([]byte, sha256.Size)
	if len(stored) == sha256.Size {
		copy(expected, stored)
	}
	given := sha256.Sum256([]byte(key))
	match := subtle.ConstantTimeCompare(expected, given[:]) == 1
	return match && stored != nil, nil
}
