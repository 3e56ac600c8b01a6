package bootstrap

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/orderdesk/orderdesk/internal/repository"
)

type JWTSigningKeySource string

const (
	defaultJWTSigningKey    = "change-me"
	jwtSigningKeySettingKey = "auth_signing_key"
	jwtSigningKeyBytes      = 32

	JWTSigningKeySourceConfig    JWTSigningKeySource = "config"
	JWTSigningKeySourceSettings  JWTSigningKeySource = "settings"
	JWTSigningKeySourceGenerated JWTSigningKeySource = "generated"
)

// ResolveJWTSigningKey resolves the JWT signing key with priority:
// config/env > settings > generate-and-persist.
func ResolveJWTSigningKey(ctx context.Context, settings repository.SettingRepository, configuredKey string, now func() time.Time) (string, JWTSigningKeySource, error) {
	return resolveJWTSigningKey(ctx, settings, configuredKey, now, rand.Reader)
}

func resolveJWTSigningKey(ctx context.Context, settings repository.SettingRepository, configuredKey string, now func() time.Time, randReader io.Reader) (string, JWTSigningKeySource, error) {
	configured := strings.TrimSpace(configuredKey)
	if configured != "" && configured != defaultJWTSigningKey {
		return configured, JWTSigningKeySourceConfig, nil
	}
	if settings == nil {
		return "", "", fmt.Errorf("resolve jwt signing key: settings store is required when auth.signing_key uses default value; you can set ORDERDESK_AUTH_SIGNING_KEY")
	}
	if now == nil {
		now = time.Now
	}

	existing, err := readJWTSigningKey(ctx, settings)
	if err != nil {
		return "", "", fmt.Errorf("read jwt signing key from settings: %w", err)
	}
	if existing != "" {
		return existing, JWTSigningKeySourceSettings, nil
	}

	buf := make([]byte, jwtSigningKeyBytes)
	if _, err := io.ReadFull(randReader, buf); err != nil {
		return "", "", fmt.Errorf("generate jwt signing key: %w", err)
	}
	generated := hex.EncodeToString(buf)
	if err := settings.Upsert(ctx, &repository.Setting{Key: jwtSigningKeySettingKey, Value: generated, UpdatedAt: now().Unix()}); err != nil {
		return "", "", fmt.Errorf("persist jwt signing key to settings: %w", err)
	}
	return generated, JWTSigningKeySourceGenerated, nil
}

func readJWTSigningKey(ctx context.Context, settings repository.SettingRepository) (string, error) {
	s, err := settings.Get(ctx, jwtSigningKeySettingKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(s.Value), nil
}
