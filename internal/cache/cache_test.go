// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	addr := envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(addr, os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, Ping(ctx, client))
}

func TestConnectValkeyUnreachable(t *testing.T) {
	// Port 1 is reserved and never runs Valkey.
	client, err := ConnectValkey("127.0.0.1:1", "")
	assert.Error(t, err)
	assert.Nil(t, client)
}
