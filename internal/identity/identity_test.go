package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFromContextDefaultsToAnonymous(t *testing.T) {
	p := FromContext(context.Background())
	assert.False(t, p.IsAuthenticated())
	assert.Equal(t, Anonymous(), p)
}

func TestWithPrincipalRoundTrip(t *testing.T) {
	want := Principal{UserID: uuid.New(), Username: "ada", IsStaff: true, Method: MethodToken}
	ctx := WithPrincipal(context.Background(), want)

	got := FromContext(ctx)
	assert.Equal(t, want, got)
	assert.True(t, got.IsAuthenticated())
}
