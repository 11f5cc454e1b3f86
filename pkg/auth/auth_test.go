package auth_test

import (
	"context"
	"testing"

	"github.com/Astemirdum/court-booking/pkg/auth"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    auth.Role
		wantErr bool
	}{
		{in: "admin", want: auth.RoleAdmin},
		{in: " Admin ", want: auth.RoleAdmin},
		{in: "user", want: auth.RoleUser},
		{in: "rol", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := auth.ParseRole(tt.in)
			if tt.wantErr {
				require.True(t, errors.Is(err, auth.ErrUnknownRole))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCallerContext(t *testing.T) {
	t.Parallel()
	_, err := auth.GetCaller(context.Background())
	require.ErrorIs(t, err, auth.ErrNoCaller)

	ctx := auth.SetAuthContext(context.Background(), "u-1", auth.RoleUser)
	caller, err := auth.GetCaller(ctx)
	require.NoError(t, err)
	require.Equal(t, auth.Caller{UserID: "u-1", Role: auth.RoleUser}, caller)
	require.False(t, caller.IsAdmin())
	require.True(t, caller.Owns("u-1"))
	require.False(t, caller.Owns("u-2"))
}
