package usecase_test

import (
	"context"
	"testing"

	"github.com/qstina/relove-website/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers_Profile(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	u, err := w.users.UpdateProfile(ctx, buyer, usecase.ProfileInput{
		Name:     " Amy Tan ",
		Phone:    "012-1111111",
		Address:  "5 Jalan Bukit",
		City:     "Kuala Lumpur",
		Postcode: "50450",
		State:    "WP",
	})
	require.NoError(t, err)
	assert.Equal(t, "Amy Tan", u.Name)

	got, err := w.users.GetProfile(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, "50450", got.Postcode)

	//購入手続きの配送先に使われる
	w.list(t, seller, "lamp", "Lamp", "25.00")
	view := w.stage(t, buyer, "lamp")
	assert.Equal(t, "5 Jalan Bukit", view.Prefill.Address)
	assert.Equal(t, "Kuala Lumpur", view.Prefill.City)

	_, err = w.users.GetProfile(ctx, guest)
	assertKind(t, err, usecase.ErrLoginRequired)
}

func TestUsers_ListUsers_AdminOnly(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	users, err := w.users.ListUsers(ctx, admin, 0, 0)
	require.NoError(t, err)
	assert.Len(t, users, 5)

	_, err = w.users.ListUsers(ctx, seller, 0, 0)
	assertKind(t, err, usecase.ErrForbidden)
}
