package rest

import (
	"context"

	"github.com/dmitrijs2005/signmanager/internal/server/models"
	"github.com/dmitrijs2005/signmanager/internal/server/services"
)

type fakeUsers struct {
	regResp *models.User
	regErr  error

	loginResp *services.AccessToken
	loginErr  error

	profileResp *models.User
	profileErr  error

	gotEmail       string
	gotDisplayName string
	calls          int
}

func (f *fakeUsers) Register(_ context.Context, email, displayName, _ string) (*models.User, error) {
	f.calls++
	f.gotEmail, f.gotDisplayName = email, displayName
	return f.regResp, f.regErr
}

func (f *fakeUsers) Login(_ context.Context, email, _ string) (*services.AccessToken, error) {
	f.calls++
	f.gotEmail = email
	return f.loginResp, f.loginErr
}

func (f *fakeUsers) Profile(_ context.Context, email string) (*models.User, error) {
	f.calls++
	f.gotEmail = email
	return f.profileResp, f.profileErr
}
