package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/madhava-poojari/educonnect-api/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// GoogleIdentity is what a verified Google sign-in tells us about the user.
type GoogleIdentity struct {
	Email   string
	Name    string
	Picture string
}

// GoogleAuthenticator turns an authorization code into a verified identity.
type GoogleAuthenticator interface {
	Exchange(ctx context.Context, code string) (*GoogleIdentity, error)
}

type googleOAuth struct {
	oauth    *oauth2.Config
	clientID string
}

// NewGoogleAuthenticator returns nil when Google sign-in is not configured.
func NewGoogleAuthenticator(cfg *config.Config) GoogleAuthenticator {
	if !cfg.GoogleEnabled() {
		return nil
	}
	return &googleOAuth{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		clientID: cfg.GoogleClientID,
	}
}

func (g *googleOAuth) Exchange(ctx context.Context, code string) (*GoogleIdentity, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("id_token not present in token response")
	}
	// audience must be our client id
	payload, err := idtoken.Validate(ctx, rawIDToken, g.clientID)
	if err != nil {
		return nil, fmt.Errorf("validate id token: %w", err)
	}
	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, errors.New("email not present in token")
	}
	name, _ := payload.Claims["name"].(string)
	if name == "" {
		given, _ := payload.Claims["given_name"].(string)
		family, _ := payload.Claims["family_name"].(string)
		name = given
		if family != "" {
			name += " " + family
		}
	}
	picture, _ := payload.Claims["picture"].(string)
	return &GoogleIdentity{Email: email, Name: name, Picture: picture}, nil
}
