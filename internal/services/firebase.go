package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// InitFirebase builds the auth client used to verify staff ID tokens.
// There is no local account table; admin rights come from the "admin"
// custom claim on the Firebase user.
func InitFirebase(credentialsPath string) (*auth.Client, error) {
	app, err := firebase.NewApp(context.Background(), nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Auth(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to build firebase auth client: %w", err)
	}
	return client, nil
}
