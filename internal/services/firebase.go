package services

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// InitFirebase initializes the Firebase Admin SDK and returns the auth and
// messaging clients. Auth verifies mobile-client ID tokens; messaging
// delivers lifecycle push notifications.
func InitFirebase(credPath string) (*auth.Client, *messaging.Client, error) {
	ctx := context.Background()

	opt := option.WithCredentialsFile(credPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, nil, err
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, nil, err
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, nil, err
	}

	return authClient, messagingClient, nil
}
