package config

import (
	"context"
	"encoding/base64"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

var FirebaseApp *firebase.App

// InitFirebase initializes the Firebase Admin SDK used for FCM pushes.
// Push delivery is optional; when no credentials are configured FirebaseApp
// stays nil and callers skip the push.
func InitFirebase() {
	ctx := context.Background()

	firebaseConfig := &firebase.Config{
		ProjectID: os.Getenv("FIREBASE_PROJECT_ID"),
	}

	// Check for base64 encoded credentials first
	if base64Creds := os.Getenv("FIREBASE_CREDENTIALS_BASE64"); base64Creds != "" {
		log.Printf("Using Firebase credentials from base64 environment variable")
		decoded, err := base64.StdEncoding.DecodeString(base64Creds)
		if err != nil {
			log.Printf("Warning: error decoding base64 Firebase credentials: %v", err)
			return
		}

		app, err := firebase.NewApp(ctx, firebaseConfig, option.WithCredentialsJSON(decoded))
		if err != nil {
			log.Printf("Warning: error initializing firebase app: %v", err)
			return
		}
		FirebaseApp = app
		return
	}

	// Fallback to file-based credentials
	credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	if credFile == "" {
		credFile = os.Getenv("FIREBASE_CREDENTIALS_FILE")
	}
	if credFile == "" {
		log.Println("Firebase credentials not configured, push notifications disabled")
		return
	}
	if _, err := os.Stat(credFile); err != nil {
		log.Printf("Warning: Firebase credentials file %s not readable: %v", credFile, err)
		return
	}

	log.Printf("Using Firebase credentials file: %s", credFile)
	app, err := firebase.NewApp(ctx, firebaseConfig, option.WithCredentialsFile(credFile))
	if err != nil {
		log.Printf("Warning: error initializing firebase app: %v", err)
		return
	}
	FirebaseApp = app
}
