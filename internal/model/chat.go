// Package model defines data structures for the detection dashboard.
package model

// User is the identity issued by the external identity provider.
// It is read-only to this service.
type User struct {
	ID    string `json:"id"`
	Email string `json:"primary_email"`
}

// Chat is a named, ordered sequence of upload/verdict message pairs
// belonging to one user. IDs are assigned by the detection backend;
// this service never fabricates a chat id.
type Chat struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Messages []Message `json:"messages"`
}
