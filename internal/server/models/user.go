// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an identity record. FolderIDs and NoteIDs are the owner reference
// sets: ordered, duplicate-free, and only ever changed through the ownership
// ledger.
type User struct {
	ID           string    `json:"id"`
	UserName     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FolderIDs    []string  `json:"-"`
	NoteIDs      []string  `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the part of a user that is safe to return to clients.
type PublicUser struct {
	ID       string `json:"id"`
	UserName string `json:"username"`
	Email    string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, UserName: u.UserName, Email: u.Email}
}

// CredentialsUpdate carries optional profile changes. Nil or blank fields are
// left untouched.
type CredentialsUpdate struct {
	UserName *string
	Password *string
}
