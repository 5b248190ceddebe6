// Package models defines the rows cached in the agent's local database.
package models

import "time"

// Habit is a locally cached habit definition.
type Habit struct {
	ID        string
	Name      string
	Kind      string
	CreatedAt time.Time
}

// Profile is the locally cached user profile. Gender and AgeGroup may lag
// behind the rest of the account data on a slow sync.
type Profile struct {
	Name     string
	Gender   string
	AgeGroup string
}
