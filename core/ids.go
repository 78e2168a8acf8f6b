package core

import "github.com/google/uuid"

// NewID generates an opaque unique identifier for sessions, chat items,
// patients and appointments.
func NewID() string { return uuid.NewString() }
