package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// ConnectionID is a monotonic identifier assigned by the store
type ConnectionID int64

// Connection is one authorization of one owner against one provider
type Connection struct {
	ID           ConnectionID
	OwnerID      string
	Provider     Provider
	DisplayName  string
	Active       bool
	Credentials  Credentials
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastSyncedAt *time.Time
}

// Validate checks the fields required before the connection is stored
func (c *Connection) Validate() error {
	if c.OwnerID == "" {
		return newValidationError("owner ID is required")
	}
	if err := c.Provider.Validate(); err != nil {
		return err
	}
	if c.DisplayName == "" {
		return newValidationError("display name is required")
	}
	if c.Credentials == nil {
		return newValidationError("credentials are required")
	}
	return ValidateCredentials(c.Provider, c.Credentials)
}

// Clone returns a deep copy
func (c *Connection) Clone() *Connection {
	if c == nil {
		return nil
	}
	copied := *c
	if c.LastSyncedAt != nil {
		t := *c.LastSyncedAt
		copied.LastSyncedAt = &t
	}
	return &copied
}

// ConnectionUpdate is a partial update. Nil fields are left untouched.
type ConnectionUpdate struct {
	Provider    *Provider
	DisplayName *string
	Active      *bool
	Credentials Credentials
}

// Apply merges the update into conn. Changing the provider is rejected.
func (u *ConnectionUpdate) Apply(conn *Connection) error {
	if u.Provider != nil && *u.Provider != conn.Provider {
		return newValidationError("provider cannot be changed",
			goerr.V(ProviderKey, *u.Provider))
	}
	if u.DisplayName != nil {
		if *u.DisplayName == "" {
			return newValidationError("display name is required")
		}
		conn.DisplayName = *u.DisplayName
	}
	if u.Active != nil {
		conn.Active = *u.Active
	}
	if u.Credentials != nil {
		if err := ValidateCredentials(conn.Provider, u.Credentials); err != nil {
			return err
		}
		conn.Credentials = u.Credentials
	}
	return nil
}
