package authkit

import "time"

// ServerConfig configures token issuance, hashing cost, and TTLs.
type ServerConfig struct {
	AccessJWTSigningKey []byte
	AccessJWTIssuer     string
	AccessTTL           time.Duration
	RefreshTTL          time.Duration
	BcryptCost          int
}
