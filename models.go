package jwtauth

import (
	"time"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Supported signing algorithms. The algorithm stored on the secret record,
// never the one announced by the token, decides how verification runs.
const (
	AlgorithmHS256 = "HS256"
	AlgorithmHS384 = "HS384"
	AlgorithmHS512 = "HS512"
	AlgorithmRS256 = "RS256"
	AlgorithmRS384 = "RS384"
	AlgorithmRS512 = "RS512"
	AlgorithmES256 = "ES256"
	AlgorithmES384 = "ES384"
	AlgorithmES512 = "ES512"
)

// DefaultAlgorithm applies when a secret record does not pin one.
const DefaultAlgorithm = AlgorithmHS256

// JWTSecret is the stored credential: signing material owned by a consumer,
// addressed by a lookup key that tokens carry in their key claim.
type JWTSecret struct {
	bun.BaseModel `bun:"table:jwt_secrets,alias:jws"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Key           string     `bun:"key,notnull,unique" json:"key,omitempty"`
	Algorithm     string     `bun:"algorithm,notnull" json:"algorithm,omitempty"`
	Secret        string     `bun:"secret" json:"secret,omitempty"`
	RSAPublicKey  string     `bun:"rsa_public_key" json:"rsa_public_key,omitempty"`
	ConsumerID    uuid.UUID  `bun:"consumer_id,notnull,type:uuid" json:"consumer_id,omitempty"`
	Consumer      *Consumer  `bun:"rel:belongs-to,join:consumer_id=id" json:"consumer,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// NewJWTSecret builds a provisionable secret record. A missing key is
// generated, and the record ID is derived deterministically from the key so
// re-provisioning the same credential is idempotent.
func NewJWTSecret(key string, consumerID uuid.UUID) *JWTSecret {
	if key == "" {
		key = uuid.NewString()
	}

	record := &JWTSecret{
		Key:        key,
		Algorithm:  DefaultAlgorithm,
		ConsumerID: consumerID,
	}

	if id, err := hashid.NewUUID(key); err == nil {
		record.ID = id
	}

	return record
}

// Consumer is the caller identity a credential maps to.
type Consumer struct {
	bun.BaseModel `bun:"table:consumers,alias:cns"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	CustomID      string     `bun:"custom_id" json:"custom_id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}
