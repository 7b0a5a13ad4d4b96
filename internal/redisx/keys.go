package redisx

import (
	"fmt"
	"time"
)

const (
	// Stage list: pipeline:stages -> JSON []Stage
	KeyStages = "pipeline:stages"

	// Board snapshot: pipeline:board -> JSON {customers, customersByStage}
	KeyBoard = "pipeline:board"

	// Pre-made listings, one entry per sort sharing one generation:
	// catalog:premade:{sort}
	KeyPremadeGroup = "catalog:premade"
	KeyPremade      = "catalog:premade:%s"

	// Custom listings: catalog:custom
	KeyCustom = "catalog:custom"

	// Logged-out admin tokens: auth:revoked:{jti}
	KeyRevokedToken = "auth:revoked:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStages = 10 * time.Minute
	TTLDedup  = 48 * time.Hour
)

func keyf(format string, args ...any) string { return fmt.Sprintf(format, args...) }

// VersionKey is key as stored under generation gen.
func VersionKey(key string, gen int64) string { return keyf("%s:v%d", key, gen) }

func generationKey(group string) string { return group + ":gen" }

func PremadeKey(sort string) string { return keyf(KeyPremade, sort) }
