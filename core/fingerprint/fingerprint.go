package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"catalog-sync/core/model"
)

// fieldSeparator joins fingerprint input fields. The ASCII unit separator
// does not occur in catalog field values, so adjacent fields cannot collide
// ("ab","c" vs "a","bc").
const fieldSeparator = "\x1f"

// Digest computes the content fingerprint over the fingerprint-relevant
// fields of a normalized record. The caller supplies the fields in the fixed
// per-type order; volatile values (fetch timestamps, counters) must not be
// included or every pass would spuriously report a change.
func Digest(fields []string) string {
	sum := sha256.Sum256([]byte(strings.Join(fields, fieldSeparator)))
	return hex.EncodeToString(sum[:])
}

// Classify compares a freshly computed digest against the stored record and
// returns the lifecycle state to persist.
//
//   - No stored record: NEW.
//   - Stored record is DELETED: the asset reappeared in the source, so it is
//     revived as UPDATED even when the digest matches its pre-deletion value.
//     Leaving it tombstoned would permanently desynchronize the mirror.
//   - Digest differs: UPDATED.
//   - Digest equal while a change was still pending (NEW or UPDATED): ACTIVE,
//     the change has been seen and is no longer pending.
//   - Digest equal and already ACTIVE: unchanged.
func Classify(stored *model.AssetRecord, digest string) model.Lifecycle {
	if stored == nil {
		return model.LifecycleNew
	}
	if stored.LifecycleState == model.LifecycleDeleted {
		return model.LifecycleUpdated
	}
	if stored.Fingerprint != digest {
		return model.LifecycleUpdated
	}
	// Digest equal: a pending NEW/UPDATED collapses to ACTIVE, an already
	// ACTIVE record stays ACTIVE.
	return model.LifecycleActive
}
