// Package unsafehelpers centralises the small amount of unavoidable `unsafe`
// usage in this module so the rest of the tree stays clean and auditable.
// Every helper documents its pre-/post-conditions.
//
// ⚠️  **DISCLAIMER**   These helpers deliberately break the Go memory‑safety
// model for the sake of zero‑allocation conversions.  Use ONLY inside this
// repository; they are not part of the public API and may change without
// notice.
//
// Trimmed to the helpers this module's domain actually exercises: page/slab
// alignment math and a zero-copy byte→string view used when keying the
// Badger-backed hostswap provider. Entry keys are plain uint64 swap offsets,
// so no runtime hashing of arbitrary scalar types is required here.
//
// © 2025 zcache authors. MIT License.

package unsafehelpers

import "unsafe"

/* -------------------------------------------------------------------------
   1. Zero‑copy byte → string conversion
   ------------------------------------------------------------------------- */

// BytesToString converts a byte slice to a string without allocating. The
// caller must guarantee b is never modified for the lifetime of the
// returned string; otherwise the program exhibits undefined behaviour.
//
// DO NOT expose the returned string outside controlled scopes.
func BytesToString(b []byte) string {
    if len(b) == 0 {
        return ""
    }
    return unsafe.String(&b[0], len(b))
}

/* -------------------------------------------------------------------------
   2. Alignment helpers
   ------------------------------------------------------------------------- */

// AlignUp rounds x up to the nearest multiple of align (which must be a power
// of two).  Fast bit‑twiddling alternative to math.Ceil for sizes.
func AlignUp(x, align uintptr) uintptr {
    return (x + align - 1) &^ (align - 1)
}

// IsPowerOfTwo returns true if x is a power of two (exactly one bit set).
func IsPowerOfTwo(x uintptr) bool {
    return x != 0 && (x&(x-1)) == 0
}
