package store

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// newRepoID derives a short identifier by hashing the repo's name, its
// import source and a random salt, so repeated imports of the same source
// get distinct ids.
func newRepoID(name, origin string) string {
	sum := sha256.Sum256([]byte(name + "\x00" + origin + "\x00" + randomSalt()))
	return hex.EncodeToString(sum[:])[:12]
}

// newPadID returns an identifier unique within the current process.
func newPadID() string {
	var b [6]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("pad-%s", hex.EncodeToString(b[:]))
}

// randomSalt keeps repeated imports of the same archive from colliding,
// since "content-derived" only needs to be stable for the life of one repo,
// not global across re-imports.
func randomSalt() string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
