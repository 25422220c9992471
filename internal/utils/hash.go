package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

func Sha256Bytes(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
