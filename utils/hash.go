package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"Reformly/config"
)

// HashEmail 盐 + ":" + 规范化后的邮箱，用于查询和缓存键，避免明文落库
func HashEmail(email string) string {
	sum := sha256.Sum256([]byte(config.Cfg.EmailHashSalt + ":" + NormalizeEmail(email)))
	return hex.EncodeToString(sum[:])
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
