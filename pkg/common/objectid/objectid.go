package objectid

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"regexp"
	"time"
)

var hexPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// New 生成24位十六进制记录标识
// 布局与Mongo ObjectID一致：4字节unix时间戳 + 8字节随机数
func New() string {
	var b [12]byte
	binary.BigEndian.PutUint32(b[:4], uint32(time.Now().Unix()))
	_, _ = rand.Read(b[4:])
	return hex.EncodeToString(b[:])
}

// Valid 校验标识格式(必须为24位十六进制字符)
func Valid(s string) bool {
	return hexPattern.MatchString(s)
}
