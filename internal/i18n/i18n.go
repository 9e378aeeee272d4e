package i18n

import (
	"strings"

	"fmt"

	"github.com/gin-gonic/gin"
)

// 支持的语言
const (
	LocaleZhCN = "zh-CN"
	LocaleEnUS = "en-US"
)

const defaultLocale = LocaleZhCN

// ResolveLocale 解析请求语言：优先 query 参数 lang，其次 Accept-Language 头
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return defaultLocale
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return normalize(lang)
	}
	if header := c.GetHeader("Accept-Language"); header != "" {
		first := strings.TrimSpace(strings.Split(header, ",")[0])
		if idx := strings.Index(first, ";"); idx >= 0 {
			first = first[:idx]
		}
		return normalize(first)
	}
	return defaultLocale
}

func normalize(lang string) string {
	lower := strings.ToLower(strings.TrimSpace(lang))
	switch {
	case strings.HasPrefix(lower, "zh"):
		return LocaleZhCN
	case strings.HasPrefix(lower, "en"):
		return LocaleEnUS
	default:
		return defaultLocale
	}
}

// T 按语言查找消息文案，未命中时回退默认语言，再回退 key 本身
func T(locale, key string) string {
	if table, ok := messages[normalize(locale)]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[defaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 带参数的国际化文案
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
