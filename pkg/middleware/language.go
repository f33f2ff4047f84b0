package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const langKey = "lang"

// LanguageMiddleware picks zh or en from ?lang= or Accept-Language.
func LanguageMiddleware(defaultLang string) gin.HandlerFunc {
	if defaultLang != "en" {
		defaultLang = "zh"
	}
	return func(c *gin.Context) {
		lang := strings.ToLower(c.Query("lang"))
		if lang == "" {
			lang = strings.ToLower(c.GetHeader("Accept-Language"))
		}
		switch {
		case strings.HasPrefix(lang, "en"):
			lang = "en"
		case strings.HasPrefix(lang, "zh"):
			lang = "zh"
		default:
			lang = defaultLang
		}
		c.Set(langKey, lang)
		c.Next()
	}
}

func CurrentLang(c *gin.Context) string {
	if l := c.GetString(langKey); l != "" {
		return l
	}
	return "zh"
}
