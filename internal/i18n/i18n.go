package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultLocale is used when no supported locale can be resolved.
const DefaultLocale = "ru"

var supported = map[string]bool{
	"ru": true,
	"en": true,
}

var messages = map[string]map[string]string{
	"en": {
		"error.bad_request":              "invalid request",
		"error.validation":               "validation failed",
		"error.unauthorized":             "authentication required",
		"error.forbidden":                "permission denied",
		"error.not_found":                "not found",
		"error.conflict":                 "already exists",
		"error.internal":                 "internal error",
		"error.rate_limited":             "too many requests, retry in %d seconds",
		"error.login_rate_limited":       "too many login attempts, retry in %d seconds",
		"error.rate_limit_unavailable":   "rate limiter unavailable",
		"error.jwt_secret_missing":       "token secret not configured",
		"error.auth_header_missing":      "authorization header missing",
		"error.auth_header_invalid":      "authorization header invalid",
		"error.token_invalid":            "token invalid",
		"error.token_revoked":            "token revoked",
		"error.session_missing":          "session cookie missing",
		"error.session_invalid":          "session expired or invalid",
		"error.user_disabled":            "account disabled",
		"error.captcha_invalid":          "captcha verification failed",
		"error.password_min_length":      "password must be at least %d characters",
		"error.password_require_upper":   "password must contain an uppercase letter",
		"error.password_require_lower":   "password must contain a lowercase letter",
		"error.password_require_number":  "password must contain a digit",
		"error.password_require_special": "password must contain a special character",
	},
	"ru": {
		"error.bad_request":              "некорректный запрос",
		"error.validation":               "ошибка валидации",
		"error.unauthorized":             "требуется авторизация",
		"error.forbidden":                "доступ запрещён",
		"error.not_found":                "не найдено",
		"error.conflict":                 "уже существует",
		"error.internal":                 "внутренняя ошибка",
		"error.rate_limited":             "слишком много запросов, повторите через %d сек",
		"error.login_rate_limited":       "слишком много попыток входа, повторите через %d сек",
		"error.rate_limit_unavailable":   "сервис ограничения запросов недоступен",
		"error.jwt_secret_missing":       "секрет токена не настроен",
		"error.auth_header_missing":      "отсутствует заголовок авторизации",
		"error.auth_header_invalid":      "некорректный заголовок авторизации",
		"error.token_invalid":            "недействительный токен",
		"error.token_revoked":            "токен отозван",
		"error.session_missing":          "отсутствует cookie сессии",
		"error.session_invalid":          "сессия истекла или недействительна",
		"error.user_disabled":            "учётная запись отключена",
		"error.captcha_invalid":          "проверка капчи не пройдена",
		"error.password_min_length":      "пароль должен содержать не менее %d символов",
		"error.password_require_upper":   "пароль должен содержать заглавную букву",
		"error.password_require_lower":   "пароль должен содержать строчную букву",
		"error.password_require_number":  "пароль должен содержать цифру",
		"error.password_require_special": "пароль должен содержать специальный символ",
	},
}

// ResolveLocale picks a supported locale from the request.
// Priority: lang query param, X-Locale header, Accept-Language, default.
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if lang := normalize(c.Query("lang")); supported[lang] {
		return lang
	}
	if lang := normalize(c.GetHeader("X-Locale")); supported[lang] {
		return lang
	}
	for _, part := range strings.Split(c.GetHeader("Accept-Language"), ",") {
		lang := normalize(strings.SplitN(part, ";", 2)[0])
		if supported[lang] {
			return lang
		}
	}
	return DefaultLocale
}

// T returns the message for key in the given locale.
func T(locale, key string) string {
	if table, ok := messages[normalize(locale)]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf formats the localized message for key with args.
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

func normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return lang
}
