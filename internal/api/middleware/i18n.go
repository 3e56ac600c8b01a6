package middleware

import (
	"net/http"
	"time"

	"golang.org/x/text/language"

	"github.com/orderdesk/orderdesk/internal/api/requestctx"
)

const langCookie = "i18next"

// I18n detects the caller's preferred language and stores it in the context.
// Lookup order: ?lang, X-I18N-Lang, the i18next cookie, then Accept-Language.
func I18n() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fromQuery := r.URL.Query().Get("lang")
			lang := fromQuery
			if lang == "" {
				lang = r.Header.Get("X-I18N-Lang")
			}
			if lang == "" {
				if cookie, err := r.Cookie(langCookie); err == nil {
					lang = cookie.Value
				}
			}
			if lang == "" {
				tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
				if err == nil && len(tags) > 0 {
					lang = tags[0].String()
				}
			}
			if tag, err := language.Parse(lang); err == nil {
				lang = tag.String()
			} else {
				lang = requestctx.DefaultLanguage
			}

			// 通过 ?lang 切换语言时持久化到 cookie，前端 i18next 也会读取它。
			if fromQuery != "" {
				http.SetCookie(w, &http.Cookie{
					Name:    langCookie,
					Value:   lang,
					Path:    "/",
					Expires: time.Now().Add(365 * 24 * time.Hour),
				})
			}

			next.ServeHTTP(w, r.WithContext(requestctx.WithLanguage(r.Context(), lang)))
		})
	}
}
