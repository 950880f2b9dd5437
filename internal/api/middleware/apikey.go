package middleware

import (
	"net/http"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/gfranca/b3-ledger-backend/internal/api/response"
)

// APIKeyHeader carries the fernet token that authorizes mutating requests.
const APIKeyHeader = "X-API-Key"

// APIKey verifies the fernet token on every request passing through it.
// An empty key disables the check, which is the local-development default.
// ttl bounds token age; zero means tokens never expire.
func APIKey(key string, ttl time.Duration) func(http.Handler) http.Handler {
	var keys []*fernet.Key
	if key != "" {
		decoded, err := fernet.DecodeKeys(key)
		if err == nil {
			keys = decoded
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(keys) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get(APIKeyHeader)
			if token == "" {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing API key")
				return
			}

			if msg := fernet.VerifyAndDecrypt([]byte(token), ttl, keys); msg == nil {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
