package httpx

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// BasicAuth requires HTTP basic credentials matching one of users, a map of
// user name to bcrypt hash. Unknown users still pay for a bcrypt compare so
// response timing does not reveal which names exist.
func BasicAuth(realm string, users map[string]string) Middleware {
	challenge := fmt.Sprintf("Basic realm=%q, charset=\"UTF-8\"", realm)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if ok && checkPassword(users, user, pass) {
				next.ServeHTTP(w, r)
				return
			}

			if ok {
				log.Printf("Authentication failed for user %q from %s", user, r.RemoteAddr)
			}

			w.Header().Set("WWW-Authenticate", challenge)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		})
	}
}

func checkPassword(users map[string]string, user, pass string) bool {
	hash, known := users[user]
	if !known {
		_ = bcrypt.CompareHashAndPassword(fallbackHash(), []byte(pass))
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)) == nil
}

func fallbackHash() []byte {
	dummyHashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("zserve-unknown-user"), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Failed to generate fallback hash: %v", err)
			return
		}

		dummyHash = h
	})

	return dummyHash
}
