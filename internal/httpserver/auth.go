package httpserver

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// basicAuthRealm is sent in the WWW-Authenticate challenge so browsers
// pop their credential prompt for the admin panel.
const basicAuthRealm = `Basic realm="Login Required"`

// requireBasicAuth returns a middleware that guards the admin routes with
// HTTP Basic auth against a single credential pair.
//
// Both username and password are compared in constant time so response
// timing reveals nothing about how much of a guess was correct, and the
// two comparisons are combined with & (not &&) to avoid short-circuiting.
func requireBasicAuth(username, password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if !ok {
			challenge(c)
			return
		}

		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(username))
		passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(password))
		if userOK&passOK != 1 {
			challenge(c)
			return
		}

		c.Next()
	}
}

// challenge aborts the request with a 401 and the Basic auth challenge.
func challenge(c *gin.Context) {
	c.Header("WWW-Authenticate", basicAuthRealm)
	c.String(http.StatusUnauthorized, "authentication required")
	c.Abort()
}
