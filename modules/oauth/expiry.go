package oauth

import (
	"time"

	"github.com/guarzo/tokenguard/common/model"
)

// DefaultBufferMinutes is how close to expiry a token must be before it is refreshed.
const DefaultBufferMinutes = 10

// IsTokenExpiringSoon reports whether cred expires within bufferMinutes of now.
// bufferMinutes defaults to DefaultBufferMinutes when omitted. A token that has
// already expired counts as expiring soon.
func IsTokenExpiringSoon(cred model.Credential, now time.Time, bufferMinutes ...int) (bool, error) {
	if len(bufferMinutes) == 0 {
		bufferMinutes = []int{DefaultBufferMinutes}
	}

	expiresAt, err := cred.ExpiresAtUnix()
	if err != nil {
		return false, err
	}
	nowSecs := now.Unix()
	if expiresAt <= nowSecs {
		return true, nil
	}
	bufferSeconds := int64(bufferMinutes[0]) * 60

	// expiresAt > nowSecs, so the difference cannot wrap
	return expiresAt-nowSecs <= bufferSeconds, nil
}
