package middleware

const (
	Authorization = "Authorization"
	TokenKey      = "requestToken"
	UserKey       = "requestUser"
	JWTUserKey    = "jwtUser"
)
