package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the required scheme prefix of the authorization header.
const BearerPrefix = "Bearer "

// Cookie names set on a successful login.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"
)

// RootFolderSentinel is the path value that denotes "no parent" when listing
// folders by parent.
const RootFolderSentinel = "null"
