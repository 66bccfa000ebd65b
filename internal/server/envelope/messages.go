package envelope

const (
	MsgEmailAlreadyExists    = "The provided email address is already in use."
	MsgUsernameAlreadyExists = "The provided username is already in use."
	MsgInvalidCredentials    = "The email or password you entered is incorrect."
	MsgInvalidUser           = "User not found. Please check your details."
	MsgServerError           = "An unexpected error occurred. Please try again later."
	MsgSigninSuccess         = "You have successfully signed in."
	MsgSignoutSuccess        = "You have successfully signed out."
	MsgSuccess               = "User registration was successful."
	MsgTooManyRequests       = "Too many requests detected. Please try again after some time."
	MsgNoToken               = "Unauthorized: No token provided"
	MsgInvalidToken          = "Unauthorized: Invalid token"
	MsgTokenExpired          = "Unauthorized: Token expired"
	MsgInvalidBody           = "Request body is malformed."
)

// NotFound renders the generic not-found message for entity.
func NotFound(entity string) string {
	return entity + " was not found. Please verify and try again."
}
