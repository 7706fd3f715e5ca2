package usercontext

// Locals keys shared by middlewares and controllers.
const (
	LocalsKey        = "USER_CONTEXT"
	KeyUserID        = "user_id"
	KeyEmail         = "email"
	KeyFromProtected = "from_protected"
)
