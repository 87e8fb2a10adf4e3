package constants

// Advisory lock ids shared by every instance pointed at the same database.
const (
	MigrationLock = iota + 1
	CronJobLock
)

const (
	// TokenCookieName is the cookie carrying the session token.
	TokenCookieName = "token"
)
