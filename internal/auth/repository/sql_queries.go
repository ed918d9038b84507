package repository

const (
	getPrincipalQuery = `SELECT user_id, username, role, status
					 FROM users
					 WHERE user_id = $1`
)
