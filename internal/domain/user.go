package domain

type User struct {
	ID       string `db:"id"`
	Username string `db:"username"`
	Email    string `db:"email"`
	Phone    string `db:"phone"`
	Hash     string `db:"password_hash"`
	Role     string `db:"role"` // USER | ADMIN
}
