package users

type UserRepo interface {
	Upsert(user *User) error
	Delete(id string) error
	GetByEmail(email string) (*User, error)
	GetByID(ID string) (*User, error)
	List(role RoleType) ([]*User, error)
}
