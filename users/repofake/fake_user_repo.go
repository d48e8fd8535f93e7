package fakeuserrepo

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/academy-admin/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users    map[string]*users.User
	emailIds map[string]string // email to user id
	lock     sync.RWMutex
}

func NewFakeUserRepo() users.UserRepo {
	return &FakeUserRepo{
		users:    make(map[string]*users.User),
		emailIds: make(map[string]string),
	}
}

func (ur *FakeUserRepo) Upsert(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	ur.users[user.ID] = user
	ur.emailIds[strings.ToLower(user.Email)] = user.ID
	return nil
}

func (ur *FakeUserRepo) Delete(id string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return errors.New("not found")
	}
	delete(ur.emailIds, strings.ToLower(user.Email))
	delete(ur.users, id)
	return nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[strings.ToLower(email)]
	if !ok {
		return nil, errors.New("not found")
	}
	return ur.users[id], nil
}

func (ur *FakeUserRepo) GetByID(id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	if _, ok := ur.users[id]; !ok {
		return nil, errors.New("not found")
	}
	return ur.users[id], nil
}

// List returns users ordered by email, filtered by role when one is given.
func (ur *FakeUserRepo) List(role users.RoleType) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	list := make([]*users.User, 0, len(ur.users))
	for _, u := range ur.users {
		if role != "" && u.Role != role {
			continue
		}
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Email < list[j].Email
	})
	return list, nil
}
