package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	exclUsrsLen := len(excludedUsers)
	if exclUsrsLen > 1 {
		sort.Slice(excludedUsers, func(i, j int) bool { return excludedUsers[i].ID < excludedUsers[j].ID })
	}

	for _, usr := range repo.query() {
		if usr.Username == username && !isExcluded(usr, excludedUsers, exclUsrsLen) {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email && !isExcluded(usr, excludedUsers, exclUsrsLen) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.userPK++
	usr.ID = repo.db.userPK
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.query() {
		if usr.Username == username {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.query() {
		if (usr.Username == username) || (usr.Email != "" && usr.Email == username) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) AssignClass(ctx context.Context, teacherUserID int, class string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, cl := range repo.db.teacherClasses[teacherUserID] {
		if cl == class {
			return nil
		}
	}
	repo.db.teacherClasses[teacherUserID] = append(repo.db.teacherClasses[teacherUserID], class)
	return nil
}

func (repo *userRepository) UnassignClass(ctx context.Context, teacherUserID int, class string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	classes := repo.db.teacherClasses[teacherUserID]
	for i, cl := range classes {
		if cl == class {
			repo.db.teacherClasses[teacherUserID] = append(classes[:i], classes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (repo *userRepository) QueryTeacherClasses(ctx context.Context, teacherUserID int) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]string, len(repo.db.teacherClasses[teacherUserID]))
	copy(classes, repo.db.teacherClasses[teacherUserID])
	sort.Strings(classes)
	return classes, nil
}

func (repo *userRepository) TeacherOwnsClass(ctx context.Context, teacherUserID int, class string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, cl := range repo.db.teacherClasses[teacherUserID] {
		if cl == class {
			return true, nil
		}
	}
	return false, nil
}

func isExcluded(usr user.User, excludedUsers []user.User, n int) bool {
	if n <= 0 {
		return false
	}
	idx := sort.Search(n, func(i int) bool { return excludedUsers[i].ID >= usr.ID })
	return idx < n && excludedUsers[idx].ID == usr.ID
}
