package service

import (
	"errors"
	"log"
	"strings"

	"go-storefront/internal/model"
	"go-storefront/internal/repository"
	"go-storefront/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrLoginExists   = errors.New("login already exists")
	ErrUserHasOrders = errors.New("user has orders and cannot be deleted")
)

type UserService interface {
	ListUsers() ([]model.UserResponse, error)
	GetUser(id uint) (*model.UserResponse, error)
	CreateUser(req *CreateUserRequest) (*model.User, error)
	UpdateUser(id uint, req *UpdateUserRequest) (*model.User, error)
	DeleteUser(id uint) error
}

type CreateUserRequest struct {
	Login    string `json:"login" validate:"required,notblank,max=100"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required,notblank,max=100"`
	Role     string `json:"role" validate:"required,oneof=client manager administrator"`
}

type UpdateUserRequest struct {
	Login    *string `json:"login" validate:"omitnil,notblank,max=100"`
	Password *string `json:"password,omitempty" validate:"omitnil,min=6"` // Optional
	FullName *string `json:"full_name" validate:"omitnil,notblank,max=100"`
	Role     *string `json:"role" validate:"omitnil,oneof=client manager administrator"`
}

type userService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
}

func NewUserService(db *gorm.DB, userRepo repository.UserRepository) UserService {
	return &userService{
		db:       db,
		userRepo: userRepo,
	}
}

func (s *userService) ListUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUser(id uint) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) CreateUser(req *CreateUserRequest) (*model.User, error) {
	// 1. Validate request
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	// 2. Check if login already exists
	login := strings.TrimSpace(req.Login)
	if existing, _ := s.userRepo.FindByLogin(login); existing != nil {
		return nil, ErrLoginExists
	}

	// 3. Create user
	user := &model.User{
		Login:        login,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         req.Role,
		TokenVersion: uuid.NewString(),
	}

	// 4. Set password
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	// 5. Save to database
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrLoginExists
		}
		log.Printf("users: failed to create %q: %v", login, err)
		return nil, err
	}

	return user, nil
}

func (s *userService) UpdateUser(id uint, req *UpdateUserRequest) (*model.User, error) {
	// 1. Validate request
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	// 2. Find existing user
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	// 3. Check if login is being changed and already exists
	if req.Login != nil {
		login := strings.TrimSpace(*req.Login)
		if login != user.Login {
			if existing, _ := s.userRepo.FindByLogin(login); existing != nil {
				return nil, ErrLoginExists
			}
			user.Login = login
		}
	}

	// 4. Update fields
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Role != nil {
		user.Role = *req.Role
	}

	// 5. Update password if provided; open sessions end
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, errors.New("failed to hash password")
		}
		user.TokenVersion = uuid.NewString()
	}

	// 6. Save to database
	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrLoginExists
		}
		return nil, err
	}

	// 7. Reload and return
	return s.userRepo.FindByID(id)
}

func (s *userService) DeleteUser(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)

		if _, err := users.FindByID(id); err != nil {
			return notFound(err, ErrUserNotFound)
		}

		n, err := users.CountOrders(id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrUserHasOrders
		}

		if err := users.Delete(id); err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return ErrUserHasOrders
			}
			return err
		}
		return nil
	})
}
