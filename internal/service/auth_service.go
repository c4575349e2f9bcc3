package service

import (
	"errors"
	"log"
	"time"

	"go-storefront/internal/model"
	"go-storefront/internal/repository"
	"go-storefront/pkg/jwt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrPasswordTooShort   = errors.New("new password must be at least 6 characters")
	ErrSessionExpired     = errors.New("session expired (logged out or logged in elsewhere)")
)

const minPasswordLength = 6

type AuthService interface {
	Authenticate(login, password string) (*model.User, error)
	GetUserByID(id uint) (*model.User, error)
	Login(login, password string) (*LoginResponse, error)
	Logout(userID uint) error
	ValidateToken(tokenString string) (*SessionInfo, error)
	ChangePassword(login, oldPassword, newPassword string) error
	MigrateLegacyPasswords() (int, error)
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
	Role  model.Role         `json:"role"`
}

// SessionInfo is the caller identity behind a valid token
type SessionInfo struct {
	User model.UserResponse `json:"user"`
	Role model.Role         `json:"role"`
}

type authService struct {
	userRepo repository.UserRepository
	tokenTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, tokenTTL time.Duration) AuthService {
	return &authService{
		userRepo: userRepo,
		tokenTTL: tokenTTL,
	}
}

// Authenticate checks a login/password pair. Every failure, including a
// database fault, is reported as ErrInvalidCredentials; the log line keeps
// the actual reason.
func (s *authService) Authenticate(login, password string) (*model.User, error) {
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByLogin(login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("auth: no user with login %q", login)
		} else {
			log.Printf("auth: lookup for login %q failed: %v", login, err)
		}
		return nil, ErrInvalidCredentials
	}

	if !user.CheckPassword(password) {
		log.Printf("auth: password mismatch for login %q", login)
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *authService) Login(login, password string) (*LoginResponse, error) {
	// 1. Verify credentials
	user, err := s.Authenticate(login, password)
	if err != nil {
		return nil, err
	}

	// 2. Single session: a new token version invalidates earlier tokens
	newTokenVersion := uuid.NewString()
	if err := s.userRepo.UpdateTokenVersion(user.ID, newTokenVersion); err != nil {
		log.Printf("auth: failed to rotate session for %q: %v", login, err)
		return nil, ErrInvalidCredentials
	}
	user.TokenVersion = newTokenVersion

	// 3. Issue token with the normalized role
	role := user.NormalizedRole()
	token, err := jwt.GenerateToken(user.ID, user.Login, user.FullName, string(role), newTokenVersion, s.tokenTTL)
	if err != nil {
		log.Printf("auth: failed to sign token for %q: %v", login, err)
		return nil, errors.New("failed to generate token")
	}

	log.Printf("auth: %s signed in as %s", user.Login, role)
	return &LoginResponse{
		Token: token,
		User:  user.ToResponse(),
		Role:  role,
	}, nil
}

func (s *authService) Logout(userID uint) error {
	if err := s.userRepo.UpdateTokenVersion(userID, uuid.NewString()); err != nil {
		return notFound(err, ErrUserNotFound)
	}
	return nil
}

func (s *authService) ValidateToken(tokenString string) (*SessionInfo, error) {
	// 1. Validate JWT token
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	// 2. Find user by ID from token claims
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	// 3. Check against DB for strict session (TokenVersion)
	if user.TokenVersion == "" || user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionExpired
	}

	return &SessionInfo{
		User: user.ToResponse(),
		Role: user.NormalizedRole(),
	}, nil
}

func (s *authService) ChangePassword(login, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	// 1. Find user by login
	user, err := s.userRepo.FindByLogin(login)
	if err != nil {
		return notFound(err, ErrUserNotFound)
	}

	// 2. Verify old password
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}

	// 3. Set new password
	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}

	// 4. Store it and end existing sessions
	user.TokenVersion = uuid.NewString()
	return s.userRepo.Update(user)
}

// MigrateLegacyPasswords replaces plaintext passwords left by the legacy
// schema with bcrypt hashes of the same value.
func (s *authService) MigrateLegacyPasswords() (int, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return 0, err
	}

	migrated := 0
	for i := range users {
		user := &users[i]
		if user.Password == "" || user.HasHashedPassword() {
			continue
		}
		if err := user.SetPassword(user.Password); err != nil {
			return migrated, err
		}
		if err := s.userRepo.UpdatePassword(user.ID, user.Password); err != nil {
			return migrated, err
		}
		migrated++
	}
	return migrated, nil
}
