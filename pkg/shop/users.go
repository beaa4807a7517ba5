package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/tienda/pkg/models"
	"github.com/example/tienda/pkg/repository"
	"go.uber.org/zap"
)

type RegisterRequest struct {
	UID        string `json:"uid" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	FirstNames string `json:"nombres"`
	LastNames  string `json:"apellidos"`
	Phone      string `json:"telefono"`
	Photo      string `json:"foto_perfil"`
}

type UpdateUserRequest struct {
	FirstNames *string `json:"nombres"`
	LastNames  *string `json:"apellidos"`
	Phone      *string `json:"telefono"`
	Photo      *string `json:"foto_perfil"`
}

type UserService struct {
	store  Store
	carts  *CartService
	logger *zap.Logger
}

func NewUserService(store Store, carts *CartService, logger *zap.Logger) *UserService {
	return &UserService{store: store, carts: carts, logger: logger}
}

// Register creates the user together with its first active cart. created is
// false when the uid was already registered; the stored user is returned then.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (user *models.User, created bool, err error) {
	uid := strings.TrimSpace(req.UID)
	if uid == "" || strings.TrimSpace(req.Email) == "" {
		return nil, false, fmt.Errorf("%w: uid and email are required", ErrInvalidInput)
	}

	if existing, err := s.store.GetUser(ctx, uid); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get user: %w", err)
	}

	now := time.Now().UTC()
	user = &models.User{
		UID:        uid,
		Email:      req.Email,
		FirstNames: req.FirstNames,
		LastNames:  req.LastNames,
		Phone:      req.Phone,
		Photo:      req.Photo,
		Orders:     []int{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.store.WithTransaction(ctx, func(txCtx context.Context) error {
		cart, err := s.carts.ActiveCart(txCtx, uid)
		if err != nil {
			return err
		}
		user.ActiveCart = cart.ID.Hex()
		return s.store.InsertUser(txCtx, user)
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Lost a registration race; the winner's document is authoritative.
			existing, getErr := s.store.GetUser(ctx, uid)
			if getErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("User registered", zap.String("uid", uid), zap.String("cart_id", user.ActiveCart))
	return user, true, nil
}

func (s *UserService) User(ctx context.Context, uid string) (*models.User, error) {
	u, err := s.store.GetUser(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, uid)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, uid string, req UpdateUserRequest) (*models.User, error) {
	u, err := s.store.UpdateUser(ctx, uid, models.UserUpdate{
		FirstNames: req.FirstNames,
		LastNames:  req.LastNames,
		Phone:      req.Phone,
		Photo:      req.Photo,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, uid)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

// IsAdmin reports whether uid belongs to a dashboard operator. Unknown uids
// yield ErrUserNotFound.
func (s *UserService) IsAdmin(ctx context.Context, uid string) (bool, error) {
	u, err := s.User(ctx, uid)
	if err != nil {
		return false, err
	}
	return u.Admin, nil
}
