package authservice

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/gofood/internal/domain"
	"github.com/GlebRadaev/gofood/internal/pg"
	"github.com/GlebRadaev/gofood/pkg/auth"
)

//go:generate mockgen -source=authservice.go -destination=mock_authservice.go -package=authservice

const tokenTTL = 15 * time.Minute

var ErrInvalidCredentials = errors.New("invalid credentials")

type Repo interface {
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	CreateRestaurant(ctx context.Context, restaurant *domain.Restaurant) error
}

type BalanceService interface {
	OpenAccount(ctx context.Context, user *domain.User, initial decimal.Decimal) (*domain.Account, error)
}

// Registration is what a new user submits. The remaining fields only apply to restaurants;
// hours are "HH:MM" and a restaurant without them never closes.
type Registration struct {
	Login       string
	Password    string
	Role        domain.Role
	Name        string
	Description string
	OpenTime    string
	CloseTime   string
}

type Service struct {
	userRepo       Repo
	balanceService BalanceService
	hashService    auth.HashServiceInterface
	jwtService     auth.JWTServiceInterface
	txManager      pg.TXManager
	initialBalance decimal.Decimal
}

func New(repo Repo, balanceService BalanceService, hashService auth.HashServiceInterface, jwtService auth.JWTServiceInterface,
	txManager pg.TXManager, initialBalance decimal.Decimal) *Service {
	return &Service{
		userRepo:       repo,
		balanceService: balanceService,
		hashService:    hashService,
		jwtService:     jwtService,
		txManager:      txManager,
		initialBalance: initialBalance,
	}
}

// Register creates the user together with its restaurant profile and ledger account.
// Customers start with the configured initial balance, restaurants with zero.
func (s *Service) Register(ctx context.Context, reg Registration) (*domain.User, error) {
	if !reg.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	var profile *domain.Restaurant
	if reg.Role == domain.RoleRestaurant {
		var err error
		if profile, err = restaurantProfile(reg); err != nil {
			return nil, err
		}
	}

	existingUser, err := s.userRepo.FindByLogin(ctx, reg.Login)
	if err != nil {
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	if existingUser != nil {
		zap.L().Info("user already exists", zap.String("login", reg.Login))
		return nil, domain.ErrUserExists
	}
	hashedPassword, err := s.hashService.HashPassword(reg.Password)
	if err != nil {
		zap.L().Error("can't hash password", zap.Error(err))
		return nil, err
	}

	var created *domain.User
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.Create(ctx, &domain.User{
			Login:        reg.Login,
			PasswordHash: hashedPassword,
			Role:         reg.Role,
		})
		if err != nil {
			return err
		}

		initial := decimal.Zero
		if profile != nil {
			profile.ID = user.ID
			if err := s.userRepo.CreateRestaurant(ctx, profile); err != nil {
				return err
			}
		} else {
			initial = s.initialBalance
		}
		if _, err := s.balanceService.OpenAccount(ctx, user, initial); err != nil {
			return err
		}
		created = user
		return nil
	})
	if err != nil {
		zap.L().Error("can't register user", zap.String("login", reg.Login), zap.Error(err))
		return nil, err
	}

	zap.L().Info("user successfully registered", zap.String("login", reg.Login), zap.String("role", string(reg.Role)))
	return created, nil
}

func (s *Service) Authenticate(ctx context.Context, login, password string) (*domain.User, error) {
	user, err := s.userRepo.FindByLogin(ctx, login)
	if err != nil || user == nil {
		zap.L().Info("invalid credentials", zap.String("login", login), zap.Error(err))
		return nil, ErrInvalidCredentials
	}
	if ok := s.hashService.ComparePassword(user.PasswordHash, password); !ok {
		zap.L().Info("invalid credentials", zap.String("login", login))
		return nil, ErrInvalidCredentials
	}
	zap.L().Info("user successfully authenticated", zap.String("login", login))
	return user, nil
}

func (s *Service) GenerateToken(user *domain.User) (string, error) {
	token, err := s.jwtService.GenerateJWT(user.ID, user.Role, time.Now().Add(tokenTTL))
	if err != nil {
		zap.L().Error("can't generate token", zap.Error(err))
		return "", err
	}
	return token, nil
}

func restaurantProfile(reg Registration) (*domain.Restaurant, error) {
	profile := &domain.Restaurant{Name: reg.Name, Description: reg.Description}
	if profile.Name == "" {
		profile.Name = reg.Login
	}
	if reg.OpenTime == "" && reg.CloseTime == "" {
		return profile, nil
	}

	var err error
	if profile.OpenTime, err = domain.ParseClockTime(reg.OpenTime); err != nil {
		return nil, err
	}
	if profile.CloseTime, err = domain.ParseClockTime(reg.CloseTime); err != nil {
		return nil, err
	}
	return profile, nil
}
