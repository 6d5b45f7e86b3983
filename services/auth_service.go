package services

import (
	"context"
	"fmt"
	"taclink/interfaces"
	"taclink/models"
	"taclink/utils"
	"time"

	"github.com/sirupsen/logrus"
)

// AuthService resolves operator accounts into {identityId, role}
// pairs. A node registration also creates the account's field unit.
type AuthService struct {
	users      interfaces.UserStore
	units      interfaces.UnitStore
	jwtService *utils.JWTService
	passwords  *utils.PasswordService
	validator  *utils.ValidationService
}

func NewAuthService(users interfaces.UserStore, units interfaces.UnitStore, jwtService *utils.JWTService) *AuthService {
	return &AuthService{
		users:      users,
		units:      units,
		jwtService: jwtService,
		passwords:  utils.NewPasswordService(),
		validator:  utils.NewValidationService(),
	}
}

func (as *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if validationErrors := as.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewValidationErrorWithFields(utils.MissingFields(validationErrors))
	}

	existing, _ := as.users.GetByEmail(ctx, req.Email)
	if existing != nil {
		return nil, utils.NewValidationError("user with this email already exists")
	}

	hashedPassword, err := as.passwords.HashPassword(req.Password)
	if err != nil {
		logrus.Error("Failed to hash password: ", err)
		return nil, utils.NewInternalError("failed to create user")
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashedPassword,
		Role:     req.Role,
	}

	if err := as.users.Create(ctx, &user); err != nil {
		logrus.Error("Failed to create user: ", err)
		return nil, utils.NewInternalError("failed to create user")
	}

	// A node account owns exactly one field unit.
	var unit *models.Unit
	if req.Role == models.RoleNode {
		unit, err = as.createUnit(ctx, &user, req)
		if err != nil {
			logrus.Error("Failed to create unit for user: ", err)
			return nil, utils.NewInternalError("failed to create unit")
		}
	}

	tokenPair, err := as.jwtService.GenerateTokenPair(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		logrus.Error("Failed to generate tokens: ", err)
		return nil, utils.NewInternalError("failed to generate authentication tokens")
	}

	user.Password = ""

	return &models.AuthResponse{
		User:         user,
		Unit:         unit,
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		TokenType:    tokenPair.TokenType,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

func (as *AuthService) createUnit(ctx context.Context, user *models.User, req models.RegisterRequest) (*models.Unit, error) {
	unitID := req.UnitID
	if unitID == "" {
		unitID = fmt.Sprintf("UNIT-%d", time.Now().UnixMilli())
	}
	unitType := req.UnitType
	if unitType == "" {
		unitType = models.UnitTypeRescue
	}

	unit := models.Unit{
		UserID:    user.ID,
		UnitID:    unitID,
		UnitType:  unitType,
		Status:    models.UnitStatusAvailable,
		Position:  models.Position{LastUpdated: time.Now()},
		Resources: models.DefaultResources(),
	}

	if err := as.units.Create(ctx, &unit); err != nil {
		return nil, err
	}
	return &unit, nil
}

func (as *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if validationErrors := as.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewValidationErrorWithFields(utils.MissingFields(validationErrors))
	}

	user, err := as.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, utils.NewUnauthorizedError("invalid email or password")
	}

	if !user.IsActive {
		return nil, utils.NewUnauthorizedError("account is deactivated")
	}

	valid, err := as.passwords.ComparePassword(req.Password, user.Password)
	if err != nil || !valid {
		return nil, utils.NewUnauthorizedError("invalid email or password")
	}

	if err := as.users.UpdateLastSeen(ctx, user.ID.Hex()); err != nil {
		logrus.Warn("Failed to update last seen: ", err)
	}

	// A node login returns its unit so the client can seed its state.
	var unit *models.Unit
	if user.Role == models.RoleNode {
		unit, err = as.units.GetByUserID(ctx, user.ID.Hex())
		if err != nil && !utils.IsNotFound(err) {
			logrus.Warnf("Failed to load unit for user %s: %v", user.ID.Hex(), err)
		}
	}

	tokenPair, err := as.jwtService.GenerateTokenPair(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		logrus.Error("Failed to generate tokens: ", err)
		return nil, utils.NewInternalError("failed to generate authentication tokens")
	}

	user.Password = ""

	return &models.AuthResponse{
		User:         *user,
		Unit:         unit,
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		TokenType:    tokenPair.TokenType,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

// ValidateToken resolves a bearer token into claims. Used by the auth
// middleware and the websocket handshake.
func (as *AuthService) ValidateToken(token string) (*utils.Claims, error) {
	return as.jwtService.ValidateToken(token)
}

func (as *AuthService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return as.users.GetByID(ctx, userID)
}
