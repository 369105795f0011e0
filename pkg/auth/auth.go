package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/arnavshah/shift-board-api/pkg/models"
	"github.com/arnavshah/shift-board-api/pkg/store"
)

var jwtAlgorithm = jwt.SigningMethodHS256

// ErrInvalidCredentials is returned for an unknown code or a wrong password
var ErrInvalidCredentials = errors.New("invalid credentials")

// TokenTTL is how long a login token stays valid
const TokenTTL = 24 * time.Hour

// bcryptCost for staff password hashes
const bcryptCost = 12

// Claims represents the JWT claims
type Claims struct {
	StaffID string `json:"staff_id"`
	IsAdmin bool   `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator signs and checks staff tokens and integration keys
type Authenticator struct {
	JWTSecret    []byte
	MasterSecret []byte
}

// New creates an Authenticator from the two secrets
func New(jwtSecret, masterSecret string) *Authenticator {
	return &Authenticator{
		JWTSecret:    []byte(jwtSecret),
		MasterSecret: []byte(masterSecret),
	}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a new JWT token for a staff member
func (a *Authenticator) CreateToken(staff *models.Staff) (string, error) {
	claims := &Claims{
		StaffID: staff.ID,
		IsAdmin: staff.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staff.Code,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(a.JWTSecret)
}

// VerifyToken verifies a JWT token and returns the caller identity it carries
func (a *Authenticator) VerifyToken(tokenString string) (models.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtAlgorithm {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.JWTSecret, nil
	})
	if err != nil {
		return models.Identity{}, err
	}

	if !token.Valid || claims.StaffID == "" {
		return models.Identity{}, errors.New("invalid token")
	}

	return models.Identity{StaffID: claims.StaffID, IsAdmin: claims.IsAdmin}, nil
}

// Login checks a staff code and password
func Login(ctx context.Context, st *store.Store, code, password string) (*models.Staff, error) {
	staff, err := st.FindStaffByCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPasswordHash(password, staff.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return staff, nil
}

// EnsureAdminExists creates the admin account if its code is not taken yet
func EnsureAdminExists(ctx context.Context, st *store.Store, code, password string, logger *zap.Logger) error {
	_, err := st.FindStaffByCode(ctx, code)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.Staff{
		Code:         code,
		Name:         "Administrator",
		PasswordHash: hash,
		IsAdmin:      true,
	}
	if err := st.CreateStaff(ctx, admin); err != nil {
		return err
	}
	logger.Info("default admin created", zap.String("code", code))
	return nil
}

// GenerateHMACKey creates a signed integration key using HMAC-SHA256
func (a *Authenticator) GenerateHMACKey(name string) string {
	return name + "." + a.sign(name)
}

// VerifyHMACKey validates an HMAC-signed key and returns its name
func (a *Authenticator) VerifyHMACKey(key string) (string, error) {
	idx := strings.LastIndex(key, ".")
	if idx <= 0 || idx == len(key)-1 {
		return "", errors.New("invalid key format")
	}

	name := key[:idx]
	providedSignature := key[idx+1:]

	// Use constant-time comparison to prevent timing attacks
	if !hmac.Equal([]byte(providedSignature), []byte(a.sign(name))) {
		return "", errors.New("invalid signature")
	}

	return name, nil
}

func (a *Authenticator) sign(name string) string {
	h := hmac.New(sha256.New, a.MasterSecret)
	h.Write([]byte(name))
	return hex.EncodeToString(h.Sum(nil))
}
