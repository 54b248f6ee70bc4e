package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pedidofacil/pedidofacil/internal/config"
	"github.com/pedidofacil/pedidofacil/internal/user/domain"
	"github.com/pedidofacil/pedidofacil/pkg/db"
	"github.com/pedidofacil/pedidofacil/pkg/db/pagination"
	"github.com/pedidofacil/pedidofacil/pkg/validate"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	sessionTokenBytes = 32

	minPasswordLength = 6
	minNameLength     = 2
	maxNameLength     = 100
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Settings config.Settings
	Repo     domain.Repository
	Sessions domain.SessionRepository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	settings config.Settings
	repo     domain.Repository
	sessions domain.SessionRepository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("user.service"),
		genID:    p.GenID,
		settings: p.Settings,
		repo:     p.Repo,
		sessions: p.Sessions,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.LoginResult, error) {
	v := &validate.Errors{}

	name := strings.TrimSpace(req.Name)
	if len(name) < minNameLength || len(name) > maxNameLength {
		v.Add("name", "invalid_name", "name must be between 2 and 100 characters")
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		v.Add("email", "invalid_email", "email must be valid")
	}

	if len(req.Password) < minPasswordLength {
		v.Add("password", "invalid_password", "password must have at least 6 characters")
	}

	role := req.Role
	if role == "" {
		role = domain.RoleOperator
	}
	if !role.Valid() {
		v.Add("role", "invalid_role", "role must be admin, manager or operator")
	}

	if v.HasErrors() {
		return nil, v
	}

	if _, err := s.repo.FindByEmail(ctx, s.db, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.settings.BcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           s.genID.Generate(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return s.issueSession(ctx, user)
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil || strings.TrimSpace(req.Password) == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Same error as a password mismatch so accounts cannot be enumerated.
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Active {
		return nil, domain.ErrAccountDisabled
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, user); err != nil {
		return nil, err
	}

	return s.issueSession(ctx, user)
}

func (s *Service) Logout(ctx context.Context, token string) error {
	session, err := s.sessions.FindByTokenHash(ctx, s.db, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	return s.sessions.Revoke(ctx, s.db, session.ID)
}

func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrInvalidSession
	}

	session, err := s.sessions.FindByTokenHash(ctx, s.db, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, err
	}
	if session.RevokedAt != nil {
		return nil, domain.ErrSessionRevoked
	}
	if time.Now().UTC().After(session.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}

	user, err := s.repo.FindByID(ctx, s.db, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrAccountDisabled
	}

	if err := s.sessions.Touch(ctx, s.db, session.ID); err != nil {
		s.log.Warn("session touch failed", zap.Error(err))
	}
	return user, nil
}

func (s *Service) GetProfile(ctx context.Context, requester domain.Requester) (domain.PublicUser, error) {
	user, err := s.repo.FindByID(ctx, s.db, requester.ID)
	if err != nil {
		return domain.PublicUser{}, err
	}
	return user.PublicView(), nil
}

func (s *Service) UpdateProfile(ctx context.Context, requester domain.Requester, req domain.UpdateProfileRequest) (domain.PublicUser, error) {
	user, err := s.repo.FindByID(ctx, s.db, requester.ID)
	if err != nil {
		return domain.PublicUser{}, err
	}

	v := &validate.Errors{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < minNameLength || len(name) > maxNameLength {
			v.Add("name", "invalid_name", "name must be between 2 and 100 characters")
		} else {
			user.Name = name
		}
	}
	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			v.Add("email", "invalid_email", "email must be valid")
		} else {
			user.Email = email
		}
	}
	if req.Password != nil {
		if len(*req.Password) < minPasswordLength {
			v.Add("password", "invalid_password", "password must have at least 6 characters")
		} else {
			hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.settings.BcryptCost)
			if err != nil {
				return domain.PublicUser{}, err
			}
			user.PasswordHash = string(hash)
		}
	}
	if v.HasErrors() {
		return domain.PublicUser{}, v
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.PublicUser{}, domain.ErrEmailTaken
		}
		return domain.PublicUser{}, err
	}
	return user.PublicView(), nil
}

func (s *Service) List(ctx context.Context, req domain.ListUserRequest) (domain.ListUserResponse, error) {
	if req.Role != "" && !req.Role.Valid() {
		return domain.ListUserResponse{}, validate.New("role", "invalid_role", "role must be admin, manager or operator")
	}

	page := req.Pagination.Normalize(s.settings.DefaultPageSize, s.settings.MaxPageSize)
	filter := domain.ListUserFilter{
		Role:   req.Role,
		Active: req.Active,
		Search: strings.TrimSpace(req.Search),
	}

	items, total, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListUserResponse{}, err
	}

	users := make([]domain.PublicUser, 0, len(items))
	for _, item := range items {
		users = append(users, item.PublicView())
	}
	return domain.ListUserResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Users:    users,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.PublicUser, error) {
	userID, err := s.parseID(id)
	if err != nil {
		return domain.PublicUser{}, err
	}
	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.PublicUser{}, err
	}
	return user.PublicView(), nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateUserRequest) (domain.PublicUser, error) {
	userID, err := s.parseID(id)
	if err != nil {
		return domain.PublicUser{}, err
	}
	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.PublicUser{}, err
	}

	v := &validate.Errors{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < minNameLength || len(name) > maxNameLength {
			v.Add("name", "invalid_name", "name must be between 2 and 100 characters")
		} else {
			user.Name = name
		}
	}
	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			v.Add("email", "invalid_email", "email must be valid")
		} else {
			user.Email = email
		}
	}
	if req.Password != nil {
		if len(*req.Password) < minPasswordLength {
			v.Add("password", "invalid_password", "password must have at least 6 characters")
		} else {
			hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.settings.BcryptCost)
			if err != nil {
				return domain.PublicUser{}, err
			}
			user.PasswordHash = string(hash)
		}
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			v.Add("role", "invalid_role", "role must be admin, manager or operator")
		} else {
			user.Role = *req.Role
		}
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if v.HasErrors() {
		return domain.PublicUser{}, v
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.PublicUser{}, domain.ErrEmailTaken
		}
		return domain.PublicUser{}, err
	}
	return user.PublicView(), nil
}

func (s *Service) Delete(ctx context.Context, id string, requester domain.Requester) error {
	userID, err := s.parseID(id)
	if err != nil {
		return err
	}
	if userID == requester.ID {
		return domain.ErrSelfDelete
	}
	return s.repo.Delete(ctx, s.db, userID)
}

func (s *Service) issueSession(ctx context.Context, user *domain.User) (*domain.LoginResult, error) {
	rawToken, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ttl := time.Duration(s.settings.SessionTTLDays) * 24 * time.Hour
	session := &domain.Session{
		ID:        s.genID.Generate(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		LastSeen:  now,
	}
	if err := s.sessions.Insert(ctx, s.db, session); err != nil {
		return nil, err
	}

	return &domain.LoginResult{
		User:      user.PublicView(),
		Token:     rawToken,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *Service) parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", domain.ErrInvalidCredentials
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", err
	}
	return email, nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
