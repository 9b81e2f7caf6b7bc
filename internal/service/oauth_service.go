package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"bytebuddhi-be/internal/dto"
	"bytebuddhi-be/internal/entity"
	"bytebuddhi-be/internal/repository/specification"
	"bytebuddhi-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

type IOAuthService interface {
	GetLoginURL(provider string) (string, error)
	HandleCallback(ctx context.Context, provider string, code string) (*dto.LoginResponse, error)
}

type oauthService struct {
	uowFactory unitofwork.RepositoryFactory
	githubConf *oauth2.Config
	jwtSecret  string
}

func NewOAuthService(uowFactory unitofwork.RepositoryFactory, clientId, clientSecret, baseURL, jwtSecret string) IOAuthService {
	conf := &oauth2.Config{
		ClientID:     clientId,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/api/oauth/github/callback",
		Scopes:       []string{"read:user", "user:email"},
		Endpoint:     github.Endpoint,
	}

	return &oauthService{
		uowFactory: uowFactory,
		githubConf: conf,
		jwtSecret:  jwtSecret,
	}
}

func (s *oauthService) GetLoginURL(provider string) (string, error) {
	if provider != "github" {
		return "", errors.New("unsupported provider")
	}

	b := make([]byte, 16)
	rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)

	return s.githubConf.AuthCodeURL(state), nil
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

func (s *oauthService) HandleCallback(ctx context.Context, provider string, code string) (*dto.LoginResponse, error) {
	if provider != "github" {
		return nil, errors.New("unsupported provider")
	}

	// 1. Exchange code for token
	token, err := s.githubConf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %v", err)
	}

	// 2. Fetch user info from GitHub
	ghUser, err := s.fetchGithubUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if ghUser.Email == "" {
		return nil, errors.New("github account has no accessible email")
	}
	fullName := ghUser.Name
	if fullName == "" {
		fullName = ghUser.Login
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 3. Find or create the user
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: ghUser.Email})
	if err != nil {
		return nil, err
	}

	if user == nil {
		avatar := ghUser.AvatarURL
		user = &entity.User{
			Id:            uuid.New(),
			Email:         ghUser.Email,
			FullName:      fullName,
			PasswordHash:  nil,
			Status:        entity.UserStatusActive,
			EmailVerified: true,
			AvatarURL:     &avatar,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}

		if err := uow.Begin(ctx); err != nil {
			return nil, err
		}
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			uow.Rollback()
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}
	}

	// 4. Sync provider identity
	existing, err := uow.UserRepository().FindProvider(ctx, specification.ByProvider{
		ProviderName:   "github",
		ProviderUserId: fmt.Sprintf("%d", ghUser.ID),
	})
	if err != nil {
		return nil, err
	}
	if existing == nil {
		userProvider := &entity.UserProvider{
			Id:             uuid.New(),
			UserId:         user.Id,
			ProviderName:   "github",
			ProviderUserId: fmt.Sprintf("%d", ghUser.ID),
			AvatarURL:      ghUser.AvatarURL,
			CreatedAt:      time.Now(),
		}
		if err := uow.UserRepository().CreateProvider(ctx, userProvider); err != nil {
			return nil, fmt.Errorf("failed to save provider info: %v", err)
		}
	}

	// 5. Generate JWT
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := jwtToken.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: signedToken,
		User:        toUserProfile(user),
	}, nil
}

func (s *oauthService) fetchGithubUser(ctx context.Context, token *oauth2.Token) (*githubUser, error) {
	client := s.githubConf.Client(ctx, token)

	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %v", err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var ghUser githubUser
	if err := json.Unmarshal(content, &ghUser); err != nil {
		return nil, err
	}

	// The public profile may hide the email; fall back to the emails API.
	if ghUser.Email == "" {
		if primary, err := s.fetchPrimaryEmail(client); err == nil {
			ghUser.Email = primary
		}
	}

	return &ghUser, nil
}

func (s *oauthService) fetchPrimaryEmail(client *http.Client) (string, error) {
	resp, err := client.Get("https://api.github.com/user/emails")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", err
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", errors.New("no primary verified email")
}
