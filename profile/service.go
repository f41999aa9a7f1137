// Package profile talks to the user-profile endpoints: profile read/write,
// photo upload and the email-change verification flow.
package profile

import (
	"context"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"

	"github.com/octabyte/dietician-client/httpclient"
	"github.com/octabyte/dietician-client/models"
)

type Service struct {
	client   *httpclient.Client
	validate *validator.Validate
}

func NewService(client *httpclient.Client) *Service {
	return &Service{
		client:   client,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Service) Get(ctx context.Context, userID uint64) (*models.UserProfile, error) {
	var out models.UserProfile
	err := s.client.Get(ctx, "/user-profiles/me", userQuery(userID), &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update creates or replaces the profile.
func (s *Service) Update(ctx context.Context, userID uint64, req models.UpdateProfileRequest) (*models.UserProfile, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	var out models.UserProfile
	err := s.client.Put(ctx, fmt.Sprintf("/user-profiles/me?userId=%d", userID), req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadPhoto sends the photo as multipart form data. Callers should feed
// the returned URL through the session controller so the cached user
// snapshot picks it up.
func (s *Service) UploadPhoto(ctx context.Context, userID uint64, fileName string, photo io.Reader) (*models.PhotoUploadResponse, error) {
	var out models.PhotoUploadResponse
	err := s.client.PostMultipart(ctx,
		fmt.Sprintf("/user-profiles/me/photo?userId=%d", userID),
		map[string]string{"userId": fmt.Sprintf("%d", userID)},
		"file", fileName, photo, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SendEmailChangeVerification asks the backend to OTP the new address.
// OAuth-governed accounts get a backend error directing them to their
// provider; it propagates untouched.
func (s *Service) SendEmailChangeVerification(ctx context.Context, userID uint64, newEmail string) (string, error) {
	return s.postEmailChange(ctx, "/user-profiles/email/send-verification", userID,
		models.EmailChangeVerificationRequest{NewEmail: newEmail})
}

// ConfirmEmailChange verifies the OTP and returns a fresh token pair bound
// to the new address. The caller must pass the pair to the session
// controller's UpdateAuthTokens or later requests authenticate as the old
// identity.
func (s *Service) ConfirmEmailChange(ctx context.Context, userID uint64, req models.EmailChangeConfirmRequest) (*models.AuthResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	var out models.AuthResponse
	err := s.client.Post(ctx, fmt.Sprintf("/user-profiles/email/confirm-change?userId=%d", userID), req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ResendEmailChangeOtp re-sends the code to the pending new address.
func (s *Service) ResendEmailChangeOtp(ctx context.Context, userID uint64, newEmail string) (string, error) {
	return s.postEmailChange(ctx, "/user-profiles/email/resend-otp", userID,
		models.EmailChangeVerificationRequest{NewEmail: newEmail})
}

func (s *Service) postEmailChange(ctx context.Context, path string, userID uint64, req models.EmailChangeVerificationRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", err
	}

	var out models.MessageResponse
	err := s.client.Post(ctx, fmt.Sprintf("%s?userId=%d", path, userID), req, &out)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

func userQuery(userID uint64) map[string]string {
	return map[string]string{"userId": fmt.Sprintf("%d", userID)}
}
