package models

type UserProfile struct {
	ID              uint64 `json:"id"`
	UserID          uint64 `json:"userId"`
	FirstName       string `json:"firstName,omitempty"`
	MiddleName      string `json:"middleName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	FullName        string `json:"fullName,omitempty"`
	DateOfBirth     string `json:"dateOfBirth,omitempty"`
	Age             int    `json:"age,omitempty"`
	Gender          string `json:"gender,omitempty"`
	CountryCode     string `json:"countryCode,omitempty"`
	MobileNumber    string `json:"mobileNumber,omitempty"`
	FullPhoneNumber string `json:"fullPhoneNumber,omitempty"`
	Email           string `json:"email"`
	Country         string `json:"country,omitempty"`
	State           string `json:"state,omitempty"`
	AddressLine     string `json:"addressLine,omitempty"`
	Pincode         string `json:"pincode,omitempty"`
	ProfilePhotoURL string `json:"profilePhotoUrl,omitempty"`
	EmailVerified   bool   `json:"emailVerified"`
}

type UpdateProfileRequest struct {
	FirstName    string `json:"firstName" validate:"required"`
	MiddleName   string `json:"middleName,omitempty"`
	LastName     string `json:"lastName" validate:"required"`
	DateOfBirth  string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Gender       string `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	CountryCode  string `json:"countryCode" validate:"required"`
	MobileNumber string `json:"mobileNumber" validate:"required"`
	Country      string `json:"country,omitempty"`
	State        string `json:"state,omitempty"`
	AddressLine  string `json:"addressLine,omitempty"`
	Pincode      string `json:"pincode,omitempty"`
}

type PhotoUploadResponse struct {
	Message         string `json:"message,omitempty"`
	ProfilePhotoURL string `json:"profilePhotoUrl"`
}

type EmailChangeVerificationRequest struct {
	NewEmail string `json:"newEmail" validate:"required,email"`
}

type EmailChangeConfirmRequest struct {
	NewEmail string `json:"newEmail" validate:"required,email"`
	OtpCode  string `json:"otpCode" validate:"required,len=6,numeric"`
}
