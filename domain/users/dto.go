package users

import "time"

// SignupRequest is the request body for user registration
type SignupRequest struct {
	FullName string     `json:"fullName"`
	UserName string     `json:"userName"`
	Email    string     `json:"email"`
	Phone    string     `json:"phone"`
	Password string     `json:"password"`
	Gender   string     `json:"gender"`
	DOB      *time.Time `json:"dob,omitempty"`
}

// UpdateUserRequest is the request body for partial profile updates.
// Nil fields are left untouched.
type UpdateUserRequest struct {
	FullName     *string    `json:"fullName,omitempty"`
	UserName     *string    `json:"userName,omitempty"`
	Email        *string    `json:"email,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	Password     *string    `json:"password,omitempty"`
	Gender       *string    `json:"gender,omitempty"`
	DOB          *time.Time `json:"dob,omitempty"`
	ProfilePhoto *string    `json:"profilePhoto,omitempty"`
}

// SearchUserRequest looks a user up by email or username; email wins when both
// are present.
type SearchUserRequest struct {
	Email    string `query:"email" json:"email"`
	UserName string `query:"userName" json:"userName"`
}

// PhotoUploadRequest asks for a presigned upload slot for a profile photo
type PhotoUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}
