package auth

// LoginDTO is the transport shape used by the HTTP handler to accept
// login requests.
type LoginDTO struct {
	Code     string `json:"code"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login. The user payload omits
// the effective permission set: permissions are resolved per request by
// the gate, never embedded at login time.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

type UserResponse struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Code     string    `json:"code"`
	Store    *StoreRef `json:"store,omitempty"`
	Language string    `json:"language"`
	Roles    []RoleRef `json:"roles"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Validate checks required fields and returns a ValidationError on failure.
func (d LoginDTO) Validate() error {
	if d.Code == "" {
		return ValidationError{Msg: "code is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

// ToResponse builds the login response payload from an identity snapshot.
func (r *LoginResult) ToResponse() LoginResponse {
	return LoginResponse{
		AccessToken: r.AccessToken,
		User: UserResponse{
			ID:       r.Identity.ID,
			Name:     r.Identity.Name,
			Code:     r.Identity.Code,
			Store:    r.Identity.Store,
			Language: r.Identity.Language,
			Roles:    r.Identity.Roles,
		},
	}
}
