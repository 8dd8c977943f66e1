package user

import (
	errors "github.com/thanhldv/store-backoffice/internal"
	"github.com/thanhldv/store-backoffice/internal/core/common/validation"
)

type CreateUserDTO struct {
	Name     string  `json:"name"`
	Code     string  `json:"code"`
	Password string  `json:"password"`
	StoreID  *int64  `json:"store_id,omitempty"`
	Language string  `json:"language,omitempty"`
	RoleIDs  []int64 `json:"role_ids,omitempty"`
}

func (d CreateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	v.Field("code", d.Code).Required().MaxLength(64)
	v.Field("password", d.Password).Required().MinLength(6)
	return v.Validate()
}

// UpdateUserDTO uses pointers so "not provided" and "set to empty" stay
// distinguishable; RoleIDs nil means leave assignments alone, an empty
// slice revokes everything.
type UpdateUserDTO struct {
	Name     *string  `json:"name,omitempty"`
	Code     *string  `json:"code,omitempty"`
	Password *string  `json:"password,omitempty"`
	StoreID  *int64   `json:"store_id,omitempty"`
	Language *string  `json:"language,omitempty"`
	RoleIDs  *[]int64 `json:"role_ids,omitempty"`
}

func (d UpdateUserDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(255)
	}
	if d.Code != nil {
		v.Field("code", *d.Code).Required().MaxLength(64)
	}
	if d.Password != nil {
		v.Field("password", *d.Password).Required().MinLength(6)
	}
	return v.Validate()
}
