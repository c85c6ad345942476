// Package models holds the JSON bodies exchanged by the shopmap API.
package models

import "time"

type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterReq struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type UserResp struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AuthResp struct {
	Token     string    `json:"token"`
	User      UserResp  `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

type MessageResp struct {
	Message string `json:"message"`
}

type ErrorResp struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ShopCreateReq struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Address     string   `json:"address" validate:"required,max=255"`
	Brands      []string `json:"brands" validate:"omitempty,dive,required,max=255"`
	Description *string  `json:"description"`
}

// ShopUpdateReq is a partial update: absent fields are left as they are.
type ShopUpdateReq struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=255"`
	Address     *string   `json:"address" validate:"omitempty,min=1,max=255"`
	Brands      *[]string `json:"brands" validate:"omitempty,dive,required,max=255"`
	Description *string   `json:"description"`
}

type ShopResp struct {
	ID            uint64   `json:"id"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	Description   *string  `json:"description"`
	ListedBrands  []string `json:"listed_brands"`
	AverageRating float64  `json:"average_rating"`
	Brands        []string `json:"brands"`
}

type ReviewCreateReq struct {
	UserName    string   `json:"user_name" validate:"required,max=255"`
	Rating      int      `json:"rating" validate:"required,min=1,max=5"`
	Comment     *string  `json:"comment"`
	Brands      []string `json:"brands" validate:"omitempty,dive,max=255"`
	Description *string  `json:"description"`
}

type ReviewResp struct {
	ID          uint64    `json:"id"`
	ShopID      uint64    `json:"shop_id"`
	UserName    string    `json:"user_name"`
	Rating      int       `json:"rating"`
	Comment     *string   `json:"comment"`
	Brands      []string  `json:"brands"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
