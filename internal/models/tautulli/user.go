// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package tautulli

// Users represents the API response from Tautulli's get_users endpoint
type Users struct {
	Response UsersResponse `json:"response"`
}

type UsersResponse struct {
	Result  string       `json:"result"`
	Message *string      `json:"message,omitempty"`
	Data    []UserRecord `json:"data"`
}

// UserRecord is one account from get_users. The synthetic "Local" account
// (user_id 0) is filtered out before persistence.
type UserRecord struct {
	UserID       int    `json:"user_id"`
	Username     string `json:"username"`
	FriendlyName string `json:"friendly_name"`
	Email        string `json:"email"`
	IsActive     int    `json:"is_active"`
	IsAdmin      int    `json:"is_admin"`
	UserThumb    string `json:"user_thumb"`
}
