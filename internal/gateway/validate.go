package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/models"
)

// The gateway rejects malformed requests early; every rule here is repeated
// or subsumed by a business rule on the server tier.

func (g *Gateway) validateCreateUser(_ *http.Request, body []byte) error {
	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	if strings.TrimSpace(user.Email) == "" {
		return fmt.Errorf("email cannot be blank")
	}
	if at := strings.Index(user.Email, "@"); at <= 0 || at == len(user.Email)-1 {
		return fmt.Errorf("invalid email format")
	}
	if strings.TrimSpace(user.Name) == "" {
		return fmt.Errorf("name cannot be blank")
	}
	return nil
}

func (g *Gateway) validateUpdateUser(_ *http.Request, body []byte) error {
	var req models.UpdateUserRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	if req.Email != nil {
		email := *req.Email
		at := strings.Index(email, "@")
		if at <= 0 || at == len(email)-1 {
			return fmt.Errorf("invalid email format")
		}
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return fmt.Errorf("name cannot be blank")
	}
	return nil
}

func (g *Gateway) validateCreateItem(_ *http.Request, body []byte) error {
	var req models.CreateItemRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("item name cannot be blank")
	}
	if strings.TrimSpace(req.Description) == "" {
		return fmt.Errorf("item description cannot be blank")
	}
	if req.Available == nil {
		return fmt.Errorf("item availability is required")
	}
	return nil
}

func (g *Gateway) validateComment(_ *http.Request, body []byte) error {
	var req models.CreateCommentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("comment text cannot be blank")
	}
	return nil
}

func (g *Gateway) validateCreateBooking(_ *http.Request, body []byte) error {
	var req models.CreateBookingRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	if req.ItemID <= 0 {
		return fmt.Errorf("itemId is required")
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return fmt.Errorf("start and end dates are required")
	}
	now := time.Now().UTC().Truncate(time.Second)
	if req.Start.Before(now) {
		return fmt.Errorf("start date cannot be in the past")
	}
	if !req.End.After(req.Start.Time) {
		return fmt.Errorf("end date must be after start date")
	}
	return nil
}

func (g *Gateway) validateApproveParam(r *http.Request, _ []byte) error {
	if _, err := strconv.ParseBool(r.URL.Query().Get("approved")); err != nil {
		return fmt.Errorf("approved parameter is required")
	}
	return nil
}

func (g *Gateway) validateCreateRequest(_ *http.Request, body []byte) error {
	var req models.CreateItemRequestRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	if strings.TrimSpace(req.Description) == "" {
		return fmt.Errorf("request description cannot be blank")
	}
	return nil
}

func validatePageParams(r *http.Request) error {
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := strconv.Atoi(raw)
		if err != nil || from < 0 {
			return fmt.Errorf("from must be a non-negative integer")
		}
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return fmt.Errorf("size must be a positive integer")
		}
	}
	return nil
}
