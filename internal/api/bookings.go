package api

import (
	"context"
	"net/http"
	"strconv"

	"shareit/internal/models"
)

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dto, err := s.bookings.CreateBooking(r.Context(), &req, userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

func (s *Server) handleUpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookingID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "approved parameter is required")
		return
	}

	dto, err := s.bookings.UpdateBookingStatus(r.Context(), bookingID, userID, approved)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookingID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dto, err := s.bookings.GetBooking(r.Context(), bookingID, userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Server) handleGetUserBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.bookings.GetUserBookings)
}

func (s *Server) handleGetOwnerBookings(w http.ResponseWriter, r *http.Request) {
	s.listBookings(w, r, s.bookings.GetOwnerBookings)
}

type bookingLister func(ctx context.Context, userID int64, state models.BookingState, from, size int) ([]*models.BookingDTO, error)

func (s *Server) listBookings(w http.ResponseWriter, r *http.Request, list bookingLister) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := models.ParseBookingState(r.URL.Query().Get("state"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	from, size, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dtos, err := list(r.Context(), userID, state, from, size)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos)
}
