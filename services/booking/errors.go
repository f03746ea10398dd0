package booking

import (
	"errors"
	"fmt"

	"salonai/utils"
)

var (
	ErrNotLoggedIn     = errors.New("log in to create an appointment")
	ErrNoServices      = fmt.Errorf("%w: select at least one service", utils.ErrValidation)
	ErrNoTimeSlot      = fmt.Errorf("%w: select a time slot", utils.ErrValidation)
	ErrNoProfessional  = fmt.Errorf("%w: select a professional", utils.ErrValidation)
	ErrNeedProAndDate  = fmt.Errorf("%w: select a professional and a date", utils.ErrValidation)
	ErrSlotUnavailable = fmt.Errorf("%w: that time is not available", utils.ErrValidation)
	ErrServiceIndex    = fmt.Errorf("%w: no such service in the selection", utils.ErrValidation)

	// ErrCancelledOnSafety is returned when the user chose to drop a booking
	// after the strand test warning.
	ErrCancelledOnSafety = errors.New("booking cancelled after strand test warning")

	// ErrStale is returned when a newer request superseded this one; its
	// response was dropped.
	ErrStale = errors.New("superseded by a newer request")
)
