package enrollment

import "errors"

// Rule violations. Handlers map these to status codes; the engine only
// decides whether an operation is permitted.
var (
	ErrRoleInvalid               = errors.New("role must be 'instructor' or 'participant'")
	ErrNotInstructor             = errors.New("only an instructor can do this")
	ErrAlreadyCharged            = errors.New("you are already in charge of another seminar")
	ErrCapacityExceeded          = errors.New("the seminar is beyond capacity")
	ErrMissingParticipantProfile = errors.New("the participant role is required first")
	ErrSelfChargeConflict        = errors.New("you are the instructor of this seminar")
	ErrAlreadyEnrolled           = errors.New("you are already enrolled in this seminar")
	ErrPreviouslyDropped         = errors.New("a dropped user cannot re-enroll in the same seminar")
	ErrNotAccepted               = errors.New("your enrollment request cannot be accepted")
	ErrInstructorCannotDrop      = errors.New("the instructor cannot drop the seminar")
	ErrNeverEnrolled             = errors.New("you have never enrolled in this seminar")
	ErrBlankName                 = errors.New("the seminar name cannot be blank")
	ErrCapacityBelowEnrollment   = errors.New("the capacity must not be less than the number of participants")
)
